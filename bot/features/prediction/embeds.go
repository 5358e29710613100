package prediction

import (
	"fmt"
	"strings"

	"curator/activity"
	"curator/bot/common"

	"github.com/bwmarrin/discordgo"
)

const (
	colorRunning  = 0xFEE75C
	colorSettled  = 0x57F287
	colorFinished = 0x99AAB5
)

// BuildPredictionEmbed renders pools, odds and, once settled, the payouts
func BuildPredictionEmbed(p *activity.Prediction) *discordgo.MessageEmbed {
	total := p.TotalPool()
	pools := p.PoolByOption()

	embed := &discordgo.MessageEmbed{
		Title: "🔮 " + p.Title(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Total Pool", Value: common.FormatBalance(total) + " tokens", Inline: true},
			{Name: "Participants", Value: fmt.Sprintf("%d", p.Participants()), Inline: true},
		},
	}

	var lines []string
	for _, opt := range p.Options() {
		pool := pools[opt]
		lines = append(lines, fmt.Sprintf("**%s**: %s tokens (%s)", opt, common.FormatBalance(pool), FormatOdds(total, pool)))
	}
	if len(lines) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Options",
			Value: strings.Join(lines, "\n"),
		})
	}

	settlement := p.Settlement()
	switch {
	case p.Running():
		embed.Color = colorRunning
		embed.Description = "Pick an option and stake tokens. Winners split the whole pool by stake. You cannot switch options once you bet."
	case settlement != nil:
		embed.Color = colorSettled
		embed.Description = fmt.Sprintf("**%s** won!", settlement.Option)
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Payouts",
			Value: formatPayouts(settlement),
		})
	default:
		embed.Color = colorFinished
		embed.Description = "This prediction is closed."
	}

	return embed
}

// FormatOdds renders the payout multiplier of an option's pool
func FormatOdds(total, pool int64) string {
	if pool == 0 {
		return "no bets"
	}
	return fmt.Sprintf("%.2fx", float64(total)/float64(pool))
}

func formatPayouts(s *activity.Settlement) string {
	if len(s.Winners) == 0 {
		return "none"
	}
	lines := make([]string, 0, len(s.Winners))
	for _, w := range s.Winners {
		lines = append(lines, fmt.Sprintf("%s +%s", common.Mention(w.ID), common.FormatBalance(s.Payouts[w.ID])))
	}
	return strings.Join(lines, "\n")
}
