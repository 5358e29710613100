package balance

import (
	"fmt"
	"strings"

	"curator/bot/common"
	"curator/models"

	"github.com/bwmarrin/discordgo"
)

var medals = []string{"🥇", "🥈", "🥉"}

// BuildLeaderboardEmbed ranks users by balance
func BuildLeaderboardEmbed(users []*models.User) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🏆 Leaderboard",
		Color: 0xF1C40F,
	}
	if len(users) == 0 {
		embed.Description = "Nobody has tokens yet."
		return embed
	}

	lines := make([]string, len(users))
	for n, u := range users {
		rank := fmt.Sprintf("`#%d`", n+1)
		if n < len(medals) {
			rank = medals[n]
		}
		lines[n] = fmt.Sprintf("%s %s **%s**", rank, common.Mention(u.ID), common.FormatBalance(u.Tokens()))
	}
	embed.Description = strings.Join(lines, "\n")
	return embed
}

// BuildHistoryEmbed lists archived activities, most recent first
func BuildHistoryEmbed(records []*models.ActivityRecord) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "📜 Recent Activities",
		Color: 0x99AAB5,
	}
	if len(records) == 0 {
		embed.Description = "No finished raffles or predictions yet."
		return embed
	}

	for _, r := range records {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s %s", kindIcon(r.Kind), r.Title),
			Value: describeRecord(r),
		})
	}
	return embed
}

func kindIcon(kind models.ActivityKind) string {
	switch kind {
	case models.ActivityKindRaffle:
		return "🎟️"
	case models.ActivityKindPrediction:
		return "🔮"
	default:
		return "❔"
	}
}

func describeRecord(r *models.ActivityRecord) string {
	when := common.FormatDiscordTimestamp(r.EndedAt, "R")
	if r.Status == models.ActivityStatusCancelled {
		return fmt.Sprintf("Cancelled %s with %d participants", when, r.Participants)
	}

	winners := common.MentionList(r.Winners, "nobody")
	if r.Kind == models.ActivityKindPrediction && r.WinningOption != nil {
		return fmt.Sprintf("**%s** won %s. %s tokens paid to %s", *r.WinningOption, when, common.FormatBalance(r.TotalPool), winners)
	}
	return fmt.Sprintf("Drawn %s from %d entrants. Winners: %s", when, r.Participants, winners)
}
