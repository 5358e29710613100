package raffle

import (
	"fmt"

	"curator/activity"
	"curator/bot/common"

	"github.com/bwmarrin/discordgo"
)

const (
	// EnterButtonID is the custom ID of the enter button
	EnterButtonID = "raffle_enter"
	// EndButtonID is the custom ID of the admin end button
	EndButtonID = "raffle_end"

	colorRunning  = 0x5865F2
	colorSettled  = 0x57F287
	colorFinished = 0x99AAB5
)

// BuildRaffleEmbed renders the current state of a raffle
func BuildRaffleEmbed(r *activity.Raffle) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🎟️ " + r.Title(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Entrants", Value: fmt.Sprintf("%d", r.Participants()), Inline: true},
			{Name: "Tickets", Value: common.FormatBalance(int64(r.TotalTickets())), Inline: true},
			{Name: "Winners", Value: fmt.Sprintf("%d", r.WinnerSlots()), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d base tickets, +%d per consecutive loss, bonus for boosters and subscribers",
				activity.BaseTickets, activity.LossMultiplier),
		},
	}

	switch {
	case r.Running():
		embed.Color = colorRunning
		embed.Description = "Press **Enter** to join. Tickets are free."
	case len(r.Winners()) > 0:
		embed.Color = colorSettled
		ids := make([]string, 0, len(r.Winners()))
		for _, w := range r.Winners() {
			ids = append(ids, w.ID)
		}
		embed.Description = "Winners: " + common.MentionList(ids, "none")
	default:
		embed.Color = colorFinished
		embed.Description = "This raffle is closed."
	}

	return embed
}

// BuildRaffleComponents renders the raffle buttons; they are disabled once the
// raffle stops running
func BuildRaffleComponents(r *activity.Raffle) []discordgo.MessageComponent {
	closed := !r.Running()
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Enter",
					Style:    discordgo.PrimaryButton,
					CustomID: EnterButtonID,
					Disabled: closed || !r.AcceptingEntries(),
					Emoji:    &discordgo.ComponentEmoji{Name: "🎟️"},
				},
				discordgo.Button{
					Label:    "End Raffle",
					Style:    discordgo.DangerButton,
					CustomID: EndButtonID,
					Disabled: closed,
				},
			},
		},
	}
}

// BuildResultContent announces the winners of a settled raffle
func BuildResultContent(r *activity.Raffle, winnerIDs []string) string {
	return fmt.Sprintf("🎉 **%s** is over! Congratulations %s", r.Title(), common.MentionList(winnerIDs, "nobody"))
}
