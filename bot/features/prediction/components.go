package prediction

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"curator/activity"

	"github.com/bwmarrin/discordgo"
)

const (
	betButtonPrefix  = "prediction_bet_"
	stakeModalPrefix = "prediction_stake_"
	stakeInputID     = "stake"

	// MaxOptions is the most options a prediction message can offer
	MaxOptions = 5
)

// BetButtonID returns the custom ID of the button for option n
func BetButtonID(n int) string {
	return fmt.Sprintf("%s%d", betButtonPrefix, n)
}

// ParseBetButtonID extracts the option index from a bet button custom ID
func ParseBetButtonID(customID string) (int, bool) {
	rest, ok := strings.CutPrefix(customID, betButtonPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// StakeModalID returns the custom ID of the stake modal for option n of the
// prediction posted as messageID
func StakeModalID(messageID string, n int) string {
	return fmt.Sprintf("%s%s_%d", stakeModalPrefix, messageID, n)
}

// ParseStakeModalID extracts the message ID and option index from a stake
// modal custom ID
func ParseStakeModalID(customID string) (string, int, bool) {
	rest, ok := strings.CutPrefix(customID, stakeModalPrefix)
	if !ok {
		return "", 0, false
	}
	idx := strings.LastIndex(rest, "_")
	if idx <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(rest[idx+1:])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return rest[:idx], n, true
}

var errInvalidStake = errors.New("stake must be a positive whole number")

// ParseStake parses the stake typed into the modal. Thousands separators are
// accepted.
func ParseStake(text string) (int64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	stake, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil || stake <= 0 {
		return 0, errInvalidStake
	}
	return stake, nil
}

// BuildPredictionComponents renders one bet button per option; they are
// disabled once the prediction stops running
func BuildPredictionComponents(p *activity.Prediction) []discordgo.MessageComponent {
	options := p.Options()
	buttons := make([]discordgo.MessageComponent, 0, len(options))
	for n, opt := range options {
		if n == MaxOptions {
			break
		}
		buttons = append(buttons, discordgo.Button{
			Label:    opt,
			Style:    discordgo.PrimaryButton,
			CustomID: BetButtonID(n),
			Disabled: !p.Running(),
		})
	}
	if len(buttons) == 0 {
		return nil
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: buttons},
	}
}

// BuildStakeModal asks for the stake on one option
func BuildStakeModal(messageID string, n int, option string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: StakeModalID(messageID, n),
		Title:    truncate("Bet on "+option, 45),
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    stakeInputID,
						Label:       "Stake (tokens)",
						Style:       discordgo.TextInputShort,
						Placeholder: "100",
						Required:    true,
						MaxLength:   12,
					},
				},
			},
		},
	}
}

// stakeFromModal finds the stake input in a submitted modal
func stakeFromModal(data discordgo.ModalSubmitInteractionData) string {
	for _, comp := range data.Components {
		row, ok := comp.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok && input.CustomID == stakeInputID {
				return input.Value
			}
		}
	}
	return ""
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
