package prediction

import (
	"testing"

	"curator/activity"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetButtonID(t *testing.T) {
	assert.Equal(t, "prediction_bet_3", BetButtonID(3))

	n, ok := ParseBetButtonID(BetButtonID(3))
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	for _, id := range []string{"raffle_enter", "prediction_bet_", "prediction_bet_x", "prediction_bet_-1"} {
		_, ok := ParseBetButtonID(id)
		assert.False(t, ok, id)
	}
}

func TestStakeModalID(t *testing.T) {
	id := StakeModalID("1234567890", 1)
	assert.Equal(t, "prediction_stake_1234567890_1", id)
	assert.True(t, OwnsModal(id))
	assert.False(t, OwnsModal("settings_modal"))

	messageID, n, ok := ParseStakeModalID(id)
	require.True(t, ok)
	assert.Equal(t, "1234567890", messageID)
	assert.Equal(t, 1, n)

	for _, bad := range []string{"prediction_stake_", "prediction_stake__1", "prediction_stake_123", "prediction_stake_123_x", "other_123_1"} {
		_, _, ok := ParseStakeModalID(bad)
		assert.False(t, ok, bad)
	}
}

func TestParseStake(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{input: "100", want: 100},
		{input: " 2,500 ", want: 2500},
		{input: "0", wantErr: true},
		{input: "-5", wantErr: true},
		{input: "ten", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseStake(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestBuildPredictionComponents(t *testing.T) {
	p := activity.NewPrediction("Who wins?", []string{"Red", "Blue", "Green"})

	components := BuildPredictionComponents(p)
	require.Len(t, components, 1)
	row := components[0].(discordgo.ActionsRow)
	require.Len(t, row.Components, 3)

	for n, label := range []string{"Red", "Blue", "Green"} {
		b := row.Components[n].(discordgo.Button)
		assert.Equal(t, label, b.Label)
		assert.Equal(t, BetButtonID(n), b.CustomID)
		assert.False(t, b.Disabled)
	}

	require.True(t, p.Cancel())
	row = BuildPredictionComponents(p)[0].(discordgo.ActionsRow)
	assert.True(t, row.Components[0].(discordgo.Button).Disabled)
}

func TestBuildStakeModal(t *testing.T) {
	modal := BuildStakeModal("m1", 0, "A very long option name that will not fit into the modal title")
	assert.Equal(t, StakeModalID("m1", 0), modal.CustomID)
	assert.LessOrEqual(t, len([]rune(modal.Title)), 45)

	row := modal.Components[0].(discordgo.ActionsRow)
	input := row.Components[0].(discordgo.TextInput)
	assert.Equal(t, stakeInputID, input.CustomID)
}

func TestStakeFromModal(t *testing.T) {
	data := discordgo.ModalSubmitInteractionData{
		CustomID: StakeModalID("m1", 0),
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					&discordgo.TextInput{CustomID: stakeInputID, Value: "250"},
				},
			},
		},
	}
	assert.Equal(t, "250", stakeFromModal(data))
	assert.Equal(t, "", stakeFromModal(discordgo.ModalSubmitInteractionData{}))
}
