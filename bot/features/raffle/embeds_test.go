package raffle

import (
	"testing"

	"curator/activity"
	"curator/models"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type zeroRandom struct{}

func (zeroRandom) Float64() float64 { return 0 }

func buttons(t *testing.T, components []discordgo.MessageComponent) []discordgo.Button {
	t.Helper()
	require.Len(t, components, 1)
	row, ok := components[0].(discordgo.ActionsRow)
	require.True(t, ok)

	out := make([]discordgo.Button, 0, len(row.Components))
	for _, c := range row.Components {
		b, ok := c.(discordgo.Button)
		require.True(t, ok)
		out = append(out, b)
	}
	return out
}

func TestBuildRaffleEmbed_Running(t *testing.T) {
	r := activity.NewRaffle("Nitro Giveaway", 2)
	require.True(t, r.Enter(models.NewUser("g1", "u1", "Ann", 100), models.TierNone).OK())
	require.True(t, r.Enter(models.NewUser("g1", "u2", "Bob", 100), models.TierBooster).OK())

	embed := BuildRaffleEmbed(r)
	assert.Equal(t, "🎟️ Nitro Giveaway", embed.Title)
	assert.Equal(t, colorRunning, embed.Color)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "2", embed.Fields[0].Value)
	assert.Equal(t, "225", embed.Fields[1].Value)
	assert.Equal(t, "2", embed.Fields[2].Value)

	bs := buttons(t, BuildRaffleComponents(r))
	require.Len(t, bs, 2)
	assert.Equal(t, EnterButtonID, bs[0].CustomID)
	assert.False(t, bs[0].Disabled)
	assert.Equal(t, EndButtonID, bs[1].CustomID)
	assert.False(t, bs[1].Disabled)
}

func TestBuildRaffleEmbed_Settled(t *testing.T) {
	r := activity.NewRaffle("Nitro Giveaway", 1, activity.WithRandom(zeroRandom{}))
	require.True(t, r.Enter(models.NewUser("g1", "u1", "Ann", 100), models.TierNone).OK())
	require.True(t, r.Enter(models.NewUser("g1", "u2", "Bob", 100), models.TierNone).OK())

	res := r.End()
	require.True(t, res.OK())

	embed := BuildRaffleEmbed(r)
	assert.Equal(t, colorSettled, embed.Color)
	assert.Contains(t, embed.Description, "<@u1>")

	for _, b := range buttons(t, BuildRaffleComponents(r)) {
		assert.True(t, b.Disabled)
	}

	content := BuildResultContent(r, userIDs(res.Value()))
	assert.Contains(t, content, "Nitro Giveaway")
	assert.Contains(t, content, "<@u1>")
}

func TestBuildRaffleEmbed_Cancelled(t *testing.T) {
	r := activity.NewRaffle("Nitro Giveaway", 1)
	require.True(t, r.Cancel())

	embed := BuildRaffleEmbed(r)
	assert.Equal(t, colorFinished, embed.Color)
	assert.Equal(t, "This raffle is closed.", embed.Description)
}

func TestBuildRaffleComponents_EntriesClosed(t *testing.T) {
	r := activity.NewRaffle("Nitro Giveaway", 1)
	require.True(t, r.CloseEntries())

	bs := buttons(t, BuildRaffleComponents(r))
	assert.True(t, bs[0].Disabled)
	assert.False(t, bs[1].Disabled)
}
