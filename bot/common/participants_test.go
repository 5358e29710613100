package common

import (
	"context"
	"errors"
	"testing"

	"curator/models"
	"curator/registry"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGuilds struct {
	reg *registry.Registry
	err error
}

func (f *fakeGuilds) Ensure(ctx context.Context, guildID, guildName string) (*registry.Guild, error) {
	if f.err != nil {
		return nil, f.err
	}
	if res := f.reg.Guild(guildID); res.OK() {
		return res.Value(), nil
	}
	return f.reg.RegisterGuild(guildID, models.NewGuildSettings(guildID, guildName, 250)).Value(), nil
}

func (f *fakeGuilds) UpdateSettings(ctx context.Context, guild *registry.Guild, fn func(*models.GuildSettings)) (*models.GuildSettings, error) {
	return guild.UpdateSettings(fn), nil
}

func (f *fakeGuilds) Forget(ctx context.Context, guildID string) {
	f.reg.RemoveGuild(guildID)
}

func (f *fakeGuilds) ForgetAll(ctx context.Context) {
	for _, g := range f.reg.Guilds() {
		f.reg.RemoveGuild(g.ID())
	}
}

type fakeUsers struct{}

func (fakeUsers) Resolve(ctx context.Context, guild *registry.Guild, discordID, name string, presence *models.Presence) (*models.User, error) {
	user, _ := guild.GetOrCreateUser(discordID, name, presence)
	return user, nil
}

func (fakeUsers) Leaderboard(ctx context.Context, guild *registry.Guild, limit int) []*models.User {
	return guild.Users()
}

func (fakeUsers) SetBalance(ctx context.Context, guild *registry.Guild, user *models.User, amount int64) error {
	user.SetTokens(amount)
	return nil
}

func interactionFrom(guildID string, member *discordgo.Member) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			GuildID: guildID,
			Member:  member,
		},
	}
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	resolver := NewResolver(&fakeGuilds{reg: registry.New()}, fakeUsers{})

	member := &discordgo.Member{
		Nick:  "Ann",
		Roles: []string{"r1"},
		User:  &discordgo.User{ID: "u1", Username: "ann"},
	}

	p, err := resolver.Resolve(ctx, nil, interactionFrom("g1", member))
	require.NoError(t, err)
	assert.Equal(t, "g1", p.Guild.ID())
	assert.Equal(t, "u1", p.User.ID)
	assert.Equal(t, "Ann", p.User.Name)
	assert.Equal(t, int64(250), p.User.Tokens())
	assert.False(t, p.IsAdmin())
	assert.Equal(t, models.TierNone, p.Tier())

	// a second interaction sees the same record with refreshed roles
	member.Roles = []string{"r1", "r2"}
	p.Guild.UpdateSettings(func(gs *models.GuildSettings) {
		gs.AddAdminRole("r2")
		gs.TierRoles["r2"] = models.TierTwo
	})

	again, err := resolver.Resolve(ctx, nil, interactionFrom("g1", member))
	require.NoError(t, err)
	assert.Same(t, p.User, again.User)
	assert.Equal(t, []string{"r1", "r2"}, again.User.Presence().RoleIDs)
	assert.True(t, again.IsAdmin())
	assert.Equal(t, models.TierTwo, again.Tier())
}

func TestResolver_NotInGuild(t *testing.T) {
	ctx := context.Background()
	resolver := NewResolver(&fakeGuilds{reg: registry.New()}, fakeUsers{})

	_, err := resolver.Resolve(ctx, nil, interactionFrom("", &discordgo.Member{User: &discordgo.User{ID: "u1"}}))
	assert.ErrorIs(t, err, ErrNotInGuild)

	_, err = resolver.Resolve(ctx, nil, interactionFrom("g1", nil))
	assert.ErrorIs(t, err, ErrNotInGuild)
}

func TestResolver_GuildLoadFailure(t *testing.T) {
	boom := errors.New("database down")
	resolver := NewResolver(&fakeGuilds{reg: registry.New(), err: boom}, fakeUsers{})

	_, err := resolver.Resolve(context.Background(), nil, interactionFrom("g1", &discordgo.Member{User: &discordgo.User{ID: "u1"}}))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotInGuild)
}
