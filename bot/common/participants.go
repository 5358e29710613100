package common

import (
	"context"
	"errors"
	"fmt"

	"curator/models"
	"curator/registry"
	"curator/service"

	"github.com/bwmarrin/discordgo"
)

// ErrNotInGuild is returned for interactions outside a server, e.g. DMs
var ErrNotInGuild = errors.New("interaction is not from a guild member")

// Participant is the guild entry and user record behind an interaction
type Participant struct {
	Guild  *registry.Guild
	User   *models.User
	Member *discordgo.Member
}

// Settings returns a snapshot of the participant's guild settings
func (p *Participant) Settings() *models.GuildSettings {
	return p.Guild.Settings()
}

// IsAdmin reports whether the participant may run admin commands
func (p *Participant) IsAdmin() bool {
	return IsAdmin(p.Member, p.Settings())
}

// Tier resolves the participant's raffle bonus tier
func (p *Participant) Tier() models.BonusTier {
	return TierFor(p.Member, p.Settings())
}

// Resolver turns interactions into participants
type Resolver struct {
	guilds service.GuildService
	users  service.UserService
}

// NewResolver creates a participant resolver
func NewResolver(guilds service.GuildService, users service.UserService) *Resolver {
	return &Resolver{guilds: guilds, users: users}
}

// Guild returns the live guild entry for the interaction's server
func (r *Resolver) Guild(ctx context.Context, s *discordgo.Session, guildID string) (*registry.Guild, error) {
	if guildID == "" {
		return nil, ErrNotInGuild
	}
	name := ""
	if s != nil && s.State != nil {
		if g, err := s.State.Guild(guildID); err == nil {
			name = g.Name
		}
	}
	guild, err := r.guilds.Ensure(ctx, guildID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load guild %s: %w", guildID, err)
	}
	return guild, nil
}

// Resolve returns the guild entry and the invoking member's user record
func (r *Resolver) Resolve(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) (*Participant, error) {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return nil, ErrNotInGuild
	}

	guild, err := r.Guild(ctx, s, i.GuildID)
	if err != nil {
		return nil, err
	}

	return r.ResolveMember(ctx, guild, i.Member)
}

// ResolveMember returns the user record for a member of an already loaded guild
func (r *Resolver) ResolveMember(ctx context.Context, guild *registry.Guild, member *discordgo.Member) (*Participant, error) {
	if member == nil || member.User == nil {
		return nil, ErrNotInGuild
	}

	presence := PresenceFromMember(member)
	user, err := r.users.Resolve(ctx, guild, member.User.ID, presence.DisplayName, presence)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user %s: %w", member.User.ID, err)
	}
	// refresh roles and boost status for records that already existed
	user.ReplacePresence(presence)

	return &Participant{Guild: guild, User: user, Member: member}, nil
}
