package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleGuildCreate loads a guild's settings when the bot joins or reconnects
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Unavailable {
		return
	}
	if _, err := b.guilds.Ensure(context.Background(), g.ID, g.Name); err != nil {
		log.WithFields(log.Fields{
			"guild_id": g.ID,
			"error":    err,
		}).Error("Failed to load guild")
	}
}

// handleGuildDelete drops a guild the bot was removed from, refunding any
// open stakes. Outages arrive as unavailable deletes and keep the guild.
func (b *Bot) handleGuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	if g.Unavailable {
		return
	}
	b.guilds.Forget(context.Background(), g.ID)
}

// handleGuildMemberAdd creates the record of a new member so they show up on
// the leaderboard with the starting balance
func (b *Bot) handleGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.Member == nil || m.User == nil || m.User.Bot {
		return
	}

	ctx := context.Background()
	guild, err := b.resolver.Guild(ctx, s, m.GuildID)
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id": m.GuildID,
			"error":    err,
		}).Error("Failed to load guild for new member")
		return
	}
	if _, err := b.resolver.ResolveMember(ctx, guild, m.Member); err != nil {
		log.WithFields(log.Fields{
			"guild_id": m.GuildID,
			"user_id":  m.User.ID,
			"error":    err,
		}).Warn("Failed to create record for new member")
	}
}
