package common

import (
	"curator/models"

	"github.com/bwmarrin/discordgo"
)

// IsAdmin reports whether the member may run admin commands: Discord
// Administrator permission or one of the guild's configured admin roles
func IsAdmin(member *discordgo.Member, settings *models.GuildSettings) bool {
	if member == nil {
		return false
	}
	if member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return settings != nil && settings.HasAdminRole(member.Roles)
}

// DisplayName returns the guild nickname, falling back to global name and username
func DisplayName(member *discordgo.Member) string {
	if member == nil {
		return "Unknown"
	}
	if member.Nick != "" {
		return member.Nick
	}
	if member.User == nil {
		return "Unknown"
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}

// PresenceFromMember captures the member fields the bot needs later
func PresenceFromMember(member *discordgo.Member) *models.Presence {
	if member == nil {
		return nil
	}
	roles := make([]string, len(member.Roles))
	copy(roles, member.Roles)
	return &models.Presence{
		DisplayName:  DisplayName(member),
		RoleIDs:      roles,
		PremiumSince: member.PremiumSince,
	}
}

// TierFor resolves the raffle bonus tier of a member from the guild's tier
// roles, falling back to booster while the member boosts the server
func TierFor(member *discordgo.Member, settings *models.GuildSettings) models.BonusTier {
	if member == nil || settings == nil {
		return models.TierNone
	}
	return settings.ResolveTier(member.Roles, member.PremiumSince != nil)
}
