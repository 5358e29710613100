package settings

import (
	"fmt"
	"sort"
	"strings"

	"curator/activity"
	"curator/bot/common"
	"curator/models"

	"github.com/bwmarrin/discordgo"
)

// BuildSettingsEmbed summarises a guild's settings
func BuildSettingsEmbed(gs *models.GuildSettings) *discordgo.MessageEmbed {
	channel := "Where the command is used"
	if gs.ActivityChannelID != nil && *gs.ActivityChannelID != "" {
		channel = fmt.Sprintf("<#%s>", *gs.ActivityChannelID)
	}

	admins := "Administrators only"
	if len(gs.AdminRoleIDs) > 0 {
		mentions := make([]string, len(gs.AdminRoleIDs))
		for n, id := range gs.AdminRoleIDs {
			mentions[n] = fmt.Sprintf("<@&%s>", id)
		}
		admins = strings.Join(mentions, ", ")
	}

	return &discordgo.MessageEmbed{
		Title: "⚙️ Server Settings",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Starting Balance", Value: common.FormatBalance(gs.StartingBalance) + " tokens", Inline: true},
			{Name: "Activity Channel", Value: channel, Inline: true},
			{Name: "Admin Roles", Value: admins},
			{Name: "Tier Roles", Value: formatTierRoles(gs.TierRoles)},
		},
	}
}

func formatTierRoles(roles map[string]models.BonusTier) string {
	if len(roles) == 0 {
		return "None, boosters still get the booster bonus"
	}
	ids := make([]string, 0, len(roles))
	for id := range roles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	lines := make([]string, len(ids))
	for n, id := range ids {
		tier := roles[id]
		lines[n] = fmt.Sprintf("<@&%s>: %s (+%d tickets)", id, tier, activity.TierBonus(tier))
	}
	return strings.Join(lines, "\n")
}
