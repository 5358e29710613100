package settings

import (
	"curator/bot/common"
	"curator/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles guild settings management
type Feature struct {
	guilds   service.GuildService
	resolver *common.Resolver
}

// NewFeature creates a new settings feature instance
func NewFeature(guilds service.GuildService, resolver *common.Resolver) *Feature {
	return &Feature{
		guilds:   guilds,
		resolver: resolver,
	}
}

// HandleCommand routes settings commands to appropriate handlers
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "show":
		f.handleShow(s, i)
	case "starting-balance":
		f.handleStartingBalance(s, i, options[0].Options)
	case "admin-role":
		f.handleAdminRole(s, i, options[0].Options)
	case "activity-channel":
		f.handleActivityChannel(s, i, options[0].Options)
	case "tier-role":
		f.handleTierRole(s, i, options[0].Options)
	}
}
