package prediction

import (
	"strings"

	"curator/bot/common"
	"curator/service"

	"github.com/bwmarrin/discordgo"
)

// Feature runs parimutuel predictions through slash commands, bet buttons
// and stake modals
type Feature struct {
	activities service.ActivityService
	resolver   *common.Resolver
	posts      *common.PostTracker
}

// NewFeature creates a new prediction feature instance
func NewFeature(activities service.ActivityService, resolver *common.Resolver, posts *common.PostTracker) *Feature {
	return &Feature{
		activities: activities,
		resolver:   resolver,
		posts:      posts,
	}
}

// HandleCommand routes /prediction subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "start":
		f.handleStart(s, i, options[0].Options)
	case "end":
		f.handleEnd(s, i, options[0].Options)
	case "reset":
		f.handleReset(s, i)
	case "cancel":
		f.handleCancel(s, i)
	}
}

// OwnsModal reports whether a modal custom ID belongs to this feature
func OwnsModal(customID string) bool {
	return strings.HasPrefix(customID, stakeModalPrefix)
}
