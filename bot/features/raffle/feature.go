package raffle

import (
	"curator/bot/common"
	"curator/service"

	"github.com/bwmarrin/discordgo"
)

// Feature runs raffles through slash commands and message buttons
type Feature struct {
	activities         service.ActivityService
	resolver           *common.Resolver
	posts              *common.PostTracker
	defaultWinnerSlots int
}

// NewFeature creates a new raffle feature instance
func NewFeature(activities service.ActivityService, resolver *common.Resolver, posts *common.PostTracker, defaultWinnerSlots int) *Feature {
	if defaultWinnerSlots < 1 {
		defaultWinnerSlots = 1
	}
	return &Feature{
		activities:         activities,
		resolver:           resolver,
		posts:              posts,
		defaultWinnerSlots: defaultWinnerSlots,
	}
}

// HandleCommand routes /raffle subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "start":
		f.handleStart(s, i, options[0].Options)
	case "close":
		f.handleEntries(s, i, false)
	case "open":
		f.handleEntries(s, i, true)
	case "end":
		f.handleEnd(s, i)
	case "reset":
		f.handleReset(s, i)
	case "cancel":
		f.handleCancel(s, i)
	}
}
