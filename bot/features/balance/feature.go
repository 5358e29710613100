package balance

import (
	"curator/bot/common"
	"curator/service"

	"github.com/bwmarrin/discordgo"
)

const (
	leaderboardSize = 10
	historySize     = 10
)

// Feature answers balance, leaderboard and activity history commands
type Feature struct {
	users      service.UserService
	activities service.ActivityService
	resolver   *common.Resolver
}

func New(users service.UserService, activities service.ActivityService, resolver *common.Resolver) *Feature {
	return &Feature{
		users:      users,
		activities: activities,
		resolver:   resolver,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "balance":
		f.handleBalance(s, i)
	case "leaderboard":
		f.handleLeaderboard(s, i)
	case "history":
		f.handleHistory(s, i)
	case "set-balance":
		f.handleSetBalance(s, i)
	}
}
