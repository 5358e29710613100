package balance

import (
	"context"
	"errors"
	"fmt"

	"curator/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) participant(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) (*common.Participant, bool) {
	p, err := f.resolver.Resolve(ctx, s, i)
	if errors.Is(err, common.ErrNotInGuild) {
		common.RespondWithError(s, i, "Balances only exist inside a server")
		return nil, false
	}
	if err != nil {
		common.HandleSystemError(s, i, err, "Failed to resolve participant")
		return nil, false
	}
	return p, true
}

// target resolves the member named by the "user" option, or nil when absent
func (f *Feature) target(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, p *common.Participant) (*common.Participant, error) {
	data := i.ApplicationCommandData()
	for _, opt := range data.Options {
		if opt.Name != "user" {
			continue
		}
		user := opt.UserValue(nil)
		member := &discordgo.Member{User: user}
		if data.Resolved != nil {
			if resolved, ok := data.Resolved.Members[user.ID]; ok {
				m := *resolved
				m.User = user
				if resolvedUser, ok := data.Resolved.Users[user.ID]; ok {
					m.User = resolvedUser
				}
				member = &m
			}
		}
		return f.resolver.ResolveMember(ctx, p.Guild, member)
	}
	return nil, nil
}

func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	p, ok := f.participant(ctx, s, i)
	if !ok {
		return
	}

	subject, err := f.target(ctx, s, i, p)
	if err != nil {
		common.HandleSystemError(s, i, err, "Failed to resolve balance target")
		return
	}

	var message string
	if subject == nil || subject.User.ID == p.User.ID {
		message = fmt.Sprintf("%s, your current balance: **%s tokens**", p.User.Name, common.FormatBalance(p.User.Tokens()))
	} else {
		message = fmt.Sprintf("%s has **%s tokens**", subject.User.Name, common.FormatBalance(subject.User.Tokens()))
	}
	common.RespondWithMessage(s, i, message, false)
}

func (f *Feature) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	p, ok := f.participant(ctx, s, i)
	if !ok {
		return
	}

	users := f.users.Leaderboard(ctx, p.Guild, leaderboardSize)
	if err := common.RespondWithEmbed(s, i, BuildLeaderboardEmbed(users), nil, false); err != nil {
		log.WithError(err).Error("Failed to send leaderboard")
	}
}

func (f *Feature) handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	p, ok := f.participant(ctx, s, i)
	if !ok {
		return
	}

	records, err := f.activities.History(ctx, p.Guild.ID(), historySize)
	if err != nil {
		common.HandleSystemError(s, i, err, "Failed to load activity history")
		return
	}
	if err := common.RespondWithEmbed(s, i, BuildHistoryEmbed(records), nil, false); err != nil {
		log.WithError(err).Error("Failed to send activity history")
	}
}

func (f *Feature) handleSetBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	p, ok := f.participant(ctx, s, i)
	if !ok {
		return
	}
	if !p.IsAdmin() {
		common.RespondWithError(s, i, "You need administrator permissions to set balances")
		return
	}

	subject, err := f.target(ctx, s, i, p)
	if err != nil {
		common.HandleSystemError(s, i, err, "Failed to resolve balance target")
		return
	}
	if subject == nil {
		common.RespondWithError(s, i, "Pick a user")
		return
	}

	var amount int64 = -1
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "amount" {
			amount = opt.IntValue()
		}
	}
	if amount < 0 {
		common.RespondWithError(s, i, "Balance cannot be negative")
		return
	}

	if err := f.users.SetBalance(ctx, p.Guild, subject.User, amount); err != nil {
		// the live balance is already updated; storage catches up on the next write
		log.WithFields(log.Fields{
			"guild_id": p.Guild.ID(),
			"user_id":  subject.User.ID,
			"error":    err,
		}).Warn("Failed to persist balance override")
	}
	common.RespondWithSuccess(s, i, fmt.Sprintf("%s now has %s tokens", common.Mention(subject.User.ID), common.FormatBalance(amount)), true)
}
