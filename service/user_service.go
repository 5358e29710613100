package service

import (
	"context"
	"fmt"
	"sort"

	"curator/events"
	"curator/models"
	"curator/registry"

	log "github.com/sirupsen/logrus"
)

// userService implements the UserService interface
type userService struct {
	uowFactory UnitOfWorkFactory
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory) UserService {
	return &userService{uowFactory: uowFactory}
}

// Resolve returns the live record, adopting a stored one or creating a fresh
// one when the participant is seen for the first time
func (s *userService) Resolve(ctx context.Context, guild *registry.Guild, discordID, name string, presence *models.Presence) (*models.User, error) {
	if res := guild.User(discordID); res.OK() {
		user := res.Value()
		user.AttachPresence(presence)
		return user, nil
	}

	var stored *models.User
	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		var err error
		stored, err = uow.UserRepository().GetByDiscordID(ctx, guild.ID(), discordID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", discordID, err)
	}

	if stored != nil {
		user := guild.AdoptUser(stored)
		user.AttachPresence(presence)
		return user, nil
	}

	user, created := guild.GetOrCreateUser(discordID, name, presence)
	if !created {
		return user, nil
	}

	err = withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		if err := uow.UserRepository().Create(ctx, user); err != nil {
			return err
		}
		uow.EventBus().Publish(events.UserCreatedEvent{
			GuildID:        guild.ID(),
			UserID:         user.ID,
			Name:           user.Name,
			InitialBalance: user.Tokens(),
		})
		return nil
	})
	if err != nil {
		// the live record stays authoritative; the next balance write upserts it
		log.WithFields(log.Fields{
			"guild_id": guild.ID(),
			"user_id":  discordID,
			"error":    err,
		}).Warn("Failed to persist new user")
	}

	return user, nil
}

// Leaderboard returns the guild's users ordered by balance, highest first
func (s *userService) Leaderboard(ctx context.Context, guild *registry.Guild, limit int) []*models.User {
	users := guild.Users()
	balances := make(map[string]int64, len(users))
	for _, u := range users {
		balances[u.ID] = u.Tokens()
	}

	sort.SliceStable(users, func(i, j int) bool {
		return balances[users[i].ID] > balances[users[j].ID]
	})
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users
}

// SetBalance overwrites a user's balance and records the change
func (s *userService) SetBalance(ctx context.Context, guild *registry.Guild, user *models.User, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("balance cannot be negative: %d", amount)
	}

	old := user.Tokens()
	user.SetTokens(amount)

	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		if err := uow.UserRepository().SaveBalances(ctx, []*models.User{user}); err != nil {
			return err
		}
		uow.EventBus().Publish(events.BalanceChangeEvent{
			GuildID:      guild.ID(),
			UserID:       user.ID,
			OldBalance:   old,
			NewBalance:   amount,
			ChangeAmount: amount - old,
			Reason:       "admin_set",
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save balance for user %s: %w", user.ID, err)
	}
	return nil
}
