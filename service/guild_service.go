package service

import (
	"context"
	"fmt"

	"curator/models"
	"curator/registry"

	log "github.com/sirupsen/logrus"
)

// guildService implements the GuildService interface
type guildService struct {
	registry               *registry.Registry
	uowFactory             UnitOfWorkFactory
	activities             ActivityService
	defaultStartingBalance int64
}

// NewGuildService creates a new guild service
func NewGuildService(reg *registry.Registry, uowFactory UnitOfWorkFactory, activities ActivityService, defaultStartingBalance int64) GuildService {
	return &guildService{
		registry:               reg,
		uowFactory:             uowFactory,
		activities:             activities,
		defaultStartingBalance: defaultStartingBalance,
	}
}

// Ensure returns the live guild entry, loading its settings from storage on first use
func (s *guildService) Ensure(ctx context.Context, guildID, guildName string) (*registry.Guild, error) {
	if res := s.registry.Guild(guildID); res.OK() {
		return res.Value(), nil
	}

	var settings *models.GuildSettings
	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		var err error
		settings, err = uow.GuildSettingsRepository().GetOrCreateGuildSettings(ctx, guildID, guildName, s.defaultStartingBalance)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load settings for guild %s: %w", guildID, err)
	}

	res := s.registry.RegisterGuild(guildID, settings)
	if !res.OK() {
		// another request registered the guild while settings were loading
		existing := s.registry.Guild(guildID)
		if !existing.OK() {
			return nil, fmt.Errorf("failed to register guild %s: %w", guildID, existing.Err())
		}
		return existing.Value(), nil
	}

	log.WithFields(log.Fields{
		"guild_id":         guildID,
		"guild_name":       guildName,
		"starting_balance": settings.StartingBalance,
	}).Info("Guild registered")
	return res.Value(), nil
}

// UpdateSettings persists the edited settings first and only then publishes
// them to the live entry
func (s *guildService) UpdateSettings(ctx context.Context, guild *registry.Guild, fn func(*models.GuildSettings)) (*models.GuildSettings, error) {
	candidate := guild.Settings()
	fn(candidate)
	candidate.GuildID = guild.ID()

	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		return uow.GuildSettingsRepository().UpdateGuildSettings(ctx, candidate)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update settings for guild %s: %w", guild.ID(), err)
	}

	return guild.UpdateSettings(func(current *models.GuildSettings) {
		*current = *candidate.Clone()
	}), nil
}

// Forget cancels the guild's running activities so open stakes are refunded,
// then drops it from the registry
func (s *guildService) Forget(ctx context.Context, guildID string) {
	res := s.registry.Guild(guildID)
	if !res.OK() {
		return
	}
	cancelled := s.activities.CancelRunning(ctx, res.Value())

	if removed := s.registry.RemoveGuild(guildID); removed.OK() {
		log.WithFields(log.Fields{
			"guild_id":             guildID,
			"cancelled_activities": cancelled,
		}).Info("Guild removed from registry")
	}
}

// ForgetAll forgets every registered guild, used on shutdown
func (s *guildService) ForgetAll(ctx context.Context) {
	for _, guild := range s.registry.Guilds() {
		s.Forget(ctx, guild.ID())
	}
}
