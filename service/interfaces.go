package service

import (
	"context"

	"curator/activity"
	"curator/events"
	"curator/models"
	"curator/outcome"
	"curator/registry"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user record storage
type UserRepository interface {
	// GetByDiscordID retrieves a user record, returning nil when absent
	GetByDiscordID(ctx context.Context, guildID, discordID string) (*models.User, error)

	// Create inserts a new user record; an existing row is left untouched
	Create(ctx context.Context, user *models.User) error

	// SaveBalances writes the current tokens and loss counters of every user
	SaveBalances(ctx context.Context, users []*models.User) error

	// AdjustTokens adds delta to a stored balance and returns the new balance
	AdjustTokens(ctx context.Context, guildID, discordID string, delta int64) (int64, error)

	// GetAll returns every user record of a guild ordered by discord id
	GetAll(ctx context.Context, guildID string) ([]*models.User, error)

	// Delete removes a user record
	Delete(ctx context.Context, guildID, discordID string) error
}

// GuildSettingsRepository defines the interface for guild settings storage
type GuildSettingsRepository interface {
	// GetOrCreateGuildSettings retrieves settings or creates defaults if not found
	GetOrCreateGuildSettings(ctx context.Context, guildID, guildName string, startingBalance int64) (*models.GuildSettings, error)

	// UpdateGuildSettings writes every mutable settings field
	UpdateGuildSettings(ctx context.Context, settings *models.GuildSettings) error
}

// ActivityRecordRepository defines the interface for the activity archive
type ActivityRecordRepository interface {
	// Record archives a finished activity
	Record(ctx context.Context, record *models.ActivityRecord) error

	// ListByGuild returns the most recently ended activities first
	ListByGuild(ctx context.Context, guildID string, limit int) ([]*models.ActivityRecord, error)
}

// PredictionPositionRepository defines the interface for stakes held by
// predictions that have not been settled
type PredictionPositionRepository interface {
	// AddStake adds a stake to the participant's stored position
	AddStake(ctx context.Context, position *models.PredictionPosition) error

	// DeleteByActivity drops every position of a prediction
	DeleteByActivity(ctx context.Context, activityID uuid.UUID) error

	// ListOpen returns every stored position
	ListOpen(ctx context.Context) ([]*models.PredictionPosition, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	GuildSettingsRepository() GuildSettingsRepository
	ActivityRecordRepository() ActivityRecordRepository
	PredictionPositionRepository() PredictionPositionRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// Metrics records domain counters. Implementations must tolerate being
// called when metrics export is disabled.
type Metrics interface {
	RecordEntry(kind models.ActivityKind)
	RecordRejection(kind models.ActivityKind, operation string)
	RecordSettlement(kind models.ActivityKind, payoutTokens int64)
	UpdateRunningActivities(kind models.ActivityKind, delta int64)
}

// GuildService keeps the registry in step with stored guild settings
type GuildService interface {
	// Ensure returns the live guild entry, loading or creating its settings on first use
	Ensure(ctx context.Context, guildID, guildName string) (*registry.Guild, error)

	// UpdateSettings edits a guild's settings in memory and in storage
	UpdateSettings(ctx context.Context, guild *registry.Guild, fn func(*models.GuildSettings)) (*models.GuildSettings, error)

	// Forget cancels a guild's running activities and drops it from the
	// registry, e.g. after the bot is removed
	Forget(ctx context.Context, guildID string)

	// ForgetAll forgets every registered guild
	ForgetAll(ctx context.Context)
}

// UserService resolves participants to their live user records
type UserService interface {
	// Resolve returns the participant's record, loading it from storage or
	// creating it with the guild's starting balance on first sight
	Resolve(ctx context.Context, guild *registry.Guild, discordID, name string, presence *models.Presence) (*models.User, error)

	// Leaderboard returns the guild's users ordered by balance, highest first
	Leaderboard(ctx context.Context, guild *registry.Guild, limit int) []*models.User

	// SetBalance overwrites a user's balance (admin grant)
	SetBalance(ctx context.Context, guild *registry.Guild, user *models.User, amount int64) error
}

// ActivityService runs raffles and predictions on behalf of the bot and
// writes their effects through to storage
type ActivityService interface {
	StartRaffle(ctx context.Context, guild *registry.Guild, title string, winnerSlots int, startedBy string) (activity.Activity, error)
	StartPrediction(ctx context.Context, guild *registry.Guild, title string, options []string, startedBy string) (activity.Activity, error)

	// AttachMessage correlates the posted activity message with the activity
	AttachMessage(guild *registry.Guild, messageID string, a activity.Activity) outcome.Result[activity.Activity]

	// Current returns the most recently started running activity of a kind
	Current(guild *registry.Guild, kind models.ActivityKind) (activity.Activity, bool)

	EnterRaffle(ctx context.Context, guild *registry.Guild, raffle *activity.Raffle, user *models.User, tier models.BonusTier) outcome.Result[*models.User]
	PlaceBet(ctx context.Context, guild *registry.Guild, prediction *activity.Prediction, user *models.User, stake int64, option string) outcome.Result[*models.User]
	// SetRaffleEntries pauses (open=false) or resumes entries of a running raffle
	SetRaffleEntries(guild *registry.Guild, raffle *activity.Raffle, open bool) outcome.Result[*activity.Raffle]

	EndRaffle(ctx context.Context, guild *registry.Guild, raffle *activity.Raffle) outcome.Result[[]*models.User]
	EndPrediction(ctx context.Context, guild *registry.Guild, prediction *activity.Prediction, option string) outcome.Result[*activity.Settlement]
	Reset(ctx context.Context, guild *registry.Guild, a activity.Activity) outcome.Result[activity.Activity]
	Cancel(ctx context.Context, guild *registry.Guild, a activity.Activity) outcome.Result[activity.Activity]

	// CancelRunning cancels every running activity of a guild
	CancelRunning(ctx context.Context, guild *registry.Guild) int

	// RefundOpenStakes credits back stakes left in storage by predictions
	// that never settled
	RefundOpenStakes(ctx context.Context) (int, error)

	// History returns archived activities, most recent first
	History(ctx context.Context, guildID string, limit int) ([]*models.ActivityRecord, error)
}

// EventEmitter delivers events that are not tied to a storage transaction
type EventEmitter interface {
	Emit(ctx context.Context, event events.Event)
}
