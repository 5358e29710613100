package service

import (
	"context"
	"sync"

	"curator/events"
	"curator/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByDiscordID(ctx context.Context, guildID, discordID string) (*models.User, error) {
	args := m.Called(ctx, guildID, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SaveBalances(ctx context.Context, users []*models.User) error {
	args := m.Called(ctx, users)
	return args.Error(0)
}

func (m *MockUserRepository) AdjustTokens(ctx context.Context, guildID, discordID string, delta int64) (int64, error) {
	args := m.Called(ctx, guildID, discordID, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) GetAll(ctx context.Context, guildID string) ([]*models.User, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, guildID, discordID string) error {
	args := m.Called(ctx, guildID, discordID)
	return args.Error(0)
}

// MockGuildSettingsRepository is a mock implementation of GuildSettingsRepository
type MockGuildSettingsRepository struct {
	mock.Mock
}

func (m *MockGuildSettingsRepository) GetOrCreateGuildSettings(ctx context.Context, guildID, guildName string, startingBalance int64) (*models.GuildSettings, error) {
	args := m.Called(ctx, guildID, guildName, startingBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsRepository) UpdateGuildSettings(ctx context.Context, settings *models.GuildSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockActivityRecordRepository is a mock implementation of ActivityRecordRepository
type MockActivityRecordRepository struct {
	mock.Mock
}

func (m *MockActivityRecordRepository) Record(ctx context.Context, record *models.ActivityRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockActivityRecordRepository) ListByGuild(ctx context.Context, guildID string, limit int) ([]*models.ActivityRecord, error) {
	args := m.Called(ctx, guildID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ActivityRecord), args.Error(1)
}

// MockPredictionPositionRepository is a mock implementation of PredictionPositionRepository
type MockPredictionPositionRepository struct {
	mock.Mock
}

func (m *MockPredictionPositionRepository) AddStake(ctx context.Context, position *models.PredictionPosition) error {
	args := m.Called(ctx, position)
	return args.Error(0)
}

func (m *MockPredictionPositionRepository) DeleteByActivity(ctx context.Context, activityID uuid.UUID) error {
	args := m.Called(ctx, activityID)
	return args.Error(0)
}

func (m *MockPredictionPositionRepository) ListOpen(ctx context.Context) ([]*models.PredictionPosition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PredictionPosition), args.Error(1)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []events.Event
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

func (m *MockEventPublisher) Emit(ctx context.Context, event events.Event) {
	m.Publish(event)
}

// Types returns the types of every recorded event in order
func (m *MockEventPublisher) Types() []events.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]events.EventType, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Type()
	}
	return types
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	UserRepo           *MockUserRepository
	GuildSettingsRepo  *MockGuildSettingsRepository
	ActivityRecordRepo *MockActivityRecordRepository
	PositionRepo       *MockPredictionPositionRepository
	Publisher          *MockEventPublisher
}

// NewMockUnitOfWork creates a unit of work whose Begin, Commit and Rollback
// succeed unless overridden
func NewMockUnitOfWork() *MockUnitOfWork {
	uow := &MockUnitOfWork{
		UserRepo:           new(MockUserRepository),
		GuildSettingsRepo:  new(MockGuildSettingsRepository),
		ActivityRecordRepo: new(MockActivityRecordRepository),
		PositionRepo:       new(MockPredictionPositionRepository),
		Publisher:          new(MockEventPublisher),
	}
	uow.On("Begin", mock.Anything).Return(nil).Maybe()
	uow.On("Commit").Return(nil).Maybe()
	uow.On("Rollback").Return(nil).Maybe()
	return uow
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.UserRepo
}

func (m *MockUnitOfWork) GuildSettingsRepository() GuildSettingsRepository {
	return m.GuildSettingsRepo
}

func (m *MockUnitOfWork) ActivityRecordRepository() ActivityRecordRepository {
	return m.ActivityRecordRepo
}

func (m *MockUnitOfWork) PredictionPositionRepository() PredictionPositionRepository {
	return m.PositionRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.Publisher
}

// MockUnitOfWorkFactory hands out the same unit of work for every Create
type MockUnitOfWorkFactory struct {
	UOW *MockUnitOfWork
}

func (f *MockUnitOfWorkFactory) Create() UnitOfWork {
	return f.UOW
}

// MockMetrics is a mock implementation of Metrics
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordEntry(kind models.ActivityKind) {
	m.Called(kind)
}

func (m *MockMetrics) RecordRejection(kind models.ActivityKind, operation string) {
	m.Called(kind, operation)
}

func (m *MockMetrics) RecordSettlement(kind models.ActivityKind, payoutTokens int64) {
	m.Called(kind, payoutTokens)
}

func (m *MockMetrics) UpdateRunningActivities(kind models.ActivityKind, delta int64) {
	m.Called(kind, delta)
}
