package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"curator/events"
	"curator/models"
	"curator/repository/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitFlushesEvents(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	testutil.CreateTestGuild(t, testDB.DB, "g1")

	bus := events.NewBus()
	var mu sync.Mutex
	var received []events.Event
	done := make(chan struct{}, 1)
	bus.Subscribe(events.EventTypeUserCreated, func(ctx context.Context, e events.Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
		done <- struct{}{}
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	user := testutil.CreateTestUser("g1", "u1")
	require.NoError(t, uow.UserRepository().Create(ctx, user))
	uow.EventBus().Publish(events.UserCreatedEvent{GuildID: "g1", UserID: "u1", InitialBalance: 100})
	require.NoError(t, uow.Commit())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered after commit")
	}
	mu.Lock()
	assert.Len(t, received, 1)
	mu.Unlock()

	stored, err := NewUserRepository(testDB.DB).GetByDiscordID(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestUnitOfWork_RollbackDiscards(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	testutil.CreateTestGuild(t, testDB.DB, "g1")

	bus := events.NewBus()
	delivered := make(chan struct{}, 1)
	bus.SubscribeAll(func(ctx context.Context, e events.Event) {
		delivered <- struct{}{}
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.UserRepository().SaveBalances(ctx, []*models.User{testutil.CreateTestUser("g1", "u1")}))
	uow.EventBus().Publish(events.UserCreatedEvent{GuildID: "g1", UserID: "u1"})
	require.NoError(t, uow.Rollback())
	// rolling back twice is a no-op
	require.NoError(t, uow.Rollback())

	select {
	case <-delivered:
		t.Fatal("event delivered after rollback")
	case <-time.After(100 * time.Millisecond):
	}

	stored, err := NewUserRepository(testDB.DB).GetByDiscordID(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestUnitOfWork_Lifecycle(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	uow := NewUnitOfWorkFactory(testDB.DB, events.NewBus()).Create()

	assert.Panics(t, func() { uow.UserRepository() })
	assert.Error(t, uow.Commit())

	ctx := context.Background()
	require.NoError(t, uow.Begin(ctx))
	assert.Error(t, uow.Begin(ctx))
	require.NoError(t, uow.Rollback())
}

func TestUnitOfWork_FailedStatementAbortsTransaction(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	uow := NewUnitOfWorkFactory(testDB.DB, events.NewBus()).Create()
	ctx := context.Background()
	require.NoError(t, uow.Begin(ctx))

	// no guild row, so the foreign key rejects the insert
	err := uow.UserRepository().Create(ctx, testutil.CreateTestUser("ghost", "u1"))
	require.Error(t, err)
	require.NoError(t, uow.Rollback())
}

func TestUnitOfWork_StakeAndDebitCommitTogether(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	testutil.CreateTestGuild(t, testDB.DB, "g1")

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	ctx := context.Background()
	user := testutil.CreateTestUserWithBalance("g1", "u1", 70)
	activityID := uuid.New()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.UserRepository().SaveBalances(ctx, []*models.User{user}))
	require.NoError(t, uow.PredictionPositionRepository().AddStake(ctx, testutil.CreateTestPosition("g1", "u1", activityID, "Heads", 30)))
	require.NoError(t, uow.Rollback())

	open, err := NewPredictionPositionRepository(testDB.DB).ListOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	uow = factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.UserRepository().SaveBalances(ctx, []*models.User{user}))
	require.NoError(t, uow.PredictionPositionRepository().AddStake(ctx, testutil.CreateTestPosition("g1", "u1", activityID, "Heads", 30)))
	require.NoError(t, uow.Commit())

	open, err = NewPredictionPositionRepository(testDB.DB).ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	stored, err := NewUserRepository(testDB.DB).GetByDiscordID(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(70), stored.Tokens())
}
