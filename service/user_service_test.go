package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"curator/events"
	"curator/models"
	"curator/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestGuild(t *testing.T, startingBalance int64) *registry.Guild {
	t.Helper()
	res := registry.New().RegisterGuild("g1", models.NewGuildSettings("g1", "Guild", startingBalance))
	require.True(t, res.OK())
	return res.Value()
}

func TestUserService_Resolve_LiveRecord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uow := NewMockUnitOfWork()
	guild := newTestGuild(t, 100)
	live, _ := guild.GetOrCreateUser("u1", "alice", nil)
	svc := NewUserService(&MockUnitOfWorkFactory{UOW: uow})

	presence := &models.Presence{DisplayName: "Alice"}
	user, err := svc.Resolve(ctx, guild, "u1", "alice", presence)
	require.NoError(t, err)
	assert.Same(t, live, user)
	assert.Same(t, presence, user.Presence())
	uow.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestUserService_Resolve_StoredRecord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uow := NewMockUnitOfWork()
	guild := newTestGuild(t, 100)
	svc := NewUserService(&MockUnitOfWorkFactory{UOW: uow})

	now := time.Now()
	stored := models.RestoreUser("g1", "u1", "alice", 420, 2, now, now)
	uow.UserRepo.On("GetByDiscordID", ctx, "g1", "u1").Return(stored, nil).Once()

	user, err := svc.Resolve(ctx, guild, "u1", "alice", nil)
	require.NoError(t, err)
	assert.Same(t, stored, user)
	assert.Equal(t, int64(420), user.Tokens())
	assert.Equal(t, 2, user.Losses())
	assert.Same(t, stored, guild.User("u1").Value())
	uow.UserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_Resolve_NewRecord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uow := NewMockUnitOfWork()
	guild := newTestGuild(t, 300)
	svc := NewUserService(&MockUnitOfWorkFactory{UOW: uow})

	uow.UserRepo.On("GetByDiscordID", ctx, "g1", "u1").Return(nil, nil).Once()
	uow.UserRepo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.ID == "u1" && u.Tokens() == 300
	})).Return(nil).Once()

	user, err := svc.Resolve(ctx, guild, "u1", "alice", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(300), user.Tokens())
	assert.Equal(t, []events.EventType{events.EventTypeUserCreated}, uow.Publisher.Types())
	uow.UserRepo.AssertExpectations(t)
}

func TestUserService_Resolve_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		lookupErr error
		createErr error
		wantErr   bool
	}{
		{name: "lookup failure is returned", lookupErr: errors.New("db down"), wantErr: true},
		{name: "create failure keeps live record", createErr: errors.New("insert failed"), wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			uow := NewMockUnitOfWork()
			guild := newTestGuild(t, 100)
			svc := NewUserService(&MockUnitOfWorkFactory{UOW: uow})

			uow.UserRepo.On("GetByDiscordID", ctx, "g1", "u1").Return(nil, tt.lookupErr)
			uow.UserRepo.On("Create", ctx, mock.Anything).Return(tt.createErr)

			user, err := svc.Resolve(ctx, guild, "u1", "alice", nil)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, user)
				assert.False(t, guild.User("u1").OK())
				return
			}
			require.NoError(t, err)
			assert.Same(t, user, guild.User("u1").Value())
		})
	}
}

func TestUserService_Leaderboard(t *testing.T) {
	t.Parallel()

	guild := newTestGuild(t, 100)
	a, _ := guild.GetOrCreateUser("a", "a", nil)
	b, _ := guild.GetOrCreateUser("b", "b", nil)
	c, _ := guild.GetOrCreateUser("c", "c", nil)
	a.Credit(50)
	c.Credit(500)
	b.Debit(100)

	svc := NewUserService(&MockUnitOfWorkFactory{UOW: NewMockUnitOfWork()})
	board := svc.Leaderboard(context.Background(), guild, 2)

	require.Len(t, board, 2)
	assert.Equal(t, "c", board[0].ID)
	assert.Equal(t, "a", board[1].ID)
}

func TestUserService_SetBalance(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uow := NewMockUnitOfWork()
	guild := newTestGuild(t, 100)
	user, _ := guild.GetOrCreateUser("u1", "alice", nil)
	svc := NewUserService(&MockUnitOfWorkFactory{UOW: uow})

	uow.UserRepo.On("SaveBalances", ctx, []*models.User{user}).Return(nil).Once()

	require.NoError(t, svc.SetBalance(ctx, guild, user, 1000))
	assert.Equal(t, int64(1000), user.Tokens())

	require.Len(t, uow.Publisher.Events, 1)
	change := uow.Publisher.Events[0].(events.BalanceChangeEvent)
	assert.Equal(t, int64(100), change.OldBalance)
	assert.Equal(t, int64(900), change.ChangeAmount)

	assert.Error(t, svc.SetBalance(ctx, guild, user, -1))
}
