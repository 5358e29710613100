package repository

import (
	"context"
	"testing"

	"curator/models"
	"curator/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByDiscordID(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	testutil.CreateTestGuild(t, testDB.DB, "g1")

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("user not found", func(t *testing.T) {
		user, err := repo.GetByDiscordID(ctx, "g1", "missing")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("user found", func(t *testing.T) {
		testUser := testutil.CreateTestUserWithBalance("g1", "u1", 250)
		testUser.RecordLoss()
		require.NoError(t, repo.Create(ctx, testUser))

		user, err := repo.GetByDiscordID(ctx, "g1", "u1")
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, "g1", user.GuildID)
		assert.Equal(t, testUser.Name, user.Name)
		assert.Equal(t, int64(250), user.Tokens())
		assert.Equal(t, 1, user.Losses())
	})

	t.Run("records are scoped by guild", func(t *testing.T) {
		testutil.CreateTestGuild(t, testDB.DB, "g2")
		user, err := repo.GetByDiscordID(ctx, "g2", "u1")
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}

func TestUserRepository_CreateKeepsExistingRow(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	testutil.CreateTestGuild(t, testDB.DB, "g1")

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.CreateTestUserWithBalance("g1", "u1", 40)))
	require.NoError(t, repo.Create(ctx, testutil.CreateTestUserWithBalance("g1", "u1", 999)))

	user, err := repo.GetByDiscordID(ctx, "g1", "u1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, int64(40), user.Tokens())
}

func TestUserRepository_SaveBalances(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	testutil.CreateTestGuild(t, testDB.DB, "g1")

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	alice := testutil.CreateTestUser("g1", "alice")
	bob := testutil.CreateTestUser("g1", "bob")
	require.NoError(t, repo.Create(ctx, alice))

	alice.Debit(30)
	alice.RecordLoss()
	bob.Credit(50)

	// bob has no row yet and is inserted
	require.NoError(t, repo.SaveBalances(ctx, []*models.User{alice, bob}))

	users, err := repo.GetAll(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, "alice", users[0].ID)
	assert.Equal(t, int64(70), users[0].Tokens())
	assert.Equal(t, 1, users[0].Losses())
	assert.Equal(t, "bob", users[1].ID)
	assert.Equal(t, int64(150), users[1].Tokens())

	assert.NoError(t, repo.SaveBalances(ctx, nil))
}

func TestUserRepository_Delete(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	testutil.CreateTestGuild(t, testDB.DB, "g1")

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.CreateTestUser("g1", "u1")))
	require.NoError(t, repo.Delete(ctx, "g1", "u1"))

	user, err := repo.GetByDiscordID(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.Nil(t, user)

	assert.Error(t, repo.Delete(ctx, "g1", "u1"))
}

func TestUserRepository_AdjustTokens(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	testutil.CreateTestGuild(t, testDB.DB, "g1")

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, testutil.CreateTestUserWithBalance("g1", "u1", 40)))

	tokens, err := repo.AdjustTokens(ctx, "g1", "u1", 60)
	require.NoError(t, err)
	assert.Equal(t, int64(100), tokens)

	stored, err := repo.GetByDiscordID(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), stored.Tokens())

	_, err = repo.AdjustTokens(ctx, "g1", "missing", 10)
	assert.Error(t, err)
}
