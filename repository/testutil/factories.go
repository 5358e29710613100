package testutil

import (
	"context"
	"testing"
	"time"

	"curator/database"
	"curator/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// CreateTestGuild inserts a guild_settings row so user and archive rows have
// a parent to reference
func CreateTestGuild(t *testing.T, db *database.DB, guildID string) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		`INSERT INTO guild_settings (guild_id, guild_name, starting_balance) VALUES ($1, $2, $3)`,
		guildID, "guild-"+guildID, models.DefaultStartingBalance)
	require.NoError(t, err)
}

// CreateTestUser creates a test user record with the default starting balance
func CreateTestUser(guildID, discordID string) *models.User {
	return models.NewUser(guildID, discordID, "user-"+discordID, models.DefaultStartingBalance)
}

// CreateTestUserWithBalance creates a test user with a specific balance
func CreateTestUserWithBalance(guildID, discordID string, tokens int64) *models.User {
	user := CreateTestUser(guildID, discordID)
	user.SetTokens(tokens)
	return user
}

// CreateTestActivityRecord creates a settled raffle record that ended at endedAt
func CreateTestActivityRecord(guildID, title string, endedAt time.Time) *models.ActivityRecord {
	return &models.ActivityRecord{
		ID:           uuid.New(),
		GuildID:      guildID,
		Kind:         models.ActivityKindRaffle,
		Title:        title,
		Status:       models.ActivityStatusSettled,
		Participants: 2,
		TotalPool:    205,
		Winners:      []string{"u1"},
		Payouts:      map[string]int64{},
		StartedAt:    endedAt.Add(-time.Hour),
		EndedAt:      endedAt,
	}
}

// CreateTestPosition creates a stake on a prediction
func CreateTestPosition(guildID, discordID string, activityID uuid.UUID, option string, stake int64) *models.PredictionPosition {
	return &models.PredictionPosition{
		ActivityID: activityID,
		GuildID:    guildID,
		DiscordID:  discordID,
		Option:     option,
		Stake:      stake,
	}
}
