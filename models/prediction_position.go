package models

import (
	"time"

	"github.com/google/uuid"
)

// PredictionPosition is the stored stake of one participant in a prediction
// that has not been settled yet. The row exists only while the stake is
// owed back to the participant or to the pool.
type PredictionPosition struct {
	ActivityID uuid.UUID `db:"activity_id"`
	GuildID    string    `db:"guild_id"`
	DiscordID  string    `db:"discord_id"`
	Option     string    `db:"option"`
	Stake      int64     `db:"stake"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
