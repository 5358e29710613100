package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityKind distinguishes the two activity variants.
type ActivityKind string

const (
	ActivityKindRaffle     ActivityKind = "raffle"
	ActivityKindPrediction ActivityKind = "prediction"
)

// ActivityStatus is the terminal state an archived activity reached.
type ActivityStatus string

const (
	ActivityStatusSettled   ActivityStatus = "settled"
	ActivityStatusCancelled ActivityStatus = "cancelled"
)

// ActivityRecord is the archived summary of a finished raffle or prediction.
type ActivityRecord struct {
	ID            uuid.UUID        `db:"id"`
	GuildID       string           `db:"guild_id"`
	Kind          ActivityKind     `db:"kind"`
	Title         string           `db:"title"`
	Status        ActivityStatus   `db:"status"`
	WinningOption *string          `db:"winning_option"`
	Participants  int              `db:"participants"`
	TotalPool     int64            `db:"total_pool"`
	Winners       []string         `db:"winners"`
	Payouts       map[string]int64 `db:"payouts"`
	StartedAt     time.Time        `db:"started_at"`
	EndedAt       time.Time        `db:"ended_at"`
}
