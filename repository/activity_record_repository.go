package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"curator/database"
	"curator/models"

	"github.com/jackc/pgx/v5"
)

// ActivityRecordRepository implements the ActivityRecordRepository interface
type ActivityRecordRepository struct {
	q Queryable
}

// NewActivityRecordRepository creates a new activity record repository
func NewActivityRecordRepository(db *database.DB) *ActivityRecordRepository {
	return &ActivityRecordRepository{q: db.Pool}
}

// newActivityRecordRepositoryWithTx creates a new activity record repository with a transaction
func newActivityRecordRepositoryWithTx(tx Queryable) *ActivityRecordRepository {
	return &ActivityRecordRepository{q: tx}
}

// Record archives a finished activity. Recording the same activity twice
// is a no-op.
func (r *ActivityRecordRepository) Record(ctx context.Context, record *models.ActivityRecord) error {
	winners := record.Winners
	if winners == nil {
		winners = []string{}
	}
	winnersJSON, err := json.Marshal(winners)
	if err != nil {
		return fmt.Errorf("failed to marshal winners: %w", err)
	}

	payouts := record.Payouts
	if payouts == nil {
		payouts = map[string]int64{}
	}
	payoutsJSON, err := json.Marshal(payouts)
	if err != nil {
		return fmt.Errorf("failed to marshal payouts: %w", err)
	}

	query := `
		INSERT INTO activity_records (
			id, guild_id, kind, title, status, winning_option,
			participants, total_pool, winners, payouts, started_at, ended_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`

	_, err = r.q.Exec(ctx, query,
		record.ID,
		record.GuildID,
		record.Kind,
		record.Title,
		record.Status,
		record.WinningOption,
		record.Participants,
		record.TotalPool,
		winnersJSON,
		payoutsJSON,
		record.StartedAt,
		record.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record activity %s: %w", record.ID, err)
	}

	return nil
}

// ListByGuild returns the most recently ended activities first
func (r *ActivityRecordRepository) ListByGuild(ctx context.Context, guildID string, limit int) ([]*models.ActivityRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, guild_id, kind, title, status, winning_option,
		       participants, total_pool, winners, payouts, started_at, ended_at
		FROM activity_records
		WHERE guild_id = $1
		ORDER BY ended_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity records for guild %s: %w", guildID, err)
	}
	defer rows.Close()

	var records []*models.ActivityRecord
	for rows.Next() {
		record, err := scanActivityRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity records: %w", err)
	}

	return records, nil
}

func scanActivityRecord(row pgx.Row) (*models.ActivityRecord, error) {
	var record models.ActivityRecord
	var winnersJSON, payoutsJSON []byte
	err := row.Scan(
		&record.ID,
		&record.GuildID,
		&record.Kind,
		&record.Title,
		&record.Status,
		&record.WinningOption,
		&record.Participants,
		&record.TotalPool,
		&winnersJSON,
		&payoutsJSON,
		&record.StartedAt,
		&record.EndedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(winnersJSON, &record.Winners); err != nil {
		return nil, fmt.Errorf("failed to unmarshal winners: %w", err)
	}
	if err := json.Unmarshal(payoutsJSON, &record.Payouts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payouts: %w", err)
	}
	return &record, nil
}
