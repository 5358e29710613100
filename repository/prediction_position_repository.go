package repository

import (
	"context"
	"fmt"

	"curator/database"
	"curator/models"

	"github.com/google/uuid"
)

// PredictionPositionRepository implements the PredictionPositionRepository interface
type PredictionPositionRepository struct {
	q Queryable
}

// NewPredictionPositionRepository creates a new prediction position repository
func NewPredictionPositionRepository(db *database.DB) *PredictionPositionRepository {
	return &PredictionPositionRepository{q: db.Pool}
}

// newPredictionPositionRepositoryWithTx creates a new prediction position repository with a transaction
func newPredictionPositionRepositoryWithTx(tx Queryable) *PredictionPositionRepository {
	return &PredictionPositionRepository{q: tx}
}

// AddStake records a stake, adding it to any stake the participant already
// holds on the same prediction. The stored option is the one chosen first.
func (r *PredictionPositionRepository) AddStake(ctx context.Context, position *models.PredictionPosition) error {
	query := `
		INSERT INTO prediction_positions (activity_id, guild_id, discord_id, option, stake)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (activity_id, discord_id) DO UPDATE
		SET stake = prediction_positions.stake + EXCLUDED.stake,
		    updated_at = NOW()
		RETURNING stake, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		position.ActivityID,
		position.GuildID,
		position.DiscordID,
		position.Option,
		position.Stake,
	).Scan(&position.Stake, &position.CreatedAt, &position.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to add stake for user %s on prediction %s: %w", position.DiscordID, position.ActivityID, err)
	}
	return nil
}

// DeleteByActivity drops every position of a prediction once its stakes are
// settled or refunded
func (r *PredictionPositionRepository) DeleteByActivity(ctx context.Context, activityID uuid.UUID) error {
	_, err := r.q.Exec(ctx, `DELETE FROM prediction_positions WHERE activity_id = $1`, activityID)
	if err != nil {
		return fmt.Errorf("failed to delete positions of prediction %s: %w", activityID, err)
	}
	return nil
}

// ListOpen returns every stored position ordered by guild, prediction and participant
func (r *PredictionPositionRepository) ListOpen(ctx context.Context) ([]*models.PredictionPosition, error) {
	query := `
		SELECT activity_id, guild_id, discord_id, option, stake, created_at, updated_at
		FROM prediction_positions
		ORDER BY guild_id, activity_id, discord_id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list open positions: %w", err)
	}
	defer rows.Close()

	var positions []*models.PredictionPosition
	for rows.Next() {
		var p models.PredictionPosition
		if err := rows.Scan(&p.ActivityID, &p.GuildID, &p.DiscordID, &p.Option, &p.Stake, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate positions: %w", err)
	}

	return positions, nil
}
