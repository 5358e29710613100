package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"curator/database"
	"curator/models"

	"github.com/jackc/pgx/v5"
)

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q Queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx Queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// GetByDiscordID retrieves a user record, returning nil when absent
func (r *UserRepository) GetByDiscordID(ctx context.Context, guildID, discordID string) (*models.User, error) {
	query := `
		SELECT guild_id, discord_id, name, tokens, losses, created_at, updated_at
		FROM users
		WHERE guild_id = $1 AND discord_id = $2
	`

	user, err := scanUser(r.q.QueryRow(ctx, query, guildID, discordID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s in guild %s: %w", discordID, guildID, err)
	}
	return user, nil
}

// Create inserts a new user record. An existing row wins, so two bot
// instances racing on the same participant leave the first write in place.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (guild_id, discord_id, name, tokens, losses, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (guild_id, discord_id) DO NOTHING
	`

	tokens, losses := user.Snapshot()
	_, err := r.q.Exec(ctx, query,
		user.GuildID,
		user.ID,
		user.Name,
		tokens,
		losses,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user %s in guild %s: %w", user.ID, user.GuildID, err)
	}
	return nil
}

// SaveBalances writes the current tokens and loss counters of every user
func (r *UserRepository) SaveBalances(ctx context.Context, users []*models.User) error {
	if len(users) == 0 {
		return nil
	}

	query := `
		INSERT INTO users (guild_id, discord_id, name, tokens, losses)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (guild_id, discord_id) DO UPDATE
		SET tokens = EXCLUDED.tokens,
		    losses = EXCLUDED.losses,
		    name = EXCLUDED.name,
		    updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for _, u := range users {
		tokens, losses := u.Snapshot()
		batch.Queue(query, u.GuildID, u.ID, u.Name, tokens, losses)
	}

	results := r.q.SendBatch(ctx, batch)
	defer results.Close()

	for _, u := range users {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to save balance for user %s in guild %s: %w", u.ID, u.GuildID, err)
		}
	}
	return nil
}

// AdjustTokens adds delta to a stored balance and returns the new balance.
// It is used for refunds owed to users who are not loaded in memory.
func (r *UserRepository) AdjustTokens(ctx context.Context, guildID, discordID string, delta int64) (int64, error) {
	query := `
		UPDATE users
		SET tokens = tokens + $3, updated_at = NOW()
		WHERE guild_id = $1 AND discord_id = $2
		RETURNING tokens
	`

	var tokens int64
	err := r.q.QueryRow(ctx, query, guildID, discordID, delta).Scan(&tokens)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("user %s in guild %s not found", discordID, guildID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to adjust tokens for user %s in guild %s: %w", discordID, guildID, err)
	}
	return tokens, nil
}

// GetAll returns every user record of a guild ordered by discord id
func (r *UserRepository) GetAll(ctx context.Context, guildID string) ([]*models.User, error) {
	query := `
		SELECT guild_id, discord_id, name, tokens, losses, created_at, updated_at
		FROM users
		WHERE guild_id = $1
		ORDER BY discord_id
	`

	rows, err := r.q.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get users for guild %s: %w", guildID, err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// Delete removes a user record
func (r *UserRepository) Delete(ctx context.Context, guildID, discordID string) error {
	result, err := r.q.Exec(ctx, `DELETE FROM users WHERE guild_id = $1 AND discord_id = $2`, guildID, discordID)
	if err != nil {
		return fmt.Errorf("failed to delete user %s in guild %s: %w", discordID, guildID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s in guild %s not found", discordID, guildID)
	}

	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		guildID, discordID, name string
		tokens                   int64
		losses                   int
		createdAt, updatedAt     time.Time
	)
	if err := row.Scan(&guildID, &discordID, &name, &tokens, &losses, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return models.RestoreUser(guildID, discordID, name, tokens, losses, createdAt, updatedAt), nil
}
