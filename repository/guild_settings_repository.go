package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"curator/database"
	"curator/models"

	"github.com/jackc/pgx/v5"
)

// GuildSettingsRepository implements the GuildSettingsRepository interface
type GuildSettingsRepository struct {
	q Queryable
}

// NewGuildSettingsRepository creates a new guild settings repository
func NewGuildSettingsRepository(db *database.DB) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: db.Pool}
}

// newGuildSettingsRepositoryWithTx creates a new guild settings repository with a transaction
func newGuildSettingsRepositoryWithTx(tx Queryable) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: tx}
}

const guildSettingsColumns = `guild_id, guild_name, starting_balance, admin_role_ids, activity_channel_id, tier_roles, created_at, updated_at`

// GetOrCreateGuildSettings retrieves guild settings or creates default ones if not found
func (r *GuildSettingsRepository) GetOrCreateGuildSettings(ctx context.Context, guildID, guildName string, startingBalance int64) (*models.GuildSettings, error) {
	query := `SELECT ` + guildSettingsColumns + ` FROM guild_settings WHERE guild_id = $1`

	settings, err := scanGuildSettings(r.q.QueryRow(ctx, query, guildID))
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get guild settings for guild %s: %w", guildID, err)
	}

	defaults := models.NewGuildSettings(guildID, guildName, startingBalance)

	// DO UPDATE with a no-op assignment so RETURNING also yields the row
	// another instance may have inserted first
	insertQuery := `
		INSERT INTO guild_settings (guild_id, guild_name, starting_balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id) DO UPDATE SET guild_id = EXCLUDED.guild_id
		RETURNING ` + guildSettingsColumns

	settings, err = scanGuildSettings(r.q.QueryRow(ctx, insertQuery, defaults.GuildID, defaults.GuildName, defaults.StartingBalance))
	if err != nil {
		return nil, fmt.Errorf("failed to create guild settings for guild %s: %w", guildID, err)
	}

	return settings, nil
}

// UpdateGuildSettings writes every mutable settings field
func (r *GuildSettingsRepository) UpdateGuildSettings(ctx context.Context, settings *models.GuildSettings) error {
	tierRoles, err := json.Marshal(settings.TierRoles)
	if err != nil {
		return fmt.Errorf("failed to marshal tier roles: %w", err)
	}

	adminRoles := settings.AdminRoleIDs
	if adminRoles == nil {
		adminRoles = []string{}
	}

	query := `
		UPDATE guild_settings
		SET guild_name = $2,
		    starting_balance = $3,
		    admin_role_ids = $4,
		    activity_channel_id = $5,
		    tier_roles = $6,
		    updated_at = NOW()
		WHERE guild_id = $1
	`

	result, err := r.q.Exec(ctx, query,
		settings.GuildID,
		settings.GuildName,
		settings.StartingBalance,
		adminRoles,
		settings.ActivityChannelID,
		tierRoles,
	)
	if err != nil {
		return fmt.Errorf("failed to update guild settings for guild %s: %w", settings.GuildID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("guild settings for guild %s not found", settings.GuildID)
	}

	return nil
}

func scanGuildSettings(row pgx.Row) (*models.GuildSettings, error) {
	var settings models.GuildSettings
	var tierRoles []byte
	err := row.Scan(
		&settings.GuildID,
		&settings.GuildName,
		&settings.StartingBalance,
		&settings.AdminRoleIDs,
		&settings.ActivityChannelID,
		&tierRoles,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	settings.TierRoles = map[string]models.BonusTier{}
	if len(tierRoles) > 0 {
		if err := json.Unmarshal(tierRoles, &settings.TierRoles); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tier roles: %w", err)
		}
	}
	if settings.AdminRoleIDs == nil {
		settings.AdminRoleIDs = []string{}
	}
	return &settings, nil
}
