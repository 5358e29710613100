package models

import (
	"slices"
	"time"
)

// DefaultStartingBalance seeds new user records when a guild has no override.
const DefaultStartingBalance int64 = 100

// GuildSettings represents per-guild configuration settings
type GuildSettings struct {
	GuildID           string               `db:"guild_id"`
	GuildName         string               `db:"guild_name"`
	StartingBalance   int64                `db:"starting_balance"`
	AdminRoleIDs      []string             `db:"admin_role_ids"`
	ActivityChannelID *string              `db:"activity_channel_id"` // Nullable - channel activities are posted to
	TierRoles         map[string]BonusTier `db:"tier_roles"`          // role ID -> bonus tier
	CreatedAt         time.Time            `db:"created_at"`
	UpdatedAt         time.Time            `db:"updated_at"`
}

// NewGuildSettings returns defaults for a guild seen for the first time.
func NewGuildSettings(guildID, guildName string, startingBalance int64) *GuildSettings {
	if startingBalance <= 0 {
		startingBalance = DefaultStartingBalance
	}
	return &GuildSettings{
		GuildID:         guildID,
		GuildName:       guildName,
		StartingBalance: startingBalance,
		AdminRoleIDs:    []string{},
		TierRoles:       map[string]BonusTier{},
	}
}

// Clone returns a deep copy so callers can edit without racing readers.
func (s *GuildSettings) Clone() *GuildSettings {
	if s == nil {
		return nil
	}
	c := *s
	c.AdminRoleIDs = slices.Clone(s.AdminRoleIDs)
	c.TierRoles = make(map[string]BonusTier, len(s.TierRoles))
	for k, v := range s.TierRoles {
		c.TierRoles[k] = v
	}
	if s.ActivityChannelID != nil {
		ch := *s.ActivityChannelID
		c.ActivityChannelID = &ch
	}
	return &c
}

// HasAdminRole reports whether any of roleIDs is configured as an admin role.
func (s *GuildSettings) HasAdminRole(roleIDs []string) bool {
	for _, id := range roleIDs {
		if slices.Contains(s.AdminRoleIDs, id) {
			return true
		}
	}
	return false
}

// AddAdminRole registers roleID as an admin role. Returns false if already present.
func (s *GuildSettings) AddAdminRole(roleID string) bool {
	if slices.Contains(s.AdminRoleIDs, roleID) {
		return false
	}
	s.AdminRoleIDs = append(s.AdminRoleIDs, roleID)
	return true
}

// RemoveAdminRole unregisters roleID. Returns false if it was not present.
func (s *GuildSettings) RemoveAdminRole(roleID string) bool {
	i := slices.Index(s.AdminRoleIDs, roleID)
	if i < 0 {
		return false
	}
	s.AdminRoleIDs = slices.Delete(s.AdminRoleIDs, i, i+1)
	return true
}

// ResolveTier picks the best bonus tier granted by roleIDs. Members without a
// configured tier role fall back to booster status when boosting.
func (s *GuildSettings) ResolveTier(roleIDs []string, boosting bool) BonusTier {
	best := TierNone
	for _, id := range roleIDs {
		if tier, ok := s.TierRoles[id]; ok && tier.Better(best) {
			best = tier
		}
	}
	if best == TierNone && boosting {
		return TierBooster
	}
	return best
}
