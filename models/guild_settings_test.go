package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuildSettings_ResolveTier(t *testing.T) {
	t.Parallel()

	settings := NewGuildSettings("g1", "guild", 0)
	settings.TierRoles = map[string]BonusTier{
		"r1": TierOne,
		"r3": TierThree,
		"r2": TierTwoGifted,
	}

	tests := []struct {
		name     string
		roles    []string
		boosting bool
		want     BonusTier
	}{
		{name: "no roles", want: TierNone},
		{name: "booster only", boosting: true, want: TierBooster},
		{name: "single tier role", roles: []string{"r1"}, want: TierOne},
		{name: "best of several", roles: []string{"r1", "r3", "r2"}, want: TierThree},
		{name: "tier role beats boosting", roles: []string{"r2"}, boosting: true, want: TierTwoGifted},
		{name: "unknown role ignored", roles: []string{"x"}, want: TierNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, settings.ResolveTier(tt.roles, tt.boosting))
		})
	}
}

func TestGuildSettings_Defaults(t *testing.T) {
	t.Parallel()

	s := NewGuildSettings("g1", "guild", 0)
	assert.Equal(t, DefaultStartingBalance, s.StartingBalance)

	s = NewGuildSettings("g1", "guild", 250)
	assert.Equal(t, int64(250), s.StartingBalance)
}

func TestGuildSettings_AdminRoles(t *testing.T) {
	t.Parallel()

	s := NewGuildSettings("g1", "guild", 0)
	assert.True(t, s.AddAdminRole("mod"))
	assert.False(t, s.AddAdminRole("mod"))
	assert.True(t, s.HasAdminRole([]string{"x", "mod"}))

	clone := s.Clone()
	assert.True(t, clone.RemoveAdminRole("mod"))
	assert.False(t, clone.HasAdminRole([]string{"mod"}))
	assert.True(t, s.HasAdminRole([]string{"mod"}), "clone must not share the slice")
}
