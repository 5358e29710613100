package models

// BonusTier is the membership status that earns extra raffle tickets.
type BonusTier string

const (
	TierNone        BonusTier = "none"
	TierBooster     BonusTier = "booster"
	TierOne         BonusTier = "tier1"
	TierOneGifted   BonusTier = "tier1_gifted"
	TierTwo         BonusTier = "tier2"
	TierTwoGifted   BonusTier = "tier2_gifted"
	TierThree       BonusTier = "tier3"
	TierThreeGifted BonusTier = "tier3_gifted"
)

// AllBonusTiers lists every tier in ascending order of bonus.
var AllBonusTiers = []BonusTier{
	TierNone,
	TierBooster,
	TierOne,
	TierOneGifted,
	TierTwo,
	TierTwoGifted,
	TierThree,
	TierThreeGifted,
}

// ParseBonusTier converts a stored or user-supplied value into a tier.
func ParseBonusTier(s string) (BonusTier, bool) {
	for _, t := range AllBonusTiers {
		if string(t) == s {
			return t, true
		}
	}
	return TierNone, false
}

// rank orders tiers so that the best of several roles can be chosen.
func (t BonusTier) rank() int {
	for i, candidate := range AllBonusTiers {
		if candidate == t {
			return i
		}
	}
	return 0
}

// Better reports whether t earns more than other.
func (t BonusTier) Better(other BonusTier) bool {
	return t.rank() > other.rank()
}
