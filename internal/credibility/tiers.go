package credibility

import (
	"github.com/tendhq/tend/internal/domain"
)

// tiers is ordered highest threshold first. Bands are fixed and monotonic:
// a higher score never maps to a lower tier or a lower earning rate.
var tiers = []domain.CredibilityTier{
	{Name: "Excellent", MinScore: 90, EarningRatePercentage: 100},
	{Name: "Good", MinScore: 75, EarningRatePercentage: 90},
	{Name: "Fair", MinScore: 50, EarningRatePercentage: 75},
	{Name: "Poor", MinScore: 25, EarningRatePercentage: 50},
	{Name: "Untrusted", MinScore: 0, EarningRatePercentage: 25},
}

// TierFor maps a score to its tier. Scores outside [0,100] are clamped first.
func TierFor(score int) domain.CredibilityTier {
	score = domain.ClampCredibility(score)
	for _, tier := range tiers {
		if score >= tier.MinScore {
			return tier
		}
	}
	return tiers[len(tiers)-1]
}

// TierName returns the display name for a score's tier.
func TierName(score int) string {
	return TierFor(score).Name
}

// EarningRatePercentage returns the tier's earning-rate percentage for a
// score. This is the display surface; the payout formula itself scales by
// the raw score (see ledger.NominalEarned).
func EarningRatePercentage(score int) int {
	return TierFor(score).EarningRatePercentage
}
