package domain

import "time"

// Credibility score bounds
const (
	CredibilityMin = 0
	CredibilityMax = 100

	// CredibilityStarting is the lazily-initialized score for users with no
	// record yet (full trust).
	CredibilityStarting = 100
)

// ClampCredibility clamps a score into the valid [0,100] range.
func ClampCredibility(score int) int {
	if score < CredibilityMin {
		return CredibilityMin
	}
	if score > CredibilityMax {
		return CredibilityMax
	}
	return score
}

// CredibilityRecord is the stored trust score for a user. Version guards
// optimistic writes the same way XPBalance.Version does.
type CredibilityRecord struct {
	UserID    string    `json:"user_id"`
	Score     int       `json:"score"`
	Version   int64     `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CredibilityTier is a named bucket derived from the score. Derived, never
// stored.
type CredibilityTier struct {
	Name                  string `json:"name"`
	MinScore              int    `json:"min_score"`
	EarningRatePercentage int    `json:"earning_rate_percentage"`
}
