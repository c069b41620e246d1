package domain

import "time"

// Ledger constants
const (
	// SoftCapThreshold is the balance above which further earnings are discounted
	SoftCapThreshold = 1000

	// SoftCapDivisor halves the portion of a credit earned above the threshold
	SoftCapDivisor = 2

	// MinimumTaskXP guarantees a visible reward for every completed task
	MinimumTaskXP = 1

	// MinutesPerXP is the fixed redemption ratio (1 XP = 1 minute)
	MinutesPerXP = 1
)

// TransactionSource identifies what produced a ledger entry
type TransactionSource string

const (
	SourceTaskCompletion   TransactionSource = "task_completion"
	SourceRedemption       TransactionSource = "redemption"
	SourceManualAdjustment TransactionSource = "manual_adjustment"
)

// XPTransaction is an immutable, append-only ledger entry. Once created it
// is never mutated or deleted; the balance is a fold over these records.
type XPTransaction struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Amount    int               `json:"amount"`
	Source    TransactionSource `json:"source"`
	TaskID    *string           `json:"task_id,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// XPBalance is the stored fold of a user's transactions. Version guards
// optimistic writes; a stale version on write means another writer won.
type XPBalance struct {
	UserID    string    `json:"user_id"`
	CurrentXP int       `json:"current_xp"`
	Version   int64     `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAtSoftCap reports whether further earnings are discounted.
func (b XPBalance) IsAtSoftCap() bool {
	return b.CurrentXP >= SoftCapThreshold
}

// SoftCapPercentage is how far the balance has progressed toward the cap,
// clamped to 100.
func (b XPBalance) SoftCapPercentage() int {
	pct := b.CurrentXP * 100 / SoftCapThreshold
	if pct > 100 {
		pct = 100
	}
	return pct
}

// DailyXPStats is a derived aggregate over the current calendar day.
// It is always computed live from the transaction list, never stored.
type DailyXPStats struct {
	UserID        string `json:"user_id"`
	EarnedToday   int    `json:"earned_today"`
	RedeemedToday int    `json:"redeemed_today"`
	NetToday      int    `json:"net_today"`
}

// RedeemResult is the success payload of a redemption.
type RedeemResult struct {
	RedeemedXP  int    `json:"redeemed_xp"`
	Minutes     int    `json:"minutes"`
	RemainingXP int    `json:"remaining_xp"`
	Message     string `json:"message"`
}
