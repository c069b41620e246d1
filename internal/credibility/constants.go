package credibility

// Score deltas per task outcome. Asymmetric so trust is slow to earn and
// fast to lose.
const (
	DeltaOnTime   = 2
	DeltaLate     = -5
	DeltaRejected = -10
)

// MaxWriteAttempts bounds the optimistic-retry loop on store conflicts.
const MaxWriteAttempts = 3
