package ledger

import "time"

// MaxWriteAttempts bounds the optimistic-retry loop on store conflicts.
const MaxWriteAttempts = 3

// DefaultTransactionLimit caps GetRecentTransactions when the caller asks
// for a non-positive count.
const DefaultTransactionLimit = 20

// MaxTransactionLimit is the hard ceiling on a single transaction page.
const MaxTransactionLimit = 200

// Balance cache sizing. The cache only serves reads; every mutation
// replaces the entry with the freshly-written balance.
const (
	BalanceCacheSize = 512
	BalanceCacheTTL  = 30 * time.Second
)
