package repository

import (
	"context"
	"time"

	"github.com/tendhq/tend/internal/domain"
)

// Ledger defines the persistence contract for XP balances and transactions.
// Balance, transaction list, and score for a given user form one consistency
// unit; ApplyTransaction writes the transaction and the balance atomically so
// the stored fold can never diverge from the audit trail.
type Ledger interface {
	// GetBalance returns the stored balance, or nil when the user has no
	// ledger record yet.
	GetBalance(ctx context.Context, userID string) (*domain.XPBalance, error)

	// ApplyTransaction appends txn and sets the balance to newBalance in a
	// single atomic write, returning the written balance and the user's
	// post-append transaction count. expectedVersion is the version of the
	// balance the caller read (0 when no record existed); a mismatch returns
	// domain.ErrStoreConflict and writes nothing.
	ApplyTransaction(ctx context.Context, txn domain.XPTransaction, newBalance int, expectedVersion int64) (*domain.XPBalance, int, error)

	// GetRecentTransactions returns up to limit transactions, most recent first.
	GetRecentTransactions(ctx context.Context, userID string, limit int) ([]domain.XPTransaction, error)

	// GetTransactionsBetween returns transactions with from <= CreatedAt < to,
	// most recent first.
	GetTransactionsBetween(ctx context.Context, userID string, from, to time.Time) ([]domain.XPTransaction, error)

	// SumTransactions folds all transaction amounts for the user. Used to
	// reconcile the stored balance against the audit trail.
	SumTransactions(ctx context.Context, userID string) (int, error)
}
