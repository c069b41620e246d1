package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/tendhq/tend/internal/domain"
)

// dayBounds returns the [start, end) window of the calendar day containing
// now in the service's configured location.
func (s *service) dayBounds(now time.Time) (time.Time, time.Time) {
	local := now.In(s.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	return start, start.AddDate(0, 0, 1)
}

func (s *service) GetDailyStats(ctx context.Context, userID string) (*domain.DailyXPStats, error) {
	from, to := s.dayBounds(s.now())

	txns, err := s.repo.GetTransactionsBetween(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily transactions: %w", err)
	}

	stats := &domain.DailyXPStats{UserID: userID}
	for _, txn := range txns {
		if txn.Amount >= 0 {
			stats.EarnedToday += txn.Amount
		} else {
			stats.RedeemedToday += -txn.Amount
		}
		stats.NetToday += txn.Amount
	}

	return stats, nil
}

// Reconcile recomputes the balance from the full transaction list and
// compares it to the stored fold, bypassing the read cache. A mismatch
// means the store was written outside the ledger's write path.
func (s *service) Reconcile(ctx context.Context, userID string) (bool, error) {
	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get balance: %w", err)
	}
	var current int
	if balance != nil {
		current = balance.CurrentXP
	}

	sum, err := s.repo.SumTransactions(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return current == sum, nil
}
