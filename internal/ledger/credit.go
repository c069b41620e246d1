package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tendhq/tend/internal/domain"
	"github.com/tendhq/tend/internal/event"
	"github.com/tendhq/tend/internal/logger"
	"github.com/tendhq/tend/internal/metrics"
)

// NominalEarned computes the credibility-adjusted earning before the soft
// cap: max(1, floor(baseXP * score/100)). Truncation is deliberate (never
// overpay); the floor of 1 keeps a completed task visibly rewarded even at
// minimal trust.
func NominalEarned(level domain.TaskLevel, score int) int {
	score = domain.ClampCredibility(score)
	earned := level.BaseXP() * score / 100
	if earned < domain.MinimumTaskXP {
		earned = domain.MinimumTaskXP
	}
	return earned
}

// ApplySoftCap discounts the portion of a credit earned above the threshold
// by 50%. The test is against the pre-transaction balance so a single large
// credit cannot retroactively uncap itself: full rate applies to the
// headroom below the threshold, half rate (floored) to the remainder. The
// minimum-reward floor of 1 survives the cap: halving never silences a
// completed task entirely.
func ApplySoftCap(preBalance, earned int) int {
	headroom := domain.SoftCapThreshold - preBalance
	if headroom >= earned {
		return earned
	}
	if headroom < 0 {
		headroom = 0
	}
	capped := headroom + (earned-headroom)/domain.SoftCapDivisor
	if capped < domain.MinimumTaskXP {
		capped = domain.MinimumTaskXP
	}
	return capped
}

func (s *service) CreditForTask(ctx context.Context, userID string, level domain.TaskLevel, score int, taskID string) (int, error) {
	log := logger.FromContext(ctx)

	if !level.Valid() {
		return 0, fmt.Errorf("%w: %d", domain.ErrInvalidTaskLevel, level)
	}
	if userID == "" || taskID == "" {
		return 0, fmt.Errorf("%w: user id and task id are required", domain.ErrInvalidInput)
	}

	lock := s.locks.GetLock(userID)
	lock.Lock()
	defer lock.Unlock()

	var lastErr error
	for attempt := 1; attempt <= MaxWriteAttempts; attempt++ {
		// Fresh read each attempt: the soft-cap test must see the balance
		// immediately before this transaction applies.
		balance, err := s.repo.GetBalance(ctx, userID)
		if err != nil {
			return 0, fmt.Errorf("failed to get balance: %w", err)
		}
		var preBalance int
		var expectedVersion int64
		if balance != nil {
			preBalance = balance.CurrentXP
			expectedVersion = balance.Version
		}

		nominal := NominalEarned(level, score)
		credited := ApplySoftCap(preBalance, nominal)

		tid := taskID
		txn := domain.XPTransaction{
			ID:        uuid.NewString(),
			UserID:    userID,
			Amount:    credited,
			Source:    domain.SourceTaskCompletion,
			TaskID:    &tid,
			CreatedAt: s.now(),
		}

		newBalance, txnCount, err := s.repo.ApplyTransaction(ctx, txn, preBalance+credited, expectedVersion)
		if err != nil {
			if errors.Is(err, domain.ErrStoreConflict) {
				lastErr = err
				metrics.StoreConflictRetries.WithLabelValues(metrics.OpCredit).Inc()
				s.logConflictRetry(ctx, "credit", userID, attempt)
				continue
			}
			return 0, fmt.Errorf("failed to apply credit: %w", err)
		}

		s.cache.Set(userID, newBalance)
		metrics.XPCredited.Add(float64(credited))

		log.Info("Credited XP for task",
			"user_id", userID,
			"task_id", taskID,
			"level", int(level),
			"score", score,
			"nominal", nominal,
			"credited", credited,
			"new_balance", newBalance.CurrentXP,
			"at_soft_cap", newBalance.IsAtSoftCap())

		s.publishBalanceEvents(ctx, newBalance, event.NewXPCreditedEvent(userID, taskID, credited, newBalance.CurrentXP, txnCount))

		return credited, nil
	}

	return 0, fmt.Errorf("credit for task %s exhausted %d attempts: %w", taskID, MaxWriteAttempts, lastErr)
}
