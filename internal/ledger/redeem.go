package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tendhq/tend/internal/domain"
	"github.com/tendhq/tend/internal/event"
	"github.com/tendhq/tend/internal/logger"
	"github.com/tendhq/tend/internal/metrics"
)

var confirmPrinter = message.NewPrinter(language.English)

func (s *service) Redeem(ctx context.Context, userID string, amount int) (*domain.RedeemResult, error) {
	log := logger.FromContext(ctx)

	if amount <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidAmount, amount)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	lock := s.locks.GetLock(userID)
	lock.Lock()
	defer lock.Unlock()

	var lastErr error
	for attempt := 1; attempt <= MaxWriteAttempts; attempt++ {
		// Re-read the balance immediately before decrementing: concurrent
		// redemptions must not both succeed against a balance that only
		// covers one of them.
		balance, err := s.repo.GetBalance(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get balance: %w", err)
		}
		var current int
		var expectedVersion int64
		if balance != nil {
			current = balance.CurrentXP
			expectedVersion = balance.Version
		}

		if amount > current {
			return nil, &domain.InsufficientBalanceError{Requested: amount, Balance: current}
		}

		txn := domain.XPTransaction{
			ID:        uuid.NewString(),
			UserID:    userID,
			Amount:    -amount,
			Source:    domain.SourceRedemption,
			CreatedAt: s.now(),
		}

		newBalance, _, err := s.repo.ApplyTransaction(ctx, txn, current-amount, expectedVersion)
		if err != nil {
			if errors.Is(err, domain.ErrStoreConflict) {
				lastErr = err
				metrics.StoreConflictRetries.WithLabelValues(metrics.OpRedeem).Inc()
				s.logConflictRetry(ctx, "redeem", userID, attempt)
				continue
			}
			return nil, fmt.Errorf("failed to apply redemption: %w", err)
		}

		s.cache.Set(userID, newBalance)
		minutes := amount * domain.MinutesPerXP
		metrics.XPRedeemed.Add(float64(amount))
		metrics.MinutesGranted.Add(float64(minutes))

		log.Info("Redeemed XP",
			"user_id", userID,
			"amount", amount,
			"minutes", minutes,
			"new_balance", newBalance.CurrentXP)

		s.publishBalanceEvents(ctx, newBalance, event.NewXPRedeemedEvent(userID, amount, minutes, newBalance.CurrentXP))

		return &domain.RedeemResult{
			RedeemedXP:  amount,
			Minutes:     minutes,
			RemainingXP: newBalance.CurrentXP,
			Message: confirmPrinter.Sprintf("Redeemed %d XP for %d minutes of screen time. %d XP remaining.",
				amount, minutes, newBalance.CurrentXP),
		}, nil
	}

	return nil, fmt.Errorf("redeem for user %s exhausted %d attempts: %w", userID, MaxWriteAttempts, lastErr)
}
