package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/tendhq/tend/internal/concurrency"
	"github.com/tendhq/tend/internal/credibility"
	"github.com/tendhq/tend/internal/domain"
	"github.com/tendhq/tend/internal/event"
	"github.com/tendhq/tend/internal/logger"
	"github.com/tendhq/tend/internal/repository"
)

// Service is the XP ledger engine. It exclusively owns balance mutation and
// transaction creation; nothing else writes to the ledger.
type Service interface {
	// CreditForTask converts an approved task into earned XP. score is the
	// caller-supplied credibility score (the orchestrator passes the
	// post-outcome value). Returns the realized credited amount after the
	// soft cap, which may be less than the nominal earning.
	// The ledger performs no task-level deduplication; invoking this at most
	// once per approved task is the orchestrator's responsibility.
	CreditForTask(ctx context.Context, userID string, level domain.TaskLevel, score int, taskID string) (int, error)

	// Redeem converts banked XP into screen-time minutes at 1:1.
	Redeem(ctx context.Context, userID string, amount int) (*domain.RedeemResult, error)

	// GetBalance returns the current balance, zero-valued for unseen users.
	GetBalance(ctx context.Context, userID string) (*domain.XPBalance, error)

	// GetRecentTransactions returns up to limit entries, most recent first.
	GetRecentTransactions(ctx context.Context, userID string, limit int) ([]domain.XPTransaction, error)

	// GetDailyStats computes today's earned/redeemed/net live from the
	// transaction list.
	GetDailyStats(ctx context.Context, userID string) (*domain.DailyXPStats, error)

	// Reconcile verifies the stored balance still equals the fold of the
	// transaction list.
	Reconcile(ctx context.Context, userID string) (bool, error)

	// TierName and EarningRatePercentage delegate to the credibility
	// package's pure functions, exposed here purely as a display
	// convenience so UI callers have a single surface.
	TierName(score int) string
	EarningRatePercentage(score int) int
}

type service struct {
	repo      repository.Ledger
	locks     *concurrency.LockManager
	publisher event.Bus
	cache     *balanceCache
	loc       *time.Location
	now       func() time.Time
}

// NewService creates a new ledger service. loc bounds the calendar day used
// by daily stats; nil means the process-local zone. publisher may be nil.
func NewService(repo repository.Ledger, locks *concurrency.LockManager, publisher event.Bus, loc *time.Location) Service {
	if loc == nil {
		loc = time.Local
	}
	return &service{
		repo:      repo,
		locks:     locks,
		publisher: publisher,
		cache:     newBalanceCache(BalanceCacheSize, BalanceCacheTTL),
		loc:       loc,
		now:       time.Now,
	}
}

func (s *service) GetBalance(ctx context.Context, userID string) (*domain.XPBalance, error) {
	if cached, ok := s.cache.Get(userID); ok {
		return cached, nil
	}

	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	if balance == nil {
		balance = &domain.XPBalance{UserID: userID}
	}

	s.cache.Set(userID, balance)
	return balance, nil
}

func (s *service) GetRecentTransactions(ctx context.Context, userID string, limit int) ([]domain.XPTransaction, error) {
	if limit <= 0 {
		limit = DefaultTransactionLimit
	}
	if limit > MaxTransactionLimit {
		limit = MaxTransactionLimit
	}

	txns, err := s.repo.GetRecentTransactions(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	return txns, nil
}

func (s *service) TierName(score int) string {
	return credibility.TierName(score)
}

func (s *service) EarningRatePercentage(score int) int {
	return credibility.EarningRatePercentage(score)
}

// publishBalanceEvents emits the post-mutation notifications the UI and
// badge layers subscribe to. Failures are the publisher's problem; the
// ledger mutation has already committed.
func (s *service) publishBalanceEvents(ctx context.Context, balance *domain.XPBalance, extra event.Event) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(ctx, extra)
	_ = s.publisher.Publish(ctx, event.NewBalanceChangedEvent(balance.UserID, balance.CurrentXP, balance.IsAtSoftCap()))
}

func (s *service) logConflictRetry(ctx context.Context, op, userID string, attempt int) {
	logger.FromContext(ctx).Warn("Ledger write conflict, retrying with fresh read",
		"operation", op, "user_id", userID, "attempt", attempt)
}
