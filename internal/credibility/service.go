package credibility

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tendhq/tend/internal/concurrency"
	"github.com/tendhq/tend/internal/domain"
	"github.com/tendhq/tend/internal/event"
	"github.com/tendhq/tend/internal/logger"
	"github.com/tendhq/tend/internal/metrics"
	"github.com/tendhq/tend/internal/repository"
)

// Service owns the credibility score for each user. Scores are mutated only
// here, in response to task outcomes; the UI never sets them directly.
type Service interface {
	// CurrentScore returns the stored score, defaulting to full trust when
	// the user has no record yet. Never fails on missing prior state.
	CurrentScore(ctx context.Context, userID string) (int, error)

	// RecordOutcome applies the outcome's delta to the stored score, clamps
	// to [0,100], and persists. Safe to call repeatedly for the same task;
	// exactly-once invocation per approval is the orchestrator's job.
	RecordOutcome(ctx context.Context, userID string, outcome domain.TaskOutcome) (int, error)

	// TierName and EarningRatePercentage are pure, deterministic lookups.
	TierName(score int) string
	EarningRatePercentage(score int) int
}

type service struct {
	repo      repository.Credibility
	locks     *concurrency.LockManager
	publisher event.Bus
	now       func() time.Time
}

// NewService creates a new credibility service. publisher may be nil in
// contexts that do not care about score-change notifications.
func NewService(repo repository.Credibility, locks *concurrency.LockManager, publisher event.Bus) Service {
	return &service{
		repo:      repo,
		locks:     locks,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *service) CurrentScore(ctx context.Context, userID string) (int, error) {
	record, err := s.repo.GetScore(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get credibility score: %w", err)
	}
	if record == nil {
		return domain.CredibilityStarting, nil
	}
	return record.Score, nil
}

func (s *service) RecordOutcome(ctx context.Context, userID string, outcome domain.TaskOutcome) (int, error) {
	log := logger.FromContext(ctx)

	lock := s.locks.GetLock("credibility:" + userID)
	lock.Lock()
	defer lock.Unlock()

	var lastErr error
	for attempt := 0; attempt < MaxWriteAttempts; attempt++ {
		record, err := s.repo.GetScore(ctx, userID)
		if err != nil {
			return 0, fmt.Errorf("failed to get credibility score: %w", err)
		}

		var oldScore int
		var expectedVersion int64
		if record == nil {
			// Lazy initialization: absent users start at full trust.
			oldScore = domain.CredibilityStarting
			expectedVersion = 0
		} else {
			oldScore = record.Score
			expectedVersion = record.Version
		}

		newScore := Apply(oldScore, outcome)

		saved, err := s.repo.SaveScore(ctx, domain.CredibilityRecord{
			UserID:    userID,
			Score:     newScore,
			UpdatedAt: s.now(),
		}, expectedVersion)
		if err != nil {
			if errors.Is(err, domain.ErrStoreConflict) {
				lastErr = err
				metrics.StoreConflictRetries.WithLabelValues(metrics.OpOutcome).Inc()
				log.Warn("Credibility write conflict, retrying with fresh read", "user_id", userID, "attempt", attempt+1)
				continue
			}
			return 0, fmt.Errorf("failed to save credibility score: %w", err)
		}

		log.Info("Recorded task outcome", "user_id", userID, "outcome", outcome, "old_score", oldScore, "new_score", saved.Score)

		if s.publisher != nil && saved.Score != oldScore {
			_ = s.publisher.Publish(ctx, event.NewCredibilityChangedEvent(userID, outcome, oldScore, saved.Score))
		}

		return saved.Score, nil
	}

	return 0, fmt.Errorf("record outcome for user %s exhausted %d attempts: %w", userID, MaxWriteAttempts, lastErr)
}

func (s *service) TierName(score int) string {
	return TierName(score)
}

func (s *service) EarningRatePercentage(score int) int {
	return EarningRatePercentage(score)
}
