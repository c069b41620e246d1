package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendhq/tend/internal/concurrency"
	"github.com/tendhq/tend/internal/domain"
	"github.com/tendhq/tend/internal/event"
)

func newTestService(repo *FakeRepository, bus event.Bus) *service {
	return &service{
		repo:      repo,
		locks:     concurrency.NewLockManager(),
		publisher: bus,
		cache:     newBalanceCache(BalanceCacheSize, BalanceCacheTTL),
		loc:       time.UTC,
		now:       time.Now,
	}
}

// seedBalance pushes the user's balance to target through a manual
// adjustment, keeping the transaction fold consistent with the balance.
func seedBalance(t *testing.T, repo *FakeRepository, userID string, target int) {
	t.Helper()

	txn := domain.XPTransaction{
		ID:        "seed-" + userID,
		UserID:    userID,
		Amount:    target,
		Source:    domain.SourceManualAdjustment,
		CreatedAt: time.Now(),
	}
	_, _, err := repo.ApplyTransaction(context.Background(), txn, target, 0)
	require.NoError(t, err)
}

func TestNominalEarned(t *testing.T) {
	tests := []struct {
		name  string
		level domain.TaskLevel
		score int
		want  int
	}{
		{"full credibility level 3", 3, 100, 30},
		{"score 80 level 3", 3, 80, 24},
		{"truncates fractional xp", 2, 75, 11}, // 15 * 0.75 = 11.25
		{"floor of one at zero score", 4, 0, 1},
		{"floor of one when product rounds to zero", 1, 10, 1}, // 5 * 0.10 = 0.5
		{"out of range score clamps high", 3, 150, 30},
		{"out of range score clamps low", 3, -20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NominalEarned(tt.level, tt.score))
		})
	}
}

func TestNominalEarned_MonotonicInScore(t *testing.T) {
	for level := domain.TaskLevel(1); level <= 5; level++ {
		prev := 0
		for score := 0; score <= 100; score++ {
			earned := NominalEarned(level, score)
			require.GreaterOrEqual(t, earned, prev,
				"payout regressed at level %d score %d", level, score)
			prev = earned
		}
	}
}

func TestApplySoftCap(t *testing.T) {
	tests := []struct {
		name       string
		preBalance int
		earned     int
		want       int
	}{
		{"well below threshold", 100, 30, 30},
		{"exactly fills headroom", 970, 30, 30},
		{"straddles threshold", 990, 24, 17}, // 10 full + 14/2
		{"at threshold", 1000, 30, 15},
		{"above threshold", 1200, 30, 15},
		{"odd remainder floors", 1000, 5, 2},
		{"single xp above threshold keeps minimum reward", 1000, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplySoftCap(tt.preBalance, tt.earned))
		})
	}
}

func TestCreditForTask(t *testing.T) {
	ctx := context.Background()

	t.Run("credits credibility-adjusted xp", func(t *testing.T) {
		repo := NewFakeRepository()
		svc := newTestService(repo, nil)
		seedBalance(t, repo, "user-1", 950)

		credited, err := svc.CreditForTask(ctx, "user-1", 3, 80, "task-1")

		require.NoError(t, err)
		assert.Equal(t, 24, credited)

		balance, err := svc.GetBalance(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 974, balance.CurrentXP)
	})

	t.Run("soft cap halves xp earned past the threshold", func(t *testing.T) {
		repo := NewFakeRepository()
		svc := newTestService(repo, nil)
		seedBalance(t, repo, "user-1", 990)

		credited, err := svc.CreditForTask(ctx, "user-1", 3, 80, "task-1")

		require.NoError(t, err)
		assert.Equal(t, 17, credited)

		balance, err := svc.GetBalance(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 1007, balance.CurrentXP)
		assert.True(t, balance.IsAtSoftCap())
	})

	t.Run("minimum reward survives the cap at low trust", func(t *testing.T) {
		repo := NewFakeRepository()
		svc := newTestService(repo, nil)
		seedBalance(t, repo, "user-1", 1200)

		// Level 1 at score 10 nominally earns 1; halving must not zero it.
		credited, err := svc.CreditForTask(ctx, "user-1", 1, 10, "task-1")

		require.NoError(t, err)
		assert.Equal(t, 1, credited)

		balance, err := svc.GetBalance(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 1201, balance.CurrentXP)
	})

	t.Run("records transaction with task reference", func(t *testing.T) {
		repo := NewFakeRepository()
		svc := newTestService(repo, nil)

		_, err := svc.CreditForTask(ctx, "user-1", 2, 100, "task-7")
		require.NoError(t, err)

		txns, err := svc.GetRecentTransactions(ctx, "user-1", 10)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, 15, txns[0].Amount)
		assert.Equal(t, domain.SourceTaskCompletion, txns[0].Source)
		require.NotNil(t, txns[0].TaskID)
		assert.Equal(t, "task-7", *txns[0].TaskID)
	})

	t.Run("rejects invalid task level", func(t *testing.T) {
		repo := NewFakeRepository()
		svc := newTestService(repo, nil)

		_, err := svc.CreditForTask(ctx, "user-1", 6, 100, "task-1")

		assert.ErrorIs(t, err, domain.ErrInvalidTaskLevel)
		assert.Equal(t, 0, repo.TransactionCount("user-1"))
	})

	t.Run("rejects missing ids", func(t *testing.T) {
		repo := NewFakeRepository()
		svc := newTestService(repo, nil)

		_, err := svc.CreditForTask(ctx, "", 3, 100, "task-1")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = svc.CreditForTask(ctx, "user-1", 3, 100, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("retries on store conflict with fresh read", func(t *testing.T) {
		repo := NewFakeRepository()
		svc := newTestService(repo, nil)
		repo.FailAppliesWithConflict = 2

		credited, err := svc.CreditForTask(ctx, "user-1", 1, 100, "task-1")

		require.NoError(t, err)
		assert.Equal(t, 5, credited)
		assert.Equal(t, 1, repo.TransactionCount("user-1"))
	})

	t.Run("gives up after exhausting retries", func(t *testing.T) {
		repo := NewFakeRepository()
		svc := newTestService(repo, nil)
		repo.FailAppliesWithConflict = MaxWriteAttempts

		_, err := svc.CreditForTask(ctx, "user-1", 1, 100, "task-1")

		assert.ErrorIs(t, err, domain.ErrStoreConflict)
		assert.Equal(t, 0, repo.TransactionCount("user-1"))
	})

	t.Run("publishes credited and balance-changed events", func(t *testing.T) {
		repo := NewFakeRepository()
		bus := event.NewMemoryBus()
		svc := newTestService(repo, bus)
		seedBalance(t, repo, "user-1", 100)

		var credited event.XPCreditedPayloadV1
		bus.Subscribe(event.TypeXPCredited, func(_ context.Context, e event.Event) error {
			var err error
			credited, err = event.DecodePayload[event.XPCreditedPayloadV1](e.Payload)
			return err
		})
		balanceChanges := 0
		bus.Subscribe(event.TypeBalanceChanged, func(_ context.Context, e event.Event) error {
			balanceChanges++
			return nil
		})

		_, err := svc.CreditForTask(ctx, "user-1", 3, 100, "task-1")

		require.NoError(t, err)
		assert.Equal(t, "user-1", credited.UserID)
		assert.Equal(t, "task-1", credited.TaskID)
		assert.Equal(t, 30, credited.Amount)
		assert.Equal(t, 130, credited.NewBalance)
		assert.Equal(t, 2, credited.TransactionCount)
		assert.Equal(t, 1, balanceChanges)
	})
}
