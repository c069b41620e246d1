package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendhq/tend/internal/domain"
)

func TestGetBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("unseen user starts from zero", func(t *testing.T) {
		svc := newTestService(NewFakeRepository(), nil)

		balance, err := svc.GetBalance(ctx, "new-user")

		require.NoError(t, err)
		assert.Equal(t, "new-user", balance.UserID)
		assert.Equal(t, 0, balance.CurrentXP)
		assert.False(t, balance.IsAtSoftCap())
	})

	t.Run("serves cached balance without hitting the store", func(t *testing.T) {
		repo := NewFakeRepository()
		svc := newTestService(repo, nil)
		seedBalance(t, repo, "user-1", 75)

		first, err := svc.GetBalance(ctx, "user-1")
		require.NoError(t, err)
		require.Equal(t, 75, first.CurrentXP)

		// Mutating the returned copy must not poison the cache.
		first.CurrentXP = 9999

		second, err := svc.GetBalance(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 75, second.CurrentXP)
	})

	t.Run("mutations refresh the cache", func(t *testing.T) {
		repo := NewFakeRepository()
		svc := newTestService(repo, nil)
		seedBalance(t, repo, "user-1", 50)

		// Warm the cache, then mutate through the service.
		_, err := svc.GetBalance(ctx, "user-1")
		require.NoError(t, err)

		_, err = svc.Redeem(ctx, "user-1", 20)
		require.NoError(t, err)

		balance, err := svc.GetBalance(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 30, balance.CurrentXP)
	})
}

func TestGetRecentTransactions(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeRepository()
	svc := newTestService(repo, nil)

	for i := 0; i < 5; i++ {
		_, err := svc.CreditForTask(ctx, "user-1", 1, 100, "task")
		require.NoError(t, err)
	}

	t.Run("caps at requested limit", func(t *testing.T) {
		txns, err := svc.GetRecentTransactions(ctx, "user-1", 3)
		require.NoError(t, err)
		assert.Len(t, txns, 3)
	})

	t.Run("non-positive limit falls back to default", func(t *testing.T) {
		txns, err := svc.GetRecentTransactions(ctx, "user-1", 0)
		require.NoError(t, err)
		assert.Len(t, txns, 5)
	})

	t.Run("empty history returns empty list", func(t *testing.T) {
		txns, err := svc.GetRecentTransactions(ctx, "nobody", 10)
		require.NoError(t, err)
		assert.Empty(t, txns)
	})
}

func TestSoftCapDerivedFields(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeRepository()
	svc := newTestService(repo, nil)
	seedBalance(t, repo, "user-1", domain.SoftCapThreshold)

	balance, err := svc.GetBalance(ctx, "user-1")

	require.NoError(t, err)
	assert.True(t, balance.IsAtSoftCap())
	assert.Equal(t, 100, balance.SoftCapPercentage())
}

func TestTierDisplayDelegation(t *testing.T) {
	svc := newTestService(NewFakeRepository(), nil)

	assert.Equal(t, "Excellent", svc.TierName(95))
	assert.Equal(t, 100, svc.EarningRatePercentage(95))
	assert.Equal(t, "Untrusted", svc.TierName(10))
}
