package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tendhq/tend/internal/domain"
	"github.com/tendhq/tend/internal/repository"
)

// FakeRepository is an in-memory repository.Ledger for tests and local runs.
// It enforces the same atomic apply-transaction and optimistic-version
// semantics as the postgres implementation.
type FakeRepository struct {
	mu       sync.Mutex
	balances map[string]domain.XPBalance
	txns     map[string][]domain.XPTransaction

	// FailAppliesWithConflict makes the next n ApplyTransaction calls fail
	// with domain.ErrStoreConflict, for retry-path tests.
	FailAppliesWithConflict int
}

// NewFakeRepository creates an empty in-memory ledger store.
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{
		balances: make(map[string]domain.XPBalance),
		txns:     make(map[string][]domain.XPTransaction),
	}
}

var _ repository.Ledger = (*FakeRepository)(nil)

func (f *FakeRepository) GetBalance(ctx context.Context, userID string) (*domain.XPBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	balance, ok := f.balances[userID]
	if !ok {
		return nil, nil
	}
	return &balance, nil
}

func (f *FakeRepository) ApplyTransaction(ctx context.Context, txn domain.XPTransaction, newBalance int, expectedVersion int64) (*domain.XPBalance, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailAppliesWithConflict > 0 {
		f.FailAppliesWithConflict--
		return nil, 0, domain.ErrStoreConflict
	}

	existing, ok := f.balances[txn.UserID]
	var currentVersion int64
	if ok {
		currentVersion = existing.Version
	}
	if currentVersion != expectedVersion {
		return nil, 0, domain.ErrStoreConflict
	}

	updated := domain.XPBalance{
		UserID:    txn.UserID,
		CurrentXP: newBalance,
		Version:   currentVersion + 1,
		UpdatedAt: txn.CreatedAt,
	}
	f.balances[txn.UserID] = updated
	f.txns[txn.UserID] = append(f.txns[txn.UserID], txn)

	return &updated, len(f.txns[txn.UserID]), nil
}

func (f *FakeRepository) GetRecentTransactions(ctx context.Context, userID string, limit int) ([]domain.XPTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	txns := append([]domain.XPTransaction(nil), f.txns[userID]...)
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].CreatedAt.After(txns[j].CreatedAt)
	})
	if len(txns) > limit {
		txns = txns[:limit]
	}
	return txns, nil
}

func (f *FakeRepository) GetTransactionsBetween(ctx context.Context, userID string, from, to time.Time) ([]domain.XPTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.XPTransaction
	for _, txn := range f.txns[userID] {
		if !txn.CreatedAt.Before(from) && txn.CreatedAt.Before(to) {
			out = append(out, txn)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *FakeRepository) SumTransactions(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sum := 0
	for _, txn := range f.txns[userID] {
		sum += txn.Amount
	}
	return sum, nil
}

// TransactionCount reports how many entries the user's ledger holds.
// Test helper.
func (f *FakeRepository) TransactionCount(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.txns[userID])
}
