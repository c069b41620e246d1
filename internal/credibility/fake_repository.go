package credibility

import (
	"context"
	"sync"

	"github.com/tendhq/tend/internal/domain"
	"github.com/tendhq/tend/internal/repository"
)

// FakeRepository is an in-memory repository.Credibility for tests and local
// runs. It enforces the same optimistic-version semantics as the postgres
// implementation.
type FakeRepository struct {
	mu      sync.Mutex
	records map[string]domain.CredibilityRecord

	// FailSavesWithConflict makes the next n SaveScore calls fail with
	// domain.ErrStoreConflict, for retry-path tests.
	FailSavesWithConflict int
}

// NewFakeRepository creates an empty in-memory credibility store.
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{records: make(map[string]domain.CredibilityRecord)}
}

var _ repository.Credibility = (*FakeRepository)(nil)

func (f *FakeRepository) GetScore(ctx context.Context, userID string) (*domain.CredibilityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	record, ok := f.records[userID]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (f *FakeRepository) SaveScore(ctx context.Context, record domain.CredibilityRecord, expectedVersion int64) (*domain.CredibilityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailSavesWithConflict > 0 {
		f.FailSavesWithConflict--
		return nil, domain.ErrStoreConflict
	}

	existing, ok := f.records[record.UserID]
	var currentVersion int64
	if ok {
		currentVersion = existing.Version
	}
	if currentVersion != expectedVersion {
		return nil, domain.ErrStoreConflict
	}

	record.Version = currentVersion + 1
	f.records[record.UserID] = record
	return &record, nil
}
