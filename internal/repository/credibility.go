package repository

import (
	"context"

	"github.com/tendhq/tend/internal/domain"
)

// Credibility defines the persistence contract for trust scores.
type Credibility interface {
	// GetScore returns the stored record, or nil when the user has no record
	// yet. Callers default absent users to domain.CredibilityStarting.
	GetScore(ctx context.Context, userID string) (*domain.CredibilityRecord, error)

	// SaveScore persists the record. expectedVersion is the version the
	// caller read (0 when no record existed); a mismatch returns
	// domain.ErrStoreConflict and writes nothing.
	SaveScore(ctx context.Context, record domain.CredibilityRecord, expectedVersion int64) (*domain.CredibilityRecord, error)
}
