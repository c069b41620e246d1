package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendhq/tend/internal/domain"
	"github.com/tendhq/tend/internal/repository"
)

// CredibilityRepository implements the credibility repository for PostgreSQL
type CredibilityRepository struct {
	db *pgxpool.Pool
}

// NewCredibilityRepository creates a new CredibilityRepository
func NewCredibilityRepository(db *pgxpool.Pool) *CredibilityRepository {
	return &CredibilityRepository{db: db}
}

var _ repository.Credibility = (*CredibilityRepository)(nil)

// GetScore retrieves the stored record, nil when the user has none yet
func (r *CredibilityRepository) GetScore(ctx context.Context, userID string) (*domain.CredibilityRecord, error) {
	var rec domain.CredibilityRecord
	err := r.db.QueryRow(ctx, `
		SELECT user_id, score, version, updated_at
		FROM credibility_scores WHERE user_id = $1`,
		userID).Scan(&rec.UserID, &rec.Score, &rec.Version, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get score: %w", err)
	}
	return &rec, nil
}

// SaveScore persists the record with a compare-and-set on version
func (r *CredibilityRepository) SaveScore(ctx context.Context, record domain.CredibilityRecord, expectedVersion int64) (*domain.CredibilityRecord, error) {
	var tag pgconn.CommandTag
	var err error
	if expectedVersion == 0 {
		tag, err = r.db.Exec(ctx, `
			INSERT INTO credibility_scores (user_id, score, version, updated_at)
			VALUES ($1, $2, 1, $3)
			ON CONFLICT (user_id) DO NOTHING`,
			record.UserID, record.Score, record.UpdatedAt)
	} else {
		tag, err = r.db.Exec(ctx, `
			UPDATE credibility_scores
			SET score = $2, version = version + 1, updated_at = $3
			WHERE user_id = $1 AND version = $4`,
			record.UserID, record.Score, record.UpdatedAt, expectedVersion)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrStoreConflict
	}

	saved := record
	saved.Version = expectedVersion + 1
	return &saved, nil
}
