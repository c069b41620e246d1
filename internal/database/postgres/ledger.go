package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendhq/tend/internal/domain"
	"github.com/tendhq/tend/internal/repository"
)

// LedgerRepository implements the ledger repository for PostgreSQL
type LedgerRepository struct {
	db *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

var _ repository.Ledger = (*LedgerRepository)(nil)

// GetBalance retrieves the stored balance, nil when the user has none yet
func (r *LedgerRepository) GetBalance(ctx context.Context, userID string) (*domain.XPBalance, error) {
	var b domain.XPBalance
	err := r.db.QueryRow(ctx, `
		SELECT user_id, current_xp, version, updated_at
		FROM xp_balances WHERE user_id = $1`,
		userID).Scan(&b.UserID, &b.CurrentXP, &b.Version, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return &b, nil
}

// ApplyTransaction appends the transaction and writes the balance in one
// database transaction, returning the written balance and the user's
// post-append transaction count. The balance write is a compare-and-set on
// version; losing the race returns domain.ErrStoreConflict with nothing
// written.
func (r *LedgerRepository) ApplyTransaction(ctx context.Context, txn domain.XPTransaction, newBalance int, expectedVersion int64) (*domain.XPBalance, int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTx, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	updatedAt := txn.CreatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	var tag pgconn.CommandTag
	if expectedVersion == 0 {
		tag, err = tx.Exec(ctx, `
			INSERT INTO xp_balances (user_id, current_xp, version, updated_at)
			VALUES ($1, $2, 1, $3)
			ON CONFLICT (user_id) DO NOTHING`,
			txn.UserID, newBalance, updatedAt)
	} else {
		tag, err = tx.Exec(ctx, `
			UPDATE xp_balances
			SET current_xp = $2, version = version + 1, updated_at = $3
			WHERE user_id = $1 AND version = $4`,
			txn.UserID, newBalance, updatedAt, expectedVersion)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to write balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, 0, domain.ErrStoreConflict
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO xp_transactions (transaction_id, user_id, amount, source, task_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		txn.ID, txn.UserID, txn.Amount, txn.Source, txn.TaskID, txn.CreatedAt)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to append transaction: %w", err)
	}

	var txnCount int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM xp_transactions WHERE user_id = $1`,
		txn.UserID).Scan(&txnCount)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", ErrMsgFailedToCommitTx, err)
	}

	return &domain.XPBalance{
		UserID:    txn.UserID,
		CurrentXP: newBalance,
		Version:   expectedVersion + 1,
		UpdatedAt: updatedAt,
	}, txnCount, nil
}

// GetRecentTransactions lists up to limit transactions, most recent first
func (r *LedgerRepository) GetRecentTransactions(ctx context.Context, userID string, limit int) ([]domain.XPTransaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT transaction_id, user_id, amount, source, task_id, created_at
		FROM xp_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryRows, err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetTransactionsBetween lists transactions with from <= created_at < to
func (r *LedgerRepository) GetTransactionsBetween(ctx context.Context, userID string, from, to time.Time) ([]domain.XPTransaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT transaction_id, user_id, amount, source, task_id, created_at
		FROM xp_transactions
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC`,
		userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryRows, err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// SumTransactions folds every transaction amount for the user
func (r *LedgerRepository) SumTransactions(ctx context.Context, userID string) (int, error) {
	var sum int
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM xp_transactions WHERE user_id = $1`,
		userID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return sum, nil
}

func scanTransactions(rows pgx.Rows) ([]domain.XPTransaction, error) {
	var txns []domain.XPTransaction
	for rows.Next() {
		var txn domain.XPTransaction
		if err := rows.Scan(&txn.ID, &txn.UserID, &txn.Amount, &txn.Source, &txn.TaskID, &txn.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToScanRow, err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryRows, err)
	}
	return txns, nil
}
