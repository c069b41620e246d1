package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendhq/tend/internal/domain"
	"github.com/tendhq/tend/internal/repository"
)

// TaskRepository implements the task repository for PostgreSQL
type TaskRepository struct {
	db *pgxpool.Pool
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

var _ repository.Task = (*TaskRepository)(nil)

const taskColumns = `task_id, user_id, title, level, status, assigned_at, due_at, submitted_at, resolved_at`

// CreateTask inserts a new task
func (r *TaskRepository) CreateTask(ctx context.Context, task *domain.Task) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO tasks (task_id, user_id, title, level, status, assigned_at, due_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		task.ID, task.UserID, task.Title, task.Level, task.Status, task.AssignedAt, task.DueAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetTask retrieves a task by id
func (r *TaskRepository) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE task_id = $1`, taskID)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// ListUserTasks lists up to limit tasks for the user, newest first
func (r *TaskRepository) ListUserTasks(ctx context.Context, userID string, limit int) ([]domain.Task, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE user_id = $1
		ORDER BY assigned_at DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryRows, err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// TransitionStatus applies the status change only if the task is still in
// the expected prior state. RowsAffected distinguishes a lost race from a
// missing task.
func (r *TaskRepository) TransitionStatus(ctx context.Context, taskID string, from, to domain.TaskStatus, at time.Time) (*domain.Task, error) {
	stampColumn := "resolved_at"
	if to == domain.TaskStatusSubmitted {
		stampColumn = "submitted_at"
	}

	row := r.db.QueryRow(ctx, `
		UPDATE tasks
		SET status = $3, `+stampColumn+` = $4
		WHERE task_id = $1 AND status = $2
		RETURNING `+taskColumns,
		taskID, from, to, at)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetTask(ctx, taskID); getErr != nil {
				return nil, getErr
			}
			return nil, domain.ErrInvalidTaskState
		}
		return nil, fmt.Errorf("failed to transition task: %w", err)
	}
	return task, nil
}

// ListOverdue lists assigned tasks whose deadline passed before the cutoff
func (r *TaskRepository) ListOverdue(ctx context.Context, cutoff time.Time) ([]domain.Task, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE status = $1 AND due_at IS NOT NULL AND due_at < $2`,
		domain.TaskStatusAssigned, cutoff)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryRows, err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(&task.ID, &task.UserID, &task.Title, &task.Level, &task.Status,
		&task.AssignedAt, &task.DueAt, &task.SubmittedAt, &task.ResolvedAt)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func scanTasks(rows pgx.Rows) ([]domain.Task, error) {
	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToScanRow, err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryRows, err)
	}
	return tasks, nil
}
