package repository

import (
	"context"
	"time"

	"github.com/tendhq/tend/internal/domain"
)

// Task defines the persistence contract for the task lifecycle.
type Task interface {
	CreateTask(ctx context.Context, task *domain.Task) error

	// GetTask returns the task, or domain.ErrTaskNotFound.
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)

	// ListUserTasks returns up to limit tasks for the user, newest first.
	ListUserTasks(ctx context.Context, userID string, limit int) ([]domain.Task, error)

	// TransitionStatus moves the task from one status to another as a
	// compare-and-set: the write only applies if the task is still in the
	// `from` status, otherwise domain.ErrInvalidTaskState is returned.
	// This is what makes approval exactly-once under concurrent callers.
	// at stamps SubmittedAt (submitted) or ResolvedAt (terminal states).
	TransitionStatus(ctx context.Context, taskID string, from, to domain.TaskStatus, at time.Time) (*domain.Task, error)

	// ListOverdue returns assigned tasks whose deadline is before the cutoff.
	ListOverdue(ctx context.Context, cutoff time.Time) ([]domain.Task, error)
}
