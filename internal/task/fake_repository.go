package task

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tendhq/tend/internal/domain"
	"github.com/tendhq/tend/internal/repository"
)

// FakeRepository is an in-memory repository.Task with the same
// compare-and-set transition semantics as the postgres implementation.
type FakeRepository struct {
	mu    sync.Mutex
	tasks map[string]domain.Task
}

// NewFakeRepository creates an empty in-memory task store.
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{tasks: make(map[string]domain.Task)}
}

var _ repository.Task = (*FakeRepository)(nil)

func (f *FakeRepository) CreateTask(ctx context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tasks[task.ID] = *task
	return nil
}

func (f *FakeRepository) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	task, ok := f.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &task, nil
}

func (f *FakeRepository) ListUserTasks(ctx context.Context, userID string, limit int) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.Task
	for _, task := range f.tasks {
		if task.UserID == userID {
			out = append(out, task)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AssignedAt.After(out[j].AssignedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *FakeRepository) TransitionStatus(ctx context.Context, taskID string, from, to domain.TaskStatus, at time.Time) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	task, ok := f.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if task.Status != from {
		return nil, domain.ErrInvalidTaskState
	}

	task.Status = to
	stamp := at
	switch to {
	case domain.TaskStatusSubmitted:
		task.SubmittedAt = &stamp
	case domain.TaskStatusApproved, domain.TaskStatusRejected, domain.TaskStatusExpired:
		task.ResolvedAt = &stamp
	}
	f.tasks[taskID] = task

	return &task, nil
}

func (f *FakeRepository) ListOverdue(ctx context.Context, cutoff time.Time) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.Task
	for _, task := range f.tasks {
		if task.Status == domain.TaskStatusAssigned && task.DueAt != nil && task.DueAt.Before(cutoff) {
			out = append(out, task)
		}
	}
	return out, nil
}
