package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tendhq/tend/internal/credibility"
	"github.com/tendhq/tend/internal/domain"
	"github.com/tendhq/tend/internal/event"
	"github.com/tendhq/tend/internal/ledger"
	"github.com/tendhq/tend/internal/logger"
	"github.com/tendhq/tend/internal/repository"
)

// ApprovalResult reports what an approval actually applied. Credibility and
// credit are applied best-effort after the status transition, so a result
// can coexist with a non-nil error when one of them failed.
type ApprovalResult struct {
	Task            *domain.Task       `json:"task"`
	Outcome         domain.TaskOutcome `json:"outcome,omitempty"`
	NewScore        int                `json:"new_score"`
	CreditedXP      int                `json:"credited_xp"`
	AlreadyApproved bool               `json:"already_approved"`
}

// Service orchestrates the task lifecycle. It owns no scores and no
// balances; approvals drive the credibility and ledger services in order.
type Service interface {
	// Assign creates a new task in the assigned state. dueAt is optional;
	// tasks without a deadline are always on time and never expire.
	Assign(ctx context.Context, userID, title string, level domain.TaskLevel, dueAt *time.Time) (*domain.Task, error)

	// Submit moves an assigned task to submitted and stamps the submission
	// time used later for the timeliness classification.
	Submit(ctx context.Context, taskID string) (*domain.Task, error)

	// Approve transitions the task to approved exactly once, then records
	// the timeliness outcome and credits XP at the post-outcome score.
	// Losing the transition race to a previous approval is a no-op.
	Approve(ctx context.Context, taskID string) (*ApprovalResult, error)

	// Reject transitions the task to rejected and records the negative
	// credibility outcome. Rejected work earns nothing.
	Reject(ctx context.Context, taskID string) (*domain.Task, error)

	// ExpireOverdue sweeps assigned tasks past their deadline into the
	// expired state and returns how many were expired.
	ExpireOverdue(ctx context.Context) (int, error)

	GetTask(ctx context.Context, taskID string) (*domain.Task, error)
	ListUserTasks(ctx context.Context, userID string, limit int) ([]domain.Task, error)
}

type service struct {
	repo        repository.Task
	users       repository.User
	credibility credibility.Service
	ledger      ledger.Service
	publisher   event.Bus
	now         func() time.Time
}

// NewService creates a new task service. publisher may be nil.
func NewService(repo repository.Task, users repository.User, cred credibility.Service, led ledger.Service, publisher event.Bus) Service {
	return &service{
		repo:        repo,
		users:       users,
		credibility: cred,
		ledger:      led,
		publisher:   publisher,
		now:         time.Now,
	}
}

func (s *service) Assign(ctx context.Context, userID, title string, level domain.TaskLevel, dueAt *time.Time) (*domain.Task, error) {
	log := logger.FromContext(ctx)

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if !level.Valid() {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidTaskLevel, level)
	}

	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to assign task: %w", err)
	}

	task := &domain.Task{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      title,
		Level:      level,
		Status:     domain.TaskStatusAssigned,
		AssignedAt: s.now(),
		DueAt:      dueAt,
	}

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	log.Info("Assigned task",
		"task_id", task.ID, "user_id", userID, "level", int(level), "due_at", dueAt)

	return task, nil
}

func (s *service) Submit(ctx context.Context, taskID string) (*domain.Task, error) {
	task, err := s.repo.TransitionStatus(ctx, taskID, domain.TaskStatusAssigned, domain.TaskStatusSubmitted, s.now())
	if err != nil {
		return nil, fmt.Errorf("cannot submit task %s: %w", taskID, err)
	}

	logger.FromContext(ctx).Info("Task submitted",
		"task_id", task.ID, "user_id", task.UserID, "timeliness", string(task.Timeliness()))

	return task, nil
}

func (s *service) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (s *service) ListUserTasks(ctx context.Context, userID string, limit int) ([]domain.Task, error) {
	if limit <= 0 {
		limit = DefaultTaskListLimit
	}
	if limit > MaxTaskListLimit {
		limit = MaxTaskListLimit
	}

	tasks, err := s.repo.ListUserTasks(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (s *service) publish(ctx context.Context, e event.Event) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(ctx, e)
}
