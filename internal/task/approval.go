package task

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/tendhq/tend/internal/domain"
	"github.com/tendhq/tend/internal/event"
	"github.com/tendhq/tend/internal/logger"
	"github.com/tendhq/tend/internal/metrics"
)

// Approve runs the approval pipeline. The status transition is the
// exactly-once gate: only the caller that wins the compare-and-set runs the
// credibility update and the XP credit, so a double approval can never
// double-credit. The credibility write and the credit fail independently of
// each other and of the transition; partial application is surfaced in the
// returned error alongside the result, never rolled back.
func (s *service) Approve(ctx context.Context, taskID string) (*ApprovalResult, error) {
	log := logger.FromContext(ctx)

	task, err := s.repo.TransitionStatus(ctx, taskID, domain.TaskStatusSubmitted, domain.TaskStatusApproved, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTaskState) {
			current, getErr := s.repo.GetTask(ctx, taskID)
			if getErr != nil {
				return nil, fmt.Errorf("cannot approve task %s: %w", taskID, getErr)
			}
			if current.Status == domain.TaskStatusApproved {
				log.Info("Task already approved, skipping", "task_id", taskID)
				return &ApprovalResult{Task: current, AlreadyApproved: true}, nil
			}
		}
		return nil, fmt.Errorf("cannot approve task %s: %w", taskID, err)
	}

	outcome := task.Timeliness()
	result := &ApprovalResult{Task: task, Outcome: outcome}
	var errs []error

	score, err := s.credibility.RecordOutcome(ctx, task.UserID, outcome)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to record outcome: %w", err))
		// Credit at the last stored score rather than withholding the reward.
		score, err = s.credibility.CurrentScore(ctx, task.UserID)
	}
	if err != nil {
		errs = append(errs, fmt.Errorf("no usable credibility score, credit skipped: %w", err))
	} else {
		result.NewScore = score
		credited, creditErr := s.ledger.CreditForTask(ctx, task.UserID, task.Level, score, task.ID)
		if creditErr != nil {
			errs = append(errs, fmt.Errorf("failed to credit xp: %w", creditErr))
		} else {
			result.CreditedXP = credited
		}
	}

	metrics.TasksApproved.WithLabelValues(strconv.Itoa(int(task.Level))).Inc()
	s.publish(ctx, event.NewTaskResolvedEvent(event.TypeTaskApproved, task, outcome, result.CreditedXP))

	log.Info("Task approved",
		"task_id", task.ID,
		"user_id", task.UserID,
		"outcome", string(outcome),
		"score", result.NewScore,
		"credited", result.CreditedXP,
		"partial", len(errs) > 0)

	return result, errors.Join(errs...)
}

func (s *service) Reject(ctx context.Context, taskID string) (*domain.Task, error) {
	log := logger.FromContext(ctx)

	task, err := s.repo.TransitionStatus(ctx, taskID, domain.TaskStatusSubmitted, domain.TaskStatusRejected, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTaskState) {
			current, getErr := s.repo.GetTask(ctx, taskID)
			if getErr == nil && current.Status == domain.TaskStatusRejected {
				log.Info("Task already rejected, skipping", "task_id", taskID)
				return current, nil
			}
		}
		return nil, fmt.Errorf("cannot reject task %s: %w", taskID, err)
	}

	if _, err := s.credibility.RecordOutcome(ctx, task.UserID, domain.OutcomeRejected); err != nil {
		return task, fmt.Errorf("task rejected but outcome not recorded: %w", err)
	}

	metrics.TasksRejected.WithLabelValues(strconv.Itoa(int(task.Level))).Inc()
	s.publish(ctx, event.NewTaskResolvedEvent(event.TypeTaskRejected, task, domain.OutcomeRejected, 0))

	log.Info("Task rejected", "task_id", task.ID, "user_id", task.UserID)

	return task, nil
}

// ExpireOverdue moves assigned tasks past their deadline into expired.
// Expiry is a lifecycle event only; the credibility deltas apply to
// resolved submissions, not to tasks that were never turned in.
func (s *service) ExpireOverdue(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)
	now := s.now()

	overdue, err := s.repo.ListOverdue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue tasks: %w", err)
	}

	expired := 0
	for i := range overdue {
		t := &overdue[i]
		updated, err := s.repo.TransitionStatus(ctx, t.ID, domain.TaskStatusAssigned, domain.TaskStatusExpired, now)
		if err != nil {
			// A concurrent submit or a second sweep won the race. Not ours.
			if errors.Is(err, domain.ErrInvalidTaskState) {
				continue
			}
			return expired, fmt.Errorf("failed to expire task %s: %w", t.ID, err)
		}

		expired++
		metrics.TasksExpired.Inc()
		s.publish(ctx, event.NewTaskResolvedEvent(event.TypeTaskExpired, updated, "", 0))
	}

	if expired > 0 {
		log.Info("Expired overdue tasks", "count", expired)
	}

	return expired, nil
}
