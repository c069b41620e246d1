package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendhq/tend/internal/domain"
	"github.com/tendhq/tend/internal/event"
)

func (h *testHarness) assignSubmitted(t *testing.T, userID string, level domain.TaskLevel, dueAt *time.Time) *domain.Task {
	t.Helper()
	ctx := context.Background()

	task, err := h.svc.Assign(ctx, userID, "Chore", level, dueAt)
	require.NoError(t, err)
	submitted, err := h.svc.Submit(ctx, task.ID)
	require.NoError(t, err)
	return submitted
}

func TestApprove(t *testing.T) {
	ctx := context.Background()

	t.Run("on-time approval raises score and credits at post-outcome score", func(t *testing.T) {
		h := newHarness(t)
		h.addUser(t, "child-1", "maya")
		task := h.assignSubmitted(t, "child-1", 3, nil)

		result, err := h.svc.Approve(ctx, task.ID)

		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeOnTime, result.Outcome)
		// Score starts at the 100 ceiling, so the on-time bonus clamps.
		assert.Equal(t, 100, result.NewScore)
		assert.Equal(t, 30, result.CreditedXP)
		assert.Equal(t, domain.TaskStatusApproved, result.Task.Status)

		balance, err := h.led.GetBalance(ctx, "child-1")
		require.NoError(t, err)
		assert.Equal(t, 30, balance.CurrentXP)
	})

	t.Run("late approval penalizes score before computing payout", func(t *testing.T) {
		h := newHarness(t)
		h.addUser(t, "child-1", "maya")
		due := time.Now().Add(-time.Hour)
		task := h.assignSubmitted(t, "child-1", 3, &due)

		result, err := h.svc.Approve(ctx, task.ID)

		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeLate, result.Outcome)
		assert.Equal(t, 95, result.NewScore)
		// Payout uses the post-penalty score: floor(30 * 0.95) = 28.
		assert.Equal(t, 28, result.CreditedXP)
	})

	t.Run("approving an unsubmitted task fails", func(t *testing.T) {
		h := newHarness(t)
		h.addUser(t, "child-1", "maya")
		task, err := h.svc.Assign(ctx, "child-1", "Chore", 1, nil)
		require.NoError(t, err)

		_, err = h.svc.Approve(ctx, task.ID)

		assert.ErrorIs(t, err, domain.ErrInvalidTaskState)
		balance, berr := h.led.GetBalance(ctx, "child-1")
		require.NoError(t, berr)
		assert.Equal(t, 0, balance.CurrentXP)
	})

	t.Run("re-approval is a no-op, never a double credit", func(t *testing.T) {
		h := newHarness(t)
		h.addUser(t, "child-1", "maya")
		task := h.assignSubmitted(t, "child-1", 3, nil)

		first, err := h.svc.Approve(ctx, task.ID)
		require.NoError(t, err)
		require.Equal(t, 30, first.CreditedXP)

		second, err := h.svc.Approve(ctx, task.ID)

		require.NoError(t, err)
		assert.True(t, second.AlreadyApproved)
		assert.Equal(t, 0, second.CreditedXP)

		balance, err := h.led.GetBalance(ctx, "child-1")
		require.NoError(t, err)
		assert.Equal(t, 30, balance.CurrentXP)
		assert.Equal(t, 1, h.ledgerRepo.TransactionCount("child-1"))
	})

	t.Run("concurrent approvals credit exactly once", func(t *testing.T) {
		h := newHarness(t)
		h.addUser(t, "child-1", "maya")
		task := h.assignSubmitted(t, "child-1", 2, nil)

		var wg sync.WaitGroup
		results := make([]*ApprovalResult, 8)
		for i := 0; i < len(results); i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], _ = h.svc.Approve(ctx, task.ID)
			}(i)
		}
		wg.Wait()

		credits := 0
		for _, r := range results {
			if r != nil && !r.AlreadyApproved {
				credits++
			}
		}
		assert.Equal(t, 1, credits)
		assert.Equal(t, 1, h.ledgerRepo.TransactionCount("child-1"))
	})

	t.Run("credit failure is surfaced but the approval stands", func(t *testing.T) {
		h := newHarness(t)
		h.addUser(t, "child-1", "maya")
		task := h.assignSubmitted(t, "child-1", 2, nil)
		h.ledgerRepo.FailAppliesWithConflict = 100

		result, err := h.svc.Approve(ctx, task.ID)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrStoreConflict)
		require.NotNil(t, result)
		assert.Equal(t, domain.TaskStatusApproved, result.Task.Status)
		assert.Equal(t, 0, result.CreditedXP)
	})

	t.Run("publishes task approved event", func(t *testing.T) {
		h := newHarness(t)
		h.addUser(t, "child-1", "maya")
		task := h.assignSubmitted(t, "child-1", 3, nil)

		var payload event.TaskResolvedPayloadV1
		h.bus.Subscribe(event.TypeTaskApproved, func(_ context.Context, e event.Event) error {
			var err error
			payload, err = event.DecodePayload[event.TaskResolvedPayloadV1](e.Payload)
			return err
		})

		_, err := h.svc.Approve(ctx, task.ID)

		require.NoError(t, err)
		assert.Equal(t, task.ID, payload.TaskID)
		assert.Equal(t, "child-1", payload.UserID)
		assert.Equal(t, domain.OutcomeOnTime, payload.Outcome)
		assert.Equal(t, 30, payload.CreditedXP)
	})
}

func TestReject(t *testing.T) {
	ctx := context.Background()

	t.Run("records the penalty and credits nothing", func(t *testing.T) {
		h := newHarness(t)
		h.addUser(t, "child-1", "maya")
		task := h.assignSubmitted(t, "child-1", 3, nil)

		rejected, err := h.svc.Reject(ctx, task.ID)

		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusRejected, rejected.Status)

		score, err := h.cred.CurrentScore(ctx, "child-1")
		require.NoError(t, err)
		assert.Equal(t, 90, score)

		assert.Equal(t, 0, h.ledgerRepo.TransactionCount("child-1"))
	})

	t.Run("re-rejection is a no-op", func(t *testing.T) {
		h := newHarness(t)
		h.addUser(t, "child-1", "maya")
		task := h.assignSubmitted(t, "child-1", 1, nil)

		_, err := h.svc.Reject(ctx, task.ID)
		require.NoError(t, err)
		_, err = h.svc.Reject(ctx, task.ID)
		require.NoError(t, err)

		// Only one penalty applied.
		score, err := h.cred.CurrentScore(ctx, "child-1")
		require.NoError(t, err)
		assert.Equal(t, 90, score)
	})

	t.Run("cannot reject an approved task", func(t *testing.T) {
		h := newHarness(t)
		h.addUser(t, "child-1", "maya")
		task := h.assignSubmitted(t, "child-1", 1, nil)

		_, err := h.svc.Approve(ctx, task.ID)
		require.NoError(t, err)

		_, err = h.svc.Reject(ctx, task.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidTaskState)
	})
}

func TestExpireOverdue(t *testing.T) {
	ctx := context.Background()

	t.Run("expires only assigned tasks past their deadline", func(t *testing.T) {
		h := newHarness(t)
		h.addUser(t, "child-1", "maya")

		past := time.Now().Add(-time.Hour)
		future := time.Now().Add(time.Hour)

		overdue, err := h.svc.Assign(ctx, "child-1", "Overdue", 1, &past)
		require.NoError(t, err)
		_, err = h.svc.Assign(ctx, "child-1", "Not yet due", 1, &future)
		require.NoError(t, err)
		_, err = h.svc.Assign(ctx, "child-1", "No deadline", 1, nil)
		require.NoError(t, err)
		submitted := h.assignSubmitted(t, "child-1", 1, &past)

		count, err := h.svc.ExpireOverdue(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, count)

		expired, err := h.svc.GetTask(ctx, overdue.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusExpired, expired.Status)

		still, err := h.svc.GetTask(ctx, submitted.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusSubmitted, still.Status)
	})

	t.Run("expiry does not touch credibility", func(t *testing.T) {
		h := newHarness(t)
		h.addUser(t, "child-1", "maya")
		past := time.Now().Add(-time.Hour)
		_, err := h.svc.Assign(ctx, "child-1", "Overdue", 1, &past)
		require.NoError(t, err)

		_, err = h.svc.ExpireOverdue(ctx)
		require.NoError(t, err)

		score, err := h.cred.CurrentScore(ctx, "child-1")
		require.NoError(t, err)
		assert.Equal(t, domain.CredibilityStarting, score)
	})

	t.Run("second sweep finds nothing", func(t *testing.T) {
		h := newHarness(t)
		h.addUser(t, "child-1", "maya")
		past := time.Now().Add(-time.Hour)
		_, err := h.svc.Assign(ctx, "child-1", "Overdue", 1, &past)
		require.NoError(t, err)

		count, err := h.svc.ExpireOverdue(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, count)

		count, err = h.svc.ExpireOverdue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}
