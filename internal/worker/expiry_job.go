package worker

import (
	"context"

	"github.com/tendhq/tend/internal/logger"
	"github.com/tendhq/tend/internal/task"
)

// ExpiryJob sweeps assigned tasks that are past their deadline.
// It is scheduled at a fixed interval and is safe to run concurrently
// with approvals because each transition is a compare-and-set.
type ExpiryJob struct {
	taskService task.Service
}

// NewExpiryJob creates a new ExpiryJob
func NewExpiryJob(taskService task.Service) *ExpiryJob {
	return &ExpiryJob{taskService: taskService}
}

// Process runs one sweep over the overdue tasks
func (j *ExpiryJob) Process(ctx context.Context) error {
	log := logger.FromContext(ctx)

	expired, err := j.taskService.ExpireOverdue(ctx)
	if err != nil {
		log.Error(LogMsgExpirySweepFailed, "expired", expired, "error", err)
		return err
	}

	if expired > 0 {
		log.Info(LogMsgExpirySweepCompleted, "expired", expired)
	}
	return nil
}
