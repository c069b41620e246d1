package domain

import "time"

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusAssigned  TaskStatus = "assigned"
	TaskStatusSubmitted TaskStatus = "submitted"
	TaskStatusApproved  TaskStatus = "approved"
	TaskStatusRejected  TaskStatus = "rejected"
	TaskStatusExpired   TaskStatus = "expired"
)

// Terminal reports whether no further transitions are allowed from the status.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusApproved, TaskStatusRejected, TaskStatusExpired:
		return true
	}
	return false
}

// TaskOutcome classifies how a task was resolved for credibility purposes
type TaskOutcome string

const (
	OutcomeOnTime   TaskOutcome = "on_time"
	OutcomeLate     TaskOutcome = "late"
	OutcomeRejected TaskOutcome = "rejected"
)

// TaskLevel is a difficulty tier. Base XP per level is fixed at compile time.
type TaskLevel int

const (
	TaskLevel1 TaskLevel = iota + 1
	TaskLevel2
	TaskLevel3
	TaskLevel4
	TaskLevel5
)

var taskLevelBaseXP = map[TaskLevel]int{
	TaskLevel1: 5,
	TaskLevel2: 15,
	TaskLevel3: 30,
	TaskLevel4: 45,
	TaskLevel5: 60,
}

// BaseXP returns the unadjusted XP value for the level, 0 for invalid levels.
func (l TaskLevel) BaseXP() int {
	return taskLevelBaseXP[l]
}

// Valid reports whether the level is one of the five defined tiers.
func (l TaskLevel) Valid() bool {
	_, ok := taskLevelBaseXP[l]
	return ok
}

// Task represents a household task assigned to a user
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Level       TaskLevel  `json:"level"`
	Status      TaskStatus `json:"status"`
	AssignedAt  time.Time  `json:"assigned_at"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// Timeliness classifies a submitted task as on-time or late.
// A task with no deadline is always on time.
func (t *Task) Timeliness() TaskOutcome {
	if t.DueAt == nil || t.SubmittedAt == nil {
		return OutcomeOnTime
	}
	if t.SubmittedAt.After(*t.DueAt) {
		return OutcomeLate
	}
	return OutcomeOnTime
}

// Overdue reports whether an unsubmitted task has passed its deadline.
func (t *Task) Overdue(now time.Time) bool {
	return t.Status == TaskStatusAssigned && t.DueAt != nil && now.After(*t.DueAt)
}
