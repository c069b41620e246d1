package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tendhq/tend/internal/domain"
	"github.com/tendhq/tend/internal/logger"
	"github.com/tendhq/tend/internal/task"
)

// AssignTaskRequest represents the request to assign a task
type AssignTaskRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Title  string `json:"title" validate:"required,max=200"`
	Level  int    `json:"level" validate:"required,gte=1,lte=5"`
	DueAt  string `json:"due_at,omitempty"`
}

// TaskRequest identifies the task a lifecycle operation applies to
type TaskRequest struct {
	TaskID string `json:"task_id" validate:"required"`
}

// TaskResponse wraps a task for API responses
type TaskResponse struct {
	Task *domain.Task `json:"task"`
}

// TaskListResponse wraps a task listing
type TaskListResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Count int           `json:"count"`
}

// ExpireTasksResponse reports the result of an expiry sweep
type ExpireTasksResponse struct {
	Expired int `json:"expired"`
}

// HandleAssignTask creates a task in the assigned state
func HandleAssignTask(taskService task.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AssignTaskRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Assign task"); err != nil {
			return
		}

		var dueAt *time.Time
		if req.DueAt != "" {
			parsed, err := time.Parse(time.RFC3339, req.DueAt)
			if err != nil {
				logger.FromContext(r.Context()).Warn("Invalid due_at", "due_at", req.DueAt)
				respondError(w, http.StatusBadRequest, ErrMsgInvalidDueAt)
				return
			}
			dueAt = &parsed
		}

		created, err := taskService.Assign(r.Context(), req.UserID, req.Title, domain.TaskLevel(req.Level), dueAt)
		if err != nil {
			respondServiceError(w, r, "Assign task", err)
			return
		}

		respondJSON(w, http.StatusCreated, TaskResponse{Task: created})
	}
}

// HandleSubmitTask moves an assigned task to submitted
func HandleSubmitTask(taskService task.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TaskRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Submit task"); err != nil {
			return
		}

		submitted, err := taskService.Submit(r.Context(), req.TaskID)
		if err != nil {
			respondServiceError(w, r, "Submit task", err)
			return
		}

		respondJSON(w, http.StatusOK, TaskResponse{Task: submitted})
	}
}

// HandleApproveTask runs the approval pipeline. A partial application
// (approved but credit or credibility write failed) still reports the
// approval; the failure detail is logged server-side.
func HandleApproveTask(taskService task.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req TaskRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Approve task"); err != nil {
			return
		}

		result, err := taskService.Approve(r.Context(), req.TaskID)
		if err != nil {
			if result == nil {
				respondServiceError(w, r, "Approve task", err)
				return
			}
			log.Error("Task approved with partial application", "task_id", req.TaskID, "error", err)
		}

		respondJSON(w, http.StatusOK, result)
	}
}

// HandleRejectTask rejects a submitted task
func HandleRejectTask(taskService task.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TaskRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Reject task"); err != nil {
			return
		}

		rejected, err := taskService.Reject(r.Context(), req.TaskID)
		if err != nil {
			respondServiceError(w, r, "Reject task", err)
			return
		}

		respondJSON(w, http.StatusOK, TaskResponse{Task: rejected})
	}
}

// HandleExpireTasks triggers an overdue sweep on demand
func HandleExpireTasks(taskService task.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		expired, err := taskService.ExpireOverdue(r.Context())
		if err != nil {
			respondServiceError(w, r, "Expire tasks", err)
			return
		}

		respondJSON(w, http.StatusOK, ExpireTasksResponse{Expired: expired})
	}
}

// HandleGetTask returns a task by id
func HandleGetTask(taskService task.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID := chi.URLParam(r, "taskID")

		found, err := taskService.GetTask(r.Context(), taskID)
		if err != nil {
			respondServiceError(w, r, "Get task", err)
			return
		}

		respondJSON(w, http.StatusOK, TaskResponse{Task: found})
	}
}

// HandleListUserTasks lists a member's tasks, newest first
func HandleListUserTasks(taskService task.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetQueryParam(r, w, "user_id")
		if !ok {
			return
		}
		limit, ok := GetLimitParam(r, w, 0)
		if !ok {
			return
		}

		tasks, err := taskService.ListUserTasks(r.Context(), userID, limit)
		if err != nil {
			respondServiceError(w, r, "List tasks", err)
			return
		}

		respondJSON(w, http.StatusOK, TaskListResponse{Tasks: tasks, Count: len(tasks)})
	}
}
