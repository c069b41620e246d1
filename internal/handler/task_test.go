package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendhq/tend/internal/domain"
)

func TestHandleAssignTask(t *testing.T) {
	t.Run("creates task", func(t *testing.T) {
		svcs := newTestServices()
		u := svcs.registerUser(t, "maya")

		body := fmt.Sprintf(`{"user_id":%q,"title":"Dishes","level":2,"due_at":"2026-09-01T18:00:00Z"}`, u.ID)
		w := doRequest(HandleAssignTask(svcs.tasks), http.MethodPost, "/api/v1/tasks/assign", body)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp TaskResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Dishes", resp.Task.Title)
		assert.Equal(t, domain.TaskStatusAssigned, resp.Task.Status)
		require.NotNil(t, resp.Task.DueAt)
	})

	t.Run("validation failures", func(t *testing.T) {
		svcs := newTestServices()
		u := svcs.registerUser(t, "maya")

		tests := []struct {
			name string
			body string
		}{
			{"missing title", fmt.Sprintf(`{"user_id":%q,"level":2}`, u.ID)},
			{"level out of range", fmt.Sprintf(`{"user_id":%q,"title":"x","level":6}`, u.ID)},
			{"malformed json", `{`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := doRequest(HandleAssignTask(svcs.tasks), http.MethodPost, "/api/v1/tasks/assign", tt.body)
				assert.Equal(t, http.StatusBadRequest, w.Code)
			})
		}
	})

	t.Run("bad due_at format", func(t *testing.T) {
		svcs := newTestServices()
		u := svcs.registerUser(t, "maya")

		body := fmt.Sprintf(`{"user_id":%q,"title":"Dishes","level":2,"due_at":"tomorrow"}`, u.ID)
		w := doRequest(HandleAssignTask(svcs.tasks), http.MethodPost, "/api/v1/tasks/assign", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "due_at")
	})

	t.Run("unknown user maps to not found", func(t *testing.T) {
		svcs := newTestServices()

		body := `{"user_id":"ghost","title":"Dishes","level":2}`
		w := doRequest(HandleAssignTask(svcs.tasks), http.MethodPost, "/api/v1/tasks/assign", body)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), ErrMsgUserNotFoundError)
	})
}

func TestHandleApproveTask(t *testing.T) {
	t.Run("approval credits xp", func(t *testing.T) {
		svcs := newTestServices()
		u := svcs.registerUser(t, "maya")
		submitted := svcs.submittedTask(t, u.ID, 3)

		body := fmt.Sprintf(`{"task_id":%q}`, submitted.ID)
		w := doRequest(HandleApproveTask(svcs.tasks), http.MethodPost, "/api/v1/tasks/approve", body)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"credited_xp":30`)

		balance, err := svcs.ledger.GetBalance(context.Background(), u.ID)
		require.NoError(t, err)
		assert.Equal(t, 30, balance.CurrentXP)
	})

	t.Run("approving an assigned task conflicts", func(t *testing.T) {
		svcs := newTestServices()
		u := svcs.registerUser(t, "maya")
		created, err := svcs.tasks.Assign(context.Background(), u.ID, "Chore", 1, nil)
		require.NoError(t, err)

		body := fmt.Sprintf(`{"task_id":%q}`, created.ID)
		w := doRequest(HandleApproveTask(svcs.tasks), http.MethodPost, "/api/v1/tasks/approve", body)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), ErrMsgInvalidTaskStateError)
	})

	t.Run("double approval reports the no-op", func(t *testing.T) {
		svcs := newTestServices()
		u := svcs.registerUser(t, "maya")
		submitted := svcs.submittedTask(t, u.ID, 3)

		body := fmt.Sprintf(`{"task_id":%q}`, submitted.ID)
		first := doRequest(HandleApproveTask(svcs.tasks), http.MethodPost, "/api/v1/tasks/approve", body)
		require.Equal(t, http.StatusOK, first.Code)

		second := doRequest(HandleApproveTask(svcs.tasks), http.MethodPost, "/api/v1/tasks/approve", body)

		assert.Equal(t, http.StatusOK, second.Code)
		assert.Contains(t, second.Body.String(), `"already_approved":true`)
		assert.Equal(t, 1, svcs.ledgerRepo.TransactionCount(u.ID))
	})

	t.Run("unknown task", func(t *testing.T) {
		svcs := newTestServices()

		w := doRequest(HandleApproveTask(svcs.tasks), http.MethodPost, "/api/v1/tasks/approve", `{"task_id":"missing"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleRejectTask(t *testing.T) {
	svcs := newTestServices()
	u := svcs.registerUser(t, "maya")
	submitted := svcs.submittedTask(t, u.ID, 2)

	body := fmt.Sprintf(`{"task_id":%q}`, submitted.ID)
	w := doRequest(HandleRejectTask(svcs.tasks), http.MethodPost, "/api/v1/tasks/reject", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"rejected"`)
	assert.Equal(t, 0, svcs.ledgerRepo.TransactionCount(u.ID))
}

func TestHandleListUserTasks(t *testing.T) {
	svcs := newTestServices()
	u := svcs.registerUser(t, "maya")
	for i := 0; i < 3; i++ {
		_, err := svcs.tasks.Assign(context.Background(), u.ID, "Chore", 1, nil)
		require.NoError(t, err)
	}

	t.Run("lists tasks", func(t *testing.T) {
		w := doRequest(HandleListUserTasks(svcs.tasks), http.MethodGet, "/api/v1/tasks?user_id="+u.ID, "")

		assert.Equal(t, http.StatusOK, w.Code)

		var resp TaskListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.Count)
	})

	t.Run("missing user_id", func(t *testing.T) {
		w := doRequest(HandleListUserTasks(svcs.tasks), http.MethodGet, "/api/v1/tasks", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad limit", func(t *testing.T) {
		w := doRequest(HandleListUserTasks(svcs.tasks), http.MethodGet, "/api/v1/tasks?user_id="+u.ID+"&limit=abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), ErrMsgInvalidLimit)
	})
}

func TestHandleExpireTasks(t *testing.T) {
	svcs := newTestServices()

	w := doRequest(HandleExpireTasks(svcs.tasks), http.MethodPost, "/api/v1/tasks/expire", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"expired":0`)
}
