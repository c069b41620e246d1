//go:build staging

package staging

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"
)

type userResponse struct {
	User struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Role string `json:"role"`
	} `json:"user"`
}

type taskResponse struct {
	Task struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"task"`
}

type approvalResponse struct {
	Task struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"task"`
	Outcome    string `json:"outcome"`
	NewScore   int    `json:"new_score"`
	CreditedXP int    `json:"credited_xp"`
}

type balanceResponse struct {
	UserID    string `json:"user_id"`
	CurrentXP int    `json:"current_xp"`
	TierName  string `json:"tier_name"`
}

// TestTaskLifecycleSmoke drives one task from assignment through approval
// and verifies the credited XP shows up in the balance.
func TestTaskLifecycleSmoke(t *testing.T) {
	name := fmt.Sprintf("smoke-%d", time.Now().UnixNano())

	resp, body := makeRequest(t, "POST", "/api/v1/user/register", map[string]string{
		"name": name,
		"role": "child",
	})
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		t.Fatalf("Register failed with status %d: %s", resp.StatusCode, body)
	}

	var user userResponse
	if err := json.Unmarshal(body, &user); err != nil {
		t.Fatalf("Failed to unmarshal user: %v", err)
	}
	if user.User.ID == "" {
		t.Fatal("Expected a user ID")
	}

	resp, body = makeRequest(t, "POST", "/api/v1/tasks/assign", map[string]interface{}{
		"user_id": user.User.ID,
		"title":   "Take out the trash",
		"level":   2,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Assign failed with status %d: %s", resp.StatusCode, body)
	}

	var task taskResponse
	if err := json.Unmarshal(body, &task); err != nil {
		t.Fatalf("Failed to unmarshal task: %v", err)
	}

	resp, body = makeRequest(t, "POST", "/api/v1/tasks/submit", map[string]string{
		"task_id": task.Task.ID,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Submit failed with status %d: %s", resp.StatusCode, body)
	}

	resp, body = makeRequest(t, "POST", "/api/v1/tasks/approve", map[string]string{
		"task_id": task.Task.ID,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Approve failed with status %d: %s", resp.StatusCode, body)
	}

	var approval approvalResponse
	if err := json.Unmarshal(body, &approval); err != nil {
		t.Fatalf("Failed to unmarshal approval: %v", err)
	}
	if approval.CreditedXP <= 0 {
		t.Errorf("Expected credited XP, got %d", approval.CreditedXP)
	}

	resp, body = makeRequest(t, "GET", "/api/v1/xp/balance?user_id="+user.User.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Balance failed with status %d: %s", resp.StatusCode, body)
	}

	var balance balanceResponse
	if err := json.Unmarshal(body, &balance); err != nil {
		t.Fatalf("Failed to unmarshal balance: %v", err)
	}
	if balance.CurrentXP < approval.CreditedXP {
		t.Errorf("Expected balance >= %d, got %d", approval.CreditedXP, balance.CurrentXP)
	}
}
