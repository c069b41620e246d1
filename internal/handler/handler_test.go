package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/tendhq/tend/internal/concurrency"
	"github.com/tendhq/tend/internal/credibility"
	"github.com/tendhq/tend/internal/domain"
	"github.com/tendhq/tend/internal/event"
	"github.com/tendhq/tend/internal/ledger"
	"github.com/tendhq/tend/internal/task"
	"github.com/tendhq/tend/internal/user"
)

// MockDBPool mocks the database.Pool interface
type MockDBPool struct {
	mock.Mock
}

func (m *MockDBPool) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDBPool) Close() {
	m.Called()
}

// testServices wires the full service stack over in-memory repositories.
type testServices struct {
	users       user.Service
	tasks       task.Service
	ledger      ledger.Service
	credibility credibility.Service
	ledgerRepo  *ledger.FakeRepository
}

func newTestServices() *testServices {
	locks := concurrency.NewLockManager()
	bus := event.NewMemoryBus()

	userRepo := user.NewFakeRepository()
	taskRepo := task.NewFakeRepository()
	ledgerRepo := ledger.NewFakeRepository()
	credRepo := credibility.NewFakeRepository()

	credService := credibility.NewService(credRepo, locks, bus)
	ledgerService := ledger.NewService(ledgerRepo, locks, bus, time.UTC)

	return &testServices{
		users:       user.NewService(userRepo),
		tasks:       task.NewService(taskRepo, userRepo, credService, ledgerService, bus),
		ledger:      ledgerService,
		credibility: credService,
		ledgerRepo:  ledgerRepo,
	}
}

func (s *testServices) registerUser(t *testing.T, name string) *domain.User {
	t.Helper()
	u, err := s.users.Register(context.Background(), name, domain.RoleChild)
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	return u
}

func (s *testServices) submittedTask(t *testing.T, userID string, level domain.TaskLevel) *domain.Task {
	t.Helper()
	ctx := context.Background()
	created, err := s.tasks.Assign(ctx, userID, "Chore", level, nil)
	if err != nil {
		t.Fatalf("failed to assign task: %v", err)
	}
	submitted, err := s.tasks.Submit(ctx, created.ID)
	if err != nil {
		t.Fatalf("failed to submit task: %v", err)
	}
	return submitted
}

func doRequest(handler http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}
