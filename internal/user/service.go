package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tendhq/tend/internal/domain"
	"github.com/tendhq/tend/internal/logger"
	"github.com/tendhq/tend/internal/repository"
)

// Service defines the interface for household member operations
type Service interface {
	// Register creates a member, or returns the existing one when the name
	// is already taken. Registration is idempotent on name.
	Register(ctx context.Context, name string, role domain.Role) (*domain.User, error)

	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetUserByName(ctx context.Context, name string) (*domain.User, error)
}

type service struct {
	repo repository.User
	now  func() time.Time
}

// NewService creates a new user service
func NewService(repo repository.User) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Register(ctx context.Context, name string, role domain.Role) (*domain.User, error) {
	log := logger.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if role != domain.RoleParent && role != domain.RoleChild {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}

	existing, err := s.repo.GetUserByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	u := &domain.User{
		ID:        uuid.NewString(),
		Name:      name,
		Role:      role,
		CreatedAt: s.now(),
	}
	if err := s.repo.UpsertUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	log.Info("Registered household member", "user_id", u.ID, "name", name, "role", string(role))

	return u, nil
}

func (s *service) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *service) GetUserByName(ctx context.Context, name string) (*domain.User, error) {
	u, err := s.repo.GetUserByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by name: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, name)
	}
	return u, nil
}
