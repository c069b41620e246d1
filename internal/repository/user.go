package repository

import (
	"context"

	"github.com/tendhq/tend/internal/domain"
)

// User defines the persistence contract for household members.
type User interface {
	UpsertUser(ctx context.Context, user *domain.User) error

	// GetUserByID returns the user, or domain.ErrUserNotFound.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// GetUserByName returns the user with the given display name, or nil
	// when no such member exists.
	GetUserByName(ctx context.Context, name string) (*domain.User, error)
}
