package user

import (
	"context"
	"sync"

	"github.com/tendhq/tend/internal/domain"
	"github.com/tendhq/tend/internal/repository"
)

// FakeRepository is an in-memory repository.User for tests and local runs.
type FakeRepository struct {
	mu    sync.Mutex
	users map[string]domain.User
}

// NewFakeRepository creates an empty in-memory user store.
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{users: make(map[string]domain.User)}
}

var _ repository.User = (*FakeRepository)(nil)

func (f *FakeRepository) UpsertUser(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.users[u.ID] = *u
	return nil
}

func (f *FakeRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (f *FakeRepository) GetUserByName(ctx context.Context, name string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Name == name {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}
