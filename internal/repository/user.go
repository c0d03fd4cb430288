package repository

import (
	"context"
	"sync"

	"carloan-service/internal/domain"
)

// UserRepository is an in-memory store of user accounts.
type UserRepository struct {
	mu    sync.RWMutex
	users []domain.User
}

func NewUserRepository(seed []domain.User) *UserRepository {
	users := make([]domain.User, len(seed))
	copy(users, seed)
	return &UserRepository{users: users}
}

// FindByUsername returns a copy of the user with the given username, or nil.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) *domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.users {
		if r.users[i].Username == username {
			u := r.users[i]
			return &u
		}
	}
	return nil
}

// FindByID returns a copy of the user with the given id, or nil.
func (r *UserRepository) FindByID(ctx context.Context, id int64) *domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.users {
		if r.users[i].ID == id {
			u := r.users[i]
			return &u
		}
	}
	return nil
}

// List returns copies of all users.
func (r *UserRepository) List(ctx context.Context) []domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, len(r.users))
	copy(out, r.users)
	return out
}
