package service

import (
	"context"

	"carloan-service/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

type UserStore interface {
	FindByUsername(ctx context.Context, username string) *domain.User
	FindByID(ctx context.Context, id int64) *domain.User
	List(ctx context.Context) []domain.User
}

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// Authenticate checks the credentials and returns the user on success, nil
// on unknown username or wrong password.
func (s *UserService) Authenticate(ctx context.Context, username, password string) *domain.User {
	user := s.users.FindByUsername(ctx, username)
	if user == nil {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil
	}
	return user
}

// UserByID returns the user with the given id, or nil.
func (s *UserService) UserByID(ctx context.Context, id int64) *domain.User {
	return s.users.FindByID(ctx, id)
}

// List returns all users.
func (s *UserService) List(ctx context.Context) []domain.User {
	return s.users.List(ctx)
}
