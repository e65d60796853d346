package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/familes/familes-server/internal/domain"
)

// CreateUser creates a new account. The email index enforces uniqueness
// case-insensitively, so "Anna@x.com" and "anna@x.com" collide.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	if err := s.Users.Create(ctx, user.ID, user); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return ErrEmailExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser retrieves an account by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.Users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves an account by email, case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.Users.GetByIndex(ctx, "email", email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// UpdateUser overwrites an existing account.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	user.Touch()
	if err := s.Users.Update(ctx, user.ID, user); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUserNotFound
		}
		if errors.Is(err, ErrAlreadyExists) {
			return ErrEmailExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// TouchUserLogin records a successful login time.
func (s *Store) TouchUserLogin(ctx context.Context, user *domain.User, at time.Time) error {
	user.LastLoginAt = at
	return s.UpdateUser(ctx, user)
}

// DeleteUser removes an account and its email index entry. Profiles and
// sessions cascade at the service layer.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if err := s.Users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
