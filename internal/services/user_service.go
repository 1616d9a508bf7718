// Package services – UserService
//
// This file implements the UserService, which handles first-contact
// registration and role management. Registration is idempotent: the platform
// user id is the primary key, so a repeated /start is a no-op that reports
// "already registered" rather than an error.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/referralhub/go-referral-backend/internal/domain"
	"github.com/referralhub/go-referral-backend/internal/repo"
)

// Profile carries the optional identity fields the platform exposes about a
// sender. Nil fields mean the user has not set the value.
type Profile struct {
	Username *string
	FullName *string
	Phone    *string
}

// UserService implements the use-cases around user identity.
type UserService struct {
	// DB is the database handle used for all user operations.
	DB *gorm.DB
}

// Register creates the user on first contact and reports whether a new row
// was inserted. When the user already exists it is a no-op returning false.
// A concurrent duplicate insert on the same id is treated as "already
// registered", not as a failure.
func (s *UserService) Register(ctx context.Context, id int64, p Profile) (bool, error) {
	if _, err := repo.GetUser(ctx, s.DB, id); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, storagef("user lookup", err)
	}

	u := &domain.User{
		ID:       id,
		Username: p.Username,
		FullName: p.FullName,
		Phone:    p.Phone,
	}
	if err := repo.CreateUser(ctx, s.DB, u); err != nil {
		if repo.IsDuplicate(err) {
			return false, nil
		}
		return false, storagef("user create", err)
	}
	return true, nil
}

// Get returns the registered user for id, or ErrUserNotFound.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, storagef("user lookup", err)
	}
	return u, nil
}

// EnsureAdmin verifies that id belongs to a registered bot admin or owner.
// Unregistered users get ErrUserNotFound; registered users holding neither
// role get ErrNotAuthorized.
func (s *UserService) EnsureAdmin(ctx context.Context, id int64) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !u.IsOwner && !u.IsAdmin {
		return ErrNotAuthorized
	}
	return nil
}

// UpdateProfile refreshes the mutable profile fields of an existing user.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, p Profile) error {
	err := repo.UpdateUserProfile(ctx, s.DB, id, p.Username, p.FullName, p.Phone)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return storagef("user profile update", err)
}

// SetRoles grants or revokes the owner/admin flags. Roles are assigned
// manually by the operator, never by the workflow itself.
func (s *UserService) SetRoles(ctx context.Context, id int64, isOwner, isAdmin bool) error {
	err := repo.UpdateUserRoles(ctx, s.DB, id, isOwner, isAdmin)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return storagef("user roles update", err)
}
