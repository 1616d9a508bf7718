// Package services defines the business logic for registration, invites,
// confirmations, and the leaderboard. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing chat replies is performed by the bot dispatcher.
package services

import (
	"errors"
	"fmt"
)

// Validation and not-found sentinels.
var (
	// ErrUserNotFound indicates that the referenced user is not registered.
	ErrUserNotFound = errors.New("user not found")

	// ErrInviteNotFound indicates that no invite matches the submitted link.
	ErrInviteNotFound = errors.New("invite not found")

	// ErrConfirmationNotFound indicates that the referenced confirmation does
	// not exist.
	ErrConfirmationNotFound = errors.New("confirmation not found")

	// ErrNoLink is returned when a free-text message contains no invite link.
	// Callers treat it as "nothing to do" and stay silent.
	ErrNoLink = errors.New("no invite link in text")

	// ErrSelfInvite is returned when a user submits their own invite link.
	ErrSelfInvite = errors.New("cannot confirm own invite")

	// ErrAlreadyConfirmed is returned when the claimer already holds a
	// confirmed confirmation against some invite. Each user may confirm at
	// most one invite, ever.
	ErrAlreadyConfirmed = errors.New("user already confirmed an invite")

	// ErrAlreadyResolved is returned when a confirmation has already left the
	// pending state; terminal states are one-shot.
	ErrAlreadyResolved = errors.New("confirmation already resolved")

	// ErrNotMember is returned when a group-membership check comes back
	// negative for an operation that requires membership.
	ErrNotMember = errors.New("user is not a group member")

	// ErrNotAuthorized is returned when a user lacks the admin/owner role
	// required by the operation.
	ErrNotAuthorized = errors.New("user is not authorized")
)

// StorageError wraps a persistence failure. Operations that hit a
// StorageError abort without leaving partial writes; the triggering event
// gets a generic failure reply.
type StorageError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }

// Unwrap returns the underlying error for errors.Is / errors.As chains.
func (e *StorageError) Unwrap() error { return e.Err }

// storagef wraps err in a StorageError unless it is nil.
func storagef(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// GatewayError wraps a failure talking to the messaging platform. Gateway
// failures never abort a committed state mutation: sends are attempted after
// commit and surfaced as best-effort failures only.
type GatewayError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *GatewayError) Error() string { return fmt.Sprintf("gateway: %s: %v", e.Op, e.Err) }

// Unwrap returns the underlying error for errors.Is / errors.As chains.
func (e *GatewayError) Unwrap() error { return e.Err }
