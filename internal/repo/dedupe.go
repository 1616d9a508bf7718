// Package repo – callback replay receipts.
//
// This file provides repository helpers for the CallbackReceipt model used
// to implement safe-replay semantics for confirm/deny button taps.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/referralhub/go-referral-backend/internal/domain"
)

// GetCallbackReceipt returns a non-expired receipt or ErrNotFound.
func GetCallbackReceipt(ctx context.Context, db *gorm.DB, userID int64, confirmationID uint, key string, now time.Time) (*domain.CallbackReceipt, error) {
	var rec domain.CallbackReceipt
	err := db.WithContext(ctx).
		Where("user_id = ? AND confirmation_id = ? AND key = ? AND expires_at > ?", userID, confirmationID, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateCallbackReceipt inserts a receipt and returns ErrDuplicate on a
// unique violation (the tap was already recorded).
func CreateCallbackReceipt(ctx context.Context, db *gorm.DB, userID int64, confirmationID uint, key, outcome string, ttl time.Duration) (*domain.CallbackReceipt, error) {
	now := time.Now().UTC()
	rec := &domain.CallbackReceipt{
		ID:             uuid.NewString(),
		UserID:         userID,
		ConfirmationID: confirmationID,
		Key:            key,
		Outcome:        outcome,
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if IsDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}
