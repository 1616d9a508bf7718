// Package repo – confirmation persistence.
//
// Confirmations carry the claim state machine: pending → confirmed | denied.
// UpdateConfirmationStatus only matches rows still in pending, so a terminal
// row can never transition again regardless of caller bugs or races.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/referralhub/go-referral-backend/internal/domain"
)

// CreateConfirmation inserts a pending Confirmation linking the claiming
// userID to inviteID.
func CreateConfirmation(ctx context.Context, db *gorm.DB, userID int64, inviteID uint) (*domain.Confirmation, error) {
	c := &domain.Confirmation{
		UserID:    userID,
		InviteID:  inviteID,
		Status:    domain.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetConfirmation fetches a confirmation by primary key, or ErrNotFound.
func GetConfirmation(ctx context.Context, db *gorm.DB, id uint) (*domain.Confirmation, error) {
	var c domain.Confirmation
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// HasConfirmedConfirmation reports whether userID already has a confirmed
// confirmation against any invite. This backs the one-confirmed-invite-per-
// user rule.
func HasConfirmedConfirmation(ctx context.Context, db *gorm.DB, userID int64) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Confirmation{}).
		Where("user_id = ? AND status = ?", userID, domain.StatusConfirmed).
		Count(&n).Error
	return n > 0, err
}

// UpdateConfirmationStatus transitions a confirmation out of pending into
// status. The WHERE clause matches only pending rows, so the transition is
// one-shot at the SQL level: a second resolution attempt affects zero rows
// and returns ErrNotFound.
func UpdateConfirmationStatus(ctx context.Context, db *gorm.DB, id uint, status string) error {
	res := db.WithContext(ctx).
		Model(&domain.Confirmation{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
