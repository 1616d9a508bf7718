// Package repo – invite persistence.
//
// Invite rows are append-only: minted once per issuing user, never updated.
// The unique index on user_id is the hard guarantee behind "one invite per
// user"; callers map duplicate-key failures (IsDuplicate) to a re-read of
// the winning row.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/referralhub/go-referral-backend/internal/domain"
)

// CreateInvite inserts a new Invite row for userID with the given link code.
// On a unique violation (issuer already holds an invite, or the code
// collided) the raw driver error is returned; check it with IsDuplicate.
func CreateInvite(ctx context.Context, db *gorm.DB, userID int64, code string) (*domain.Invite, error) {
	inv := &domain.Invite{
		UserID:    userID,
		Code:      code,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(inv).Error; err != nil {
		return nil, err
	}
	return inv, nil
}

// GetInvite fetches an invite by primary key, or ErrNotFound.
func GetInvite(ctx context.Context, db *gorm.DB, id uint) (*domain.Invite, error) {
	var inv domain.Invite
	if err := db.WithContext(ctx).Where("id = ?", id).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetInviteByUser fetches the invite issued by userID, or ErrNotFound when
// the user never minted one.
func GetInviteByUser(ctx context.Context, db *gorm.DB, userID int64) (*domain.Invite, error) {
	var inv domain.Invite
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetInviteByCode fetches an invite by its exact link text. The code column
// is uniquely indexed, so this is the hot lookup path for claim submission.
func GetInviteByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Invite, error) {
	var inv domain.Invite
	if err := db.WithContext(ctx).Where("code = ?", code).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}
