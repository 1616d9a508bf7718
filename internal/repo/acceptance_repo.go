package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/referralhub/go-referral-backend/internal/domain"
)

// CreateAcceptance appends the durable inviter→invited edge for a confirmed
// invite. Rows in this table are never updated or deleted.
func CreateAcceptance(ctx context.Context, db *gorm.DB, inviterID, invitedID int64, inviteID uint, joinedAt time.Time) (*domain.Acceptance, error) {
	a := &domain.Acceptance{
		InviterID: inviterID,
		InvitedID: invitedID,
		InviteID:  inviteID,
		JoinedAt:  joinedAt.UTC(),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// CountAcceptancesByInviter returns the number of confirmed edges where
// userID is the inviter.
func CountAcceptancesByInviter(ctx context.Context, db *gorm.DB, userID int64) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Acceptance{}).
		Where("inviter_id = ?", userID).
		Count(&n).Error
	return n, err
}
