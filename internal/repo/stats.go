// Package repo – aggregate/reporting queries.
//
// This file provides the read-only ranking query behind the leaderboard.
// It is context-aware and safe to call from services or handlers.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/referralhub/go-referral-backend/internal/domain"
)

// InviterRank is one leaderboard row: an issuing user and the number of
// confirmed acceptance edges attributed to them.
type InviterRank struct {
	UserID   int64   `json:"user_id"`
	FullName *string `json:"full_name"`
	Username *string `json:"username"`
	Count    int64   `json:"count"`
}

// TopInviters returns up to limit users ranked by the number of acceptance
// edges where they are the inviter, counting only edges whose backing
// confirmation is in confirmed status. Pending and denied confirmations
// never contribute. Ties break by inviter id ascending so the ordering is
// stable across runs.
func TopInviters(ctx context.Context, db *gorm.DB, limit int) ([]InviterRank, error) {
	if limit <= 0 {
		return []InviterRank{}, nil
	}
	var out []InviterRank
	err := db.WithContext(ctx).
		Model(&domain.Acceptance{}).
		Select("acceptances.inviter_id AS user_id, users.full_name, users.username, COUNT(acceptances.id) AS count").
		Joins("JOIN users ON users.id = acceptances.inviter_id").
		Joins("JOIN confirmations ON confirmations.invite_id = acceptances.invite_id AND confirmations.user_id = acceptances.invited_id").
		Where("confirmations.status = ?", domain.StatusConfirmed).
		Group("acceptances.inviter_id, users.full_name, users.username").
		Order("count DESC, user_id ASC").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []InviterRank{}
	}
	return out, nil
}
