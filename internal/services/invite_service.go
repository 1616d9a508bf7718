// Package services – InviteService
//
// This file implements the InviteService, which governs invite link issuing.
// Links are minted once per user and returned verbatim on every subsequent
// request. The membership check and the duplicate lookup both run before the
// external link mint so a rejected request never leaves an orphaned, unusable
// link behind at the platform.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/referralhub/go-referral-backend/internal/gateway"
	"github.com/referralhub/go-referral-backend/internal/repo"
)

// InviteService implements the use-cases around invite links.
type InviteService struct {
	// DB is the database handle used for all invite operations.
	DB *gorm.DB
	// Gateway mints links and answers membership checks. It must already be
	// wrapped with a bounded timeout.
	Gateway gateway.Gateway
}

// Request returns the invite link owned by userID, minting one on first use.
//
// Semantics:
//   - userID must be registered; otherwise ErrUserNotFound.
//   - userID must be a group member; otherwise ErrNotMember. A gateway
//     failure during the check is reported as a GatewayError, not as
//     non-membership.
//   - When the user already owns an invite, the stored link is returned;
//     the call is idempotent and touches no external system.
//   - Otherwise a link is minted via the gateway and persisted. Two racing
//     requests for the same user converge: the loser of the unique-index
//     race re-reads and returns the winner's link. The loser's freshly
//     minted platform link goes unused, which is the acceptable side of
//     fixing the duplicate-row bug.
func (s *InviteService) Request(ctx context.Context, userID int64) (string, error) {
	if _, err := repo.GetUser(ctx, s.DB, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", storagef("user lookup", err)
	}

	member, err := s.Gateway.IsGroupMember(ctx, userID)
	if err != nil {
		return "", &GatewayError{Op: "membership check", Err: err}
	}
	if !member {
		return "", ErrNotMember
	}

	if inv, err := repo.GetInviteByUser(ctx, s.DB, userID); err == nil {
		return inv.Code, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", storagef("invite lookup", err)
	}

	link, err := s.Gateway.CreateInviteLink(ctx)
	if err != nil {
		return "", &GatewayError{Op: "invite link creation", Err: err}
	}

	if _, err := repo.CreateInvite(ctx, s.DB, userID, link); err != nil {
		if repo.IsDuplicate(err) {
			// Lost the race: another request minted first. Return its link.
			inv, rerr := repo.GetInviteByUser(ctx, s.DB, userID)
			if rerr != nil {
				return "", storagef("invite re-read", rerr)
			}
			return inv.Code, nil
		}
		return "", storagef("invite create", err)
	}
	return link, nil
}

// LinkOf returns the stored invite link for userID without minting,
// or ErrInviteNotFound when none exists.
func (s *InviteService) LinkOf(ctx context.Context, userID int64) (string, error) {
	inv, err := repo.GetInviteByUser(ctx, s.DB, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrInviteNotFound
	}
	if err != nil {
		return "", storagef("invite lookup", err)
	}
	return inv.Code, nil
}
