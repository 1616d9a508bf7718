package repo

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/referralhub/go-referral-backend/internal/domain"
)

// seedConfirmedEdge wires the full confirmed chain: claimer user, pending
// confirmation resolved to status, and (for confirmed) the acceptance edge.
func seedConfirmedEdge(t *testing.T, db *gorm.DB, inviterID, invitedID int64, inviteID uint, status string) {
	t.Helper()
	ctx := context.Background()

	if err := CreateUser(ctx, db, &domain.User{ID: invitedID}); err != nil && !IsDuplicate(err) {
		t.Fatalf("seed claimer %d: %v", invitedID, err)
	}
	c, err := CreateConfirmation(ctx, db, invitedID, inviteID)
	if err != nil {
		t.Fatalf("seed confirmation: %v", err)
	}
	if status != domain.StatusPending {
		if err := UpdateConfirmationStatus(ctx, db, c.ID, status); err != nil {
			t.Fatalf("seed transition: %v", err)
		}
	}
	if status == domain.StatusConfirmed {
		if _, err := CreateAcceptance(ctx, db, inviterID, invitedID, inviteID, time.Now().UTC()); err != nil {
			t.Fatalf("seed acceptance: %v", err)
		}
	}
}

func TestTopInviters_CountsOnlyConfirmed(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	invA := seedInvite(t, db, 1, "https://t.me/+a")
	invB := seedInvite(t, db, 2, "https://t.me/+b")

	// Inviter 1: two confirmed, one denied, one pending.
	seedConfirmedEdge(t, db, 1, 10, invA, domain.StatusConfirmed)
	seedConfirmedEdge(t, db, 1, 11, invA, domain.StatusConfirmed)
	seedConfirmedEdge(t, db, 1, 12, invA, domain.StatusDenied)
	seedConfirmedEdge(t, db, 1, 13, invA, domain.StatusPending)
	// Inviter 2: one confirmed.
	seedConfirmedEdge(t, db, 2, 14, invB, domain.StatusConfirmed)

	ranks, err := TopInviters(ctx, db, 5)
	if err != nil {
		t.Fatalf("TopInviters: %v", err)
	}
	if len(ranks) != 2 {
		t.Fatalf("expected 2 rows, got %d: %+v", len(ranks), ranks)
	}
	if ranks[0].UserID != 1 || ranks[0].Count != 2 {
		t.Fatalf("rank 0 mismatch: %+v", ranks[0])
	}
	if ranks[1].UserID != 2 || ranks[1].Count != 1 {
		t.Fatalf("rank 1 mismatch: %+v", ranks[1])
	}
}

func TestTopInviters_TieBreaksByUserID(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	invB := seedInvite(t, db, 2, "https://t.me/+b")
	invA := seedInvite(t, db, 1, "https://t.me/+a")

	seedConfirmedEdge(t, db, 2, 20, invB, domain.StatusConfirmed)
	seedConfirmedEdge(t, db, 1, 21, invA, domain.StatusConfirmed)

	ranks, err := TopInviters(ctx, db, 5)
	if err != nil {
		t.Fatalf("TopInviters: %v", err)
	}
	if len(ranks) != 2 || ranks[0].UserID != 1 || ranks[1].UserID != 2 {
		t.Fatalf("tie should order by user id ascending: %+v", ranks)
	}
}

func TestTopInviters_LimitAndEmpty(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	ranks, err := TopInviters(ctx, db, 5)
	if err != nil || len(ranks) != 0 {
		t.Fatalf("empty db: ranks=%+v err=%v", ranks, err)
	}
	if ranks == nil {
		t.Fatal("empty result must be a non-nil slice")
	}

	ranks, err = TopInviters(ctx, db, 0)
	if err != nil || len(ranks) != 0 {
		t.Fatalf("limit 0: ranks=%+v err=%v", ranks, err)
	}

	for i := int64(1); i <= 3; i++ {
		inv := seedInvite(t, db, i, "https://t.me/+lim"+string(rune('a'+i)))
		seedConfirmedEdge(t, db, i, i+100, inv, domain.StatusConfirmed)
	}
	ranks, err = TopInviters(ctx, db, 2)
	if err != nil || len(ranks) != 2 {
		t.Fatalf("limit 2: ranks=%+v err=%v", ranks, err)
	}
}
