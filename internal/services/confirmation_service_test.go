package services

import (
	"context"
	"errors"
	"testing"

	"github.com/referralhub/go-referral-backend/internal/domain"
	"github.com/referralhub/go-referral-backend/internal/gateway"
	"github.com/referralhub/go-referral-backend/internal/repo"
)

// newConfirmationFixture seeds an issuer (id 1) with an invite and a
// registered member claimer (id 2), returning the service and recorder.
func newConfirmationFixture(t *testing.T) (*ConfirmationService, *gateway.Recorder, *domain.Invite) {
	t.Helper()
	db := newTestDB(t)
	gw := gateway.NewRecorder()
	gw.Members[2] = true

	inv := seedInvite(t, db, 1, "https://t.me/+issuer1")
	seedUser(t, db, 2)

	return &ConfirmationService{DB: db, Gateway: gw}, gw, inv
}

func TestConfirmation_SubmitClaim_HappyPath(t *testing.T) {
	svc, _, inv := newConfirmationFixture(t)
	ctx := context.Background()

	res, err := svc.SubmitClaim(ctx, 2, "cheguei pelo link https://t.me/+issuer1 ontem")
	if err != nil {
		t.Fatalf("SubmitClaim: %v", err)
	}
	if res.ConfirmationID == 0 || res.Issuer == nil || res.Issuer.ID != 1 {
		t.Fatalf("unexpected claim result: %+v", res)
	}

	conf, err := repo.GetConfirmation(ctx, svc.DB, res.ConfirmationID)
	if err != nil || conf.Status != domain.StatusPending || conf.InviteID != inv.ID {
		t.Fatalf("confirmation row: c=%+v err=%v", conf, err)
	}
}

func TestConfirmation_SubmitClaim_NoLink(t *testing.T) {
	svc, _, _ := newConfirmationFixture(t)

	_, err := svc.SubmitClaim(context.Background(), 2, "oi pessoal, tudo bem?")
	if !errors.Is(err, ErrNoLink) {
		t.Fatalf("expected ErrNoLink, got %v", err)
	}
}

func TestConfirmation_SubmitClaim_UnknownLink(t *testing.T) {
	svc, _, _ := newConfirmationFixture(t)

	_, err := svc.SubmitClaim(context.Background(), 2, "https://t.me/+unknown")
	if !errors.Is(err, ErrInviteNotFound) {
		t.Fatalf("expected ErrInviteNotFound, got %v", err)
	}
}

func TestConfirmation_SubmitClaim_SelfInvite(t *testing.T) {
	svc, gw, _ := newConfirmationFixture(t)
	gw.Members[1] = true

	_, err := svc.SubmitClaim(context.Background(), 1, "https://t.me/+issuer1")
	if !errors.Is(err, ErrSelfInvite) {
		t.Fatalf("expected ErrSelfInvite, got %v", err)
	}

	// No pending row may exist for the rejected claim.
	has, err := repo.HasConfirmedConfirmation(context.Background(), svc.DB, 1)
	if err != nil || has {
		t.Fatalf("state leaked: has=%v err=%v", has, err)
	}
}

func TestConfirmation_SubmitClaim_NotMember(t *testing.T) {
	svc, gw, _ := newConfirmationFixture(t)
	delete(gw.Members, 2)

	_, err := svc.SubmitClaim(context.Background(), 2, "https://t.me/+issuer1")
	if !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
}

func TestConfirmation_Resolve_ConfirmCreatesEdge(t *testing.T) {
	svc, _, inv := newConfirmationFixture(t)
	ctx := context.Background()

	claim, err := svc.SubmitClaim(ctx, 2, "https://t.me/+issuer1")
	if err != nil {
		t.Fatalf("SubmitClaim: %v", err)
	}

	res, err := svc.Resolve(ctx, claim.ConfirmationID, DecisionConfirm)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Status != domain.StatusConfirmed || res.Replayed {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Issuer.ID != 1 || res.Claimer.ID != 2 || res.InviteID != inv.ID {
		t.Fatalf("parties mismatch: %+v", res)
	}

	n, err := repo.CountAcceptancesByInviter(ctx, svc.DB, 1)
	if err != nil || n != 1 {
		t.Fatalf("acceptance edge: n=%d err=%v", n, err)
	}
}

func TestConfirmation_Resolve_DenyCreatesNoEdge(t *testing.T) {
	svc, _, _ := newConfirmationFixture(t)
	ctx := context.Background()

	claim, err := svc.SubmitClaim(ctx, 2, "https://t.me/+issuer1")
	if err != nil {
		t.Fatalf("SubmitClaim: %v", err)
	}

	res, err := svc.Resolve(ctx, claim.ConfirmationID, DecisionDeny)
	if err != nil || res.Status != domain.StatusDenied {
		t.Fatalf("Resolve deny: res=%+v err=%v", res, err)
	}

	n, err := repo.CountAcceptancesByInviter(ctx, svc.DB, 1)
	if err != nil || n != 0 {
		t.Fatalf("deny must not create an edge: n=%d err=%v", n, err)
	}
}

func TestConfirmation_Resolve_OneShot(t *testing.T) {
	svc, _, _ := newConfirmationFixture(t)
	ctx := context.Background()

	claim, err := svc.SubmitClaim(ctx, 2, "https://t.me/+issuer1")
	if err != nil {
		t.Fatalf("SubmitClaim: %v", err)
	}
	if _, err := svc.Resolve(ctx, claim.ConfirmationID, DecisionConfirm); err != nil {
		t.Fatalf("first Resolve: %v", err)
	}

	// The opposite decision on a terminal row is rejected.
	_, err = svc.Resolve(ctx, claim.ConfirmationID, DecisionDeny)
	if !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
}

func TestConfirmation_Resolve_DoubleTapReplays(t *testing.T) {
	svc, _, _ := newConfirmationFixture(t)
	ctx := context.Background()

	claim, err := svc.SubmitClaim(ctx, 2, "https://t.me/+issuer1")
	if err != nil {
		t.Fatalf("SubmitClaim: %v", err)
	}
	first, err := svc.Resolve(ctx, claim.ConfirmationID, DecisionConfirm)
	if err != nil || first.Replayed {
		t.Fatalf("first Resolve: res=%+v err=%v", first, err)
	}

	// Same decision again within the TTL: recorded outcome, no error.
	second, err := svc.Resolve(ctx, claim.ConfirmationID, DecisionConfirm)
	if err != nil {
		t.Fatalf("replayed Resolve: %v", err)
	}
	if !second.Replayed || second.Status != domain.StatusConfirmed {
		t.Fatalf("expected replayed confirmed outcome: %+v", second)
	}

	// Still exactly one edge.
	n, err := repo.CountAcceptancesByInviter(ctx, svc.DB, 1)
	if err != nil || n != 1 {
		t.Fatalf("edge count after replay: n=%d err=%v", n, err)
	}
}

func TestConfirmation_Resolve_SecondConfirmRejected(t *testing.T) {
	db := newTestDB(t)
	gw := gateway.NewRecorder()
	gw.Members[3] = true
	svc := &ConfirmationService{DB: db, Gateway: gw}
	ctx := context.Background()

	seedInvite(t, db, 1, "https://t.me/+one")
	seedInvite(t, db, 2, "https://t.me/+two")
	seedUser(t, db, 3)

	c1, err := svc.SubmitClaim(ctx, 3, "https://t.me/+one")
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	c2, err := svc.SubmitClaim(ctx, 3, "https://t.me/+two")
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}

	if _, err := svc.Resolve(ctx, c1.ConfirmationID, DecisionConfirm); err != nil {
		t.Fatalf("confirm first: %v", err)
	}
	_, err = svc.Resolve(ctx, c2.ConfirmationID, DecisionConfirm)
	if !errors.Is(err, ErrAlreadyConfirmed) {
		t.Fatalf("expected ErrAlreadyConfirmed, got %v", err)
	}

	// The confirmed confirmation is final: a deny tap on the second claim
	// is rejected the same way and must not touch the row.
	_, err = svc.Resolve(ctx, c2.ConfirmationID, DecisionDeny)
	if !errors.Is(err, ErrAlreadyConfirmed) {
		t.Fatalf("expected ErrAlreadyConfirmed on deny, got %v", err)
	}
	conf, err := repo.GetConfirmation(ctx, svc.DB, c2.ConfirmationID)
	if err != nil || conf.Status != domain.StatusPending {
		t.Fatalf("second claim must stay pending: c=%+v err=%v", conf, err)
	}
}

func TestConfirmation_Resolve_NotMember(t *testing.T) {
	svc, gw, _ := newConfirmationFixture(t)
	ctx := context.Background()

	claim, err := svc.SubmitClaim(ctx, 2, "https://t.me/+issuer1")
	if err != nil {
		t.Fatalf("SubmitClaim: %v", err)
	}

	// The claimer left the group before tapping.
	delete(gw.Members, 2)
	_, err = svc.Resolve(ctx, claim.ConfirmationID, DecisionConfirm)
	if !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}

	// The row stays pending and can still be resolved later.
	conf, err := repo.GetConfirmation(ctx, svc.DB, claim.ConfirmationID)
	if err != nil || conf.Status != domain.StatusPending {
		t.Fatalf("row must stay pending: c=%+v err=%v", conf, err)
	}
}

func TestConfirmation_Resolve_Missing(t *testing.T) {
	svc, _, _ := newConfirmationFixture(t)

	_, err := svc.Resolve(context.Background(), 999, DecisionConfirm)
	if !errors.Is(err, ErrConfirmationNotFound) {
		t.Fatalf("expected ErrConfirmationNotFound, got %v", err)
	}

	_, err = svc.Resolve(context.Background(), 999, Decision("bogus"))
	if !errors.Is(err, ErrConfirmationNotFound) {
		t.Fatalf("bogus decision: expected ErrConfirmationNotFound, got %v", err)
	}
}
