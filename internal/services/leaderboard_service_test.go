package services

import (
	"context"
	"strings"
	"testing"

	"github.com/referralhub/go-referral-backend/internal/gateway"
	"github.com/referralhub/go-referral-backend/internal/repo"
)

func TestLeaderboard_Top_OnlyConfirmedCount(t *testing.T) {
	db := newTestDB(t)
	gw := gateway.NewRecorder()
	gw.Members[10] = true
	gw.Members[11] = true
	confs := &ConfirmationService{DB: db, Gateway: gw}
	lb := &LeaderboardService{DB: db}
	ctx := context.Background()

	seedInvite(t, db, 1, "https://t.me/+one")
	seedInvite(t, db, 2, "https://t.me/+two")
	seedUser(t, db, 10)
	seedUser(t, db, 11)

	// Claimer 10 confirms inviter 1's link; claimer 11 denies inviter 2's.
	c1, err := confs.SubmitClaim(ctx, 10, "https://t.me/+one")
	if err != nil {
		t.Fatalf("claim 1: %v", err)
	}
	if _, err := confs.Resolve(ctx, c1.ConfirmationID, DecisionConfirm); err != nil {
		t.Fatalf("confirm 1: %v", err)
	}
	c2, err := confs.SubmitClaim(ctx, 11, "https://t.me/+two")
	if err != nil {
		t.Fatalf("claim 2: %v", err)
	}
	if _, err := confs.Resolve(ctx, c2.ConfirmationID, DecisionDeny); err != nil {
		t.Fatalf("deny 2: %v", err)
	}

	ranks, err := lb.Top(ctx, 5)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(ranks) != 1 || ranks[0].UserID != 1 || ranks[0].Count != 1 {
		t.Fatalf("only the confirmed edge may rank: %+v", ranks)
	}
}

func TestFormatLeaderboard(t *testing.T) {
	ranks := []repo.InviterRank{
		{UserID: 1, FullName: strptr("Ana Maria"), Username: strptr("anam"), Count: 3},
		{UserID: 2, Username: strptr("bruno"), Count: 1},
		{UserID: 3, Count: 1},
	}
	out := FormatLeaderboard(ranks)

	if !strings.HasPrefix(out, "🏆 Top Convidadores 🏆") {
		t.Fatalf("missing header: %q", out)
	}
	for _, want := range []string{
		`<a href="tg://user?id=1">Ana Maria (@anam)</a>: 3`,
		`<a href="tg://user?id=2">Bruno (@bruno)</a>: 1`,
		`<a href="tg://user?id=3">Usuário sem nome (sem @)</a>: 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing line %q in:\n%s", want, out)
		}
	}
	if strings.HasSuffix(out, "\n") {
		t.Fatalf("trailing newline: %q", out)
	}
}

func TestFormatLeaderboard_Empty(t *testing.T) {
	if got := FormatLeaderboard(nil); got != "" {
		t.Fatalf("empty ranking must render empty, got %q", got)
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		name     string
		fullName *string
		username *string
		want     string
	}{
		{"full name wins", strptr("Carlos Silva"), strptr("csilva"), "Carlos Silva"},
		{"handle title-cased", nil, strptr("carlos"), "Carlos"},
		{"blank full name falls through", strptr("   "), strptr("ana"), "Ana"},
		{"nothing set", nil, nil, "Usuário sem nome"},
	}
	for _, tc := range cases {
		if got := DisplayName(tc.fullName, tc.username); got != tc.want {
			t.Errorf("%s: DisplayName = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestDisplayName_ClipsLongNames(t *testing.T) {
	long := strings.Repeat("á", 80)
	got := DisplayName(&long, nil)
	if len([]rune(got)) != nameMaxLen {
		t.Fatalf("expected %d runes, got %d", nameMaxLen, len([]rune(got)))
	}
}
