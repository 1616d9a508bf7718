// Package services – LeaderboardService
//
// This file implements the read-only ranking of confirmed inviters and the
// chat rendering used by both the /ranking command and the periodic group
// broadcast. Reporting never mutates state and only ever counts confirmed
// relationships.
package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/referralhub/go-referral-backend/internal/repo"
)

// nameMaxLen caps rendered display names by rune length.
const nameMaxLen = 48

// LeaderboardService implements the inviter ranking use-cases.
type LeaderboardService struct {
	// DB is the database handle used for the aggregate query.
	DB *gorm.DB
}

// Top returns up to limit inviters ordered by confirmed acceptance count
// descending, ties broken by user id ascending.
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]repo.InviterRank, error) {
	ranks, err := repo.TopInviters(ctx, s.DB, limit)
	if err != nil {
		return nil, storagef("top inviters", err)
	}
	return ranks, nil
}

// FormatLeaderboard renders the ranking as the HTML chat message broadcast
// to the group. An empty ranking yields "", which callers treat as "nothing
// to broadcast".
func FormatLeaderboard(ranks []repo.InviterRank) string {
	if len(ranks) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("🏆 Top Convidadores 🏆\n\n")
	for _, r := range ranks {
		b.WriteString(fmt.Sprintf(
			`<a href="tg://user?id=%d">%s (%s)</a>: %d`,
			r.UserID, DisplayName(r.FullName, r.Username), handleOf(r.Username), r.Count,
		))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// DisplayName picks the best human-readable name for a user: the full name
// when present, a title-cased handle as fallback, and a fixed placeholder
// when neither exists. Names are clipped by rune length.
func DisplayName(fullName, username *string) string {
	if fullName != nil && strings.TrimSpace(*fullName) != "" {
		return clipName(strings.TrimSpace(*fullName))
	}
	if username != nil && strings.TrimSpace(*username) != "" {
		c := cases.Title(language.BrazilianPortuguese, cases.NoLower)
		return clipName(c.String(strings.TrimSpace(*username)))
	}
	return "Usuário sem nome"
}

// handleOf renders the @-handle or a placeholder when the user has none.
func handleOf(username *string) string {
	if username != nil && strings.TrimSpace(*username) != "" {
		return "@" + strings.TrimSpace(*username)
	}
	return "sem @"
}

// clipName truncates s to nameMaxLen runes.
func clipName(s string) string {
	if utf8.RuneCountInString(s) <= nameMaxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:nameMaxLen])
}
