package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/referralhub/go-referral-backend/internal/repo"
	"github.com/referralhub/go-referral-backend/internal/services"
	"github.com/referralhub/go-referral-backend/internal/utils"
)

// LeaderboardResponse is the body of GET /api/v1/leaderboard.
type LeaderboardResponse struct {
	Ranks []repo.InviterRank `json:"ranks"`
}

// LeaderboardHandler serves the confirmed-referral ranking to operators.
type LeaderboardHandler struct {
	// Token guards the endpoint; requests must present it as a bearer
	// token. An empty token disables the endpoint entirely.
	Token string
	// DefaultLimit is used when the limit query parameter is absent or
	// unparsable.
	DefaultLimit int
	Leaderboard  *services.LeaderboardService
}

const leaderboardMaxLimit = 100

// Handle responds to GET /api/v1/leaderboard?limit=N.
//
// Responses:
//   - 401 when the bearer token is missing or wrong.
//   - 500 when the ranking query fails.
//   - 200 with the rank rows otherwise.
func (h *LeaderboardHandler) Handle(c *gin.Context) {
	if !h.authorized(c.GetHeader("Authorization")) {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "missing or invalid token")
		return
	}

	limit := utils.AtoiDefault(c.Query("limit"), h.DefaultLimit)
	if limit < 0 {
		limit = h.DefaultLimit
	}
	if limit > leaderboardMaxLimit {
		limit = leaderboardMaxLimit
	}

	ranks, err := h.Leaderboard.Top(c.Request.Context(), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeRankingFailed, "failed to compute ranking")
		return
	}
	if ranks == nil {
		ranks = []repo.InviterRank{}
	}
	ok(c, http.StatusOK, LeaderboardResponse{Ranks: ranks})
}

func (h *LeaderboardHandler) authorized(header string) bool {
	if h.Token == "" {
		return false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	got := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.Token)) == 1
}
