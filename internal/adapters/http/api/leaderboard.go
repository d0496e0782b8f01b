// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/crypticsea/dungeond/internal/domain/model"
)

// LeaderboardDependencies defines the interface for leaderboard reads.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
	UserRank(ctx context.Context, username string) (int, bool, error)
	TotalPlayers(ctx context.Context) (int, error)
	DefaultLeaderboardLimit() int
	MaxLeaderboardLimit() int
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// leaderboardResponse mirrors the read shape of GET /api/leaderboard.
// UserRank is null when the caller has no entries today.
type leaderboardResponse struct {
	Entries      []model.LeaderboardEntry `json:"entries"`
	UserRank     *int                     `json:"userRank"`
	TotalPlayers int                      `json:"totalPlayers"`
}

// HandleGetLeaderboard handles GET /api/leaderboard?limit=N requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	n := h.deps.DefaultLeaderboardLimit()
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if parsed > h.deps.MaxLeaderboardLimit() {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		n = parsed
	}

	ctx := r.Context()
	entries, err := h.deps.Leaderboard(ctx, n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	resp := leaderboardResponse{Entries: entries}
	if entries == nil {
		resp.Entries = []model.LeaderboardEntry{}
	}

	if rank, ok, err := h.deps.UserRank(ctx, requestUser(r)); err == nil && ok {
		resp.UserRank = &rank
	}
	if total, err := h.deps.TotalPlayers(ctx); err == nil {
		resp.TotalPlayers = total
	}

	writeJSON(w, http.StatusOK, resp)
}
