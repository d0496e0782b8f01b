// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/crypticsea/dungeond/internal/domain/model"
	"github.com/crypticsea/dungeond/internal/rotation"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// DailyDungeon returns today's dungeon and its day key.
	DailyDungeon(ctx context.Context) (model.DungeonConfig, string)

	// SubmitScore appends a score event and returns its rank at insertion
	// time. A non-nil ghost records the death location for the caller.
	SubmitScore(ctx context.Context, username string, score int, survived bool, ghost *model.GhostMarker) (int, error)

	// Read operations expose today's leaderboard and ghosts.
	Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
	UserRank(ctx context.Context, username string) (int, bool, error)
	TotalPlayers(ctx context.Context) (int, error)
	Ghosts(ctx context.Context) ([]model.GhostMarker, error)

	// Rotation and moderator operations.
	TriggerRotation(ctx context.Context) (rotation.Outcome, error)
	SubmissionPost(ctx context.Context) (string, bool, error)
	SetSubmissionPost(ctx context.Context, postID string) error
	ClearToday(ctx context.Context) error

	// Limits applied to GET /api/leaderboard?limit.
	DefaultLeaderboardLimit() int
	MaxLeaderboardLimit() int
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	dungeonHandler     *DungeonHandler
	scoreHandler       *ScoreHandler
	leaderboardHandler *LeaderboardHandler
	ghostsHandler      *GhostsHandler
	rotationHandler    *RotationHandler
	adminHandler       *AdminHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		dungeonHandler:     NewDungeonHandler(deps),
		scoreHandler:       NewScoreHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		ghostsHandler:      NewGhostsHandler(deps),
		rotationHandler:    NewRotationHandler(deps),
		adminHandler:       NewAdminHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/daily-dungeon", MetricsMiddleware(s.dungeonHandler.HandleGetDungeon, "daily_dungeon"))
	mux.HandleFunc("/api/submit-score", MetricsMiddleware(s.scoreHandler.HandlePostScore, "submit_score"))
	mux.HandleFunc("/api/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/api/ghosts", MetricsMiddleware(s.ghostsHandler.HandleGetGhosts, "ghosts"))
	mux.HandleFunc("/internal/scheduler/rotate", MetricsMiddleware(s.rotationHandler.HandleScheduledRotate, "scheduler_rotate"))
	mux.HandleFunc("/admin/trigger-rotation", MetricsMiddleware(s.rotationHandler.HandleTriggerRotation, "trigger_rotation"))
	mux.HandleFunc("/admin/submission-post", MetricsMiddleware(s.adminHandler.HandleSubmissionPost, "submission_post"))
	mux.HandleFunc("/admin/data", MetricsMiddleware(s.adminHandler.HandleClearData, "admin_data"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
