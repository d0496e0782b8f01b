// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/crypticsea/dungeond/internal/domain/model"
)

// ScoreDependencies defines the interface for score submission.
type ScoreDependencies interface {
	SubmitScore(ctx context.Context, username string, score int, survived bool, ghost *model.GhostMarker) (int, error)
}

// ScoreHandler handles score submission requests.
type ScoreHandler struct {
	deps ScoreDependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps ScoreDependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

// deathPosition is the optional grid cell the player died in.
type deathPosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// scoreRequest mirrors the write shape of POST /api/submit-score.
type scoreRequest struct {
	Score         *int           `json:"score"`
	Survived      bool           `json:"survived"`
	DeathPosition *deathPosition `json:"deathPosition,omitempty"`
}

func (s scoreRequest) validate() error {
	if s.Score == nil {
		return errors.New("missing score")
	}
	if *s.Score < 0 {
		return errors.New("score must be non-negative")
	}
	if s.DeathPosition != nil {
		g := model.GhostMarker{X: s.DeathPosition.X, Y: s.DeathPosition.Y}
		if !g.InBounds() {
			return fmt.Errorf("deathPosition out of bounds: (%d, %d)", g.X, g.Y)
		}
	}
	return nil
}

// scoreResponse is returned for every submit-score outcome. Rank is
// null unless an entry was recorded.
type scoreResponse struct {
	Success bool   `json:"success"`
	Rank    *int   `json:"rank"`
	Message string `json:"message"`
}

// HandlePostScore handles POST /api/submit-score requests. Validation
// runs before any write; a bad request mutates nothing.
func (h *ScoreHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, scoreResponse{Message: "malformed request body"})
		return
	}
	if err := req.validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, scoreResponse{Message: err.Error()})
		return
	}

	var ghost *model.GhostMarker
	if req.DeathPosition != nil {
		ghost = &model.GhostMarker{X: req.DeathPosition.X, Y: req.DeathPosition.Y}
	}

	rank, err := h.deps.SubmitScore(r.Context(), requestUser(r), *req.Score, req.Survived, ghost)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, scoreResponse{Message: "failed to record score"})
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{
		Success: true,
		Rank:    &rank,
		Message: fmt.Sprintf("score recorded at rank %d", rank),
	})
}
