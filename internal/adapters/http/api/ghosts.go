// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/crypticsea/dungeond/internal/domain/model"
)

// GhostsDependencies defines the interface for ghost reads.
type GhostsDependencies interface {
	Ghosts(ctx context.Context) ([]model.GhostMarker, error)
}

// GhostsHandler handles ghost marker requests.
type GhostsHandler struct {
	deps GhostsDependencies
}

// NewGhostsHandler creates a new ghosts handler.
func NewGhostsHandler(deps GhostsDependencies) *GhostsHandler {
	return &GhostsHandler{deps: deps}
}

type ghostsResponse struct {
	Ghosts []model.GhostMarker `json:"ghosts"`
}

// HandleGetGhosts handles GET /api/ghosts requests.
func (h *GhostsHandler) HandleGetGhosts(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_ghosts"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	ghosts, err := h.deps.Ghosts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if ghosts == nil {
		ghosts = []model.GhostMarker{}
	}
	writeJSON(w, http.StatusOK, ghostsResponse{Ghosts: ghosts})
}
