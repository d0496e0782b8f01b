// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/crypticsea/dungeond/internal/domain/model"
)

// DungeonDependencies defines the interface for daily dungeon reads.
type DungeonDependencies interface {
	DailyDungeon(ctx context.Context) (model.DungeonConfig, string)
}

// DungeonHandler handles daily dungeon requests.
type DungeonHandler struct {
	deps DungeonDependencies
}

// NewDungeonHandler creates a new dungeon handler.
func NewDungeonHandler(deps DungeonDependencies) *DungeonHandler {
	return &DungeonHandler{deps: deps}
}

// dungeonResponse mirrors the read shape of GET /api/daily-dungeon.
type dungeonResponse struct {
	Layout      string `json:"layout"`
	Monster     string `json:"monster"`
	Modifier    string `json:"modifier"`
	Date        string `json:"date"`
	SubmittedBy string `json:"submittedBy,omitempty"`
}

// HandleGetDungeon handles GET /api/daily-dungeon requests. It never
// fails: an unreachable backend degrades to the built-in default dungeon.
func (h *DungeonHandler) HandleGetDungeon(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	cfg, date := h.deps.DailyDungeon(r.Context())
	writeJSON(w, http.StatusOK, dungeonResponse{
		Layout:      cfg.Layout,
		Monster:     cfg.Monster,
		Modifier:    cfg.Modifier,
		Date:        date,
		SubmittedBy: cfg.SubmittedBy,
	})
}
