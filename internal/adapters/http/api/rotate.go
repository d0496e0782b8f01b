// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/crypticsea/dungeond/internal/rotation"
)

// RotationDependencies defines the interface for rotation triggers.
type RotationDependencies interface {
	TriggerRotation(ctx context.Context) (rotation.Outcome, error)
}

// RotationHandler handles scheduled and moderator rotation triggers.
type RotationHandler struct {
	deps RotationDependencies
}

// NewRotationHandler creates a new rotation handler.
func NewRotationHandler(deps RotationDependencies) *RotationHandler {
	return &RotationHandler{deps: deps}
}

// rotatedDungeon is the nested summary of a freshly rotated dungeon.
type rotatedDungeon struct {
	Monster  string `json:"monster"`
	Modifier string `json:"modifier"`
	Author   string `json:"author"`
}

// rotationResponse mirrors the outcome of a rotation pass. Success is
// false only when no submission post is configured; an empty submission
// pool is a successful no-op.
type rotationResponse struct {
	Success bool            `json:"success"`
	Dungeon *rotatedDungeon `json:"dungeon,omitempty"`
	Message string          `json:"message,omitempty"`
}

// HandleScheduledRotate handles POST /internal/scheduler/rotate. The
// route exists for the hosting platform's scheduler; it carries no
// moderator gate because the host never forwards it to players.
func (h *RotationHandler) HandleScheduledRotate(w http.ResponseWriter, r *http.Request) {
	const op = "api.scheduler_rotate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	h.rotate(w, r, op)
}

// HandleTriggerRotation handles POST /admin/trigger-rotation requests.
func (h *RotationHandler) HandleTriggerRotation(w http.ResponseWriter, r *http.Request) {
	const op = "api.trigger_rotation"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if !isModerator(r) {
		writeError(w, http.StatusForbidden, "forbidden", NewKind(op, ErrForbidden))
		return
	}
	h.rotate(w, r, op)
}

func (h *RotationHandler) rotate(w http.ResponseWriter, r *http.Request, op string) {
	out, err := h.deps.TriggerRotation(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	var resp rotationResponse
	switch out.Status {
	case rotation.StatusRotated:
		resp = rotationResponse{
			Success: true,
			Dungeon: &rotatedDungeon{
				Monster:  out.Monster,
				Modifier: out.Modifier,
				Author:   out.Author,
			},
		}
	case rotation.StatusNoSubmissions:
		resp = rotationResponse{Success: true, Message: "no valid submissions; keeping current dungeon"}
	default:
		resp = rotationResponse{Success: false, Message: "no submission post configured"}
	}
	writeJSON(w, http.StatusOK, resp)
}
