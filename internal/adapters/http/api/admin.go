// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// AdminDependencies defines the interface for moderator operations.
type AdminDependencies interface {
	SubmissionPost(ctx context.Context) (string, bool, error)
	SetSubmissionPost(ctx context.Context, postID string) error
	ClearToday(ctx context.Context) error
}

// AdminHandler handles moderator configuration and data requests.
type AdminHandler struct {
	deps AdminDependencies
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(deps AdminDependencies) *AdminHandler {
	return &AdminHandler{deps: deps}
}

// submissionPostResponse mirrors GET /admin/submission-post. PostID is
// null, not empty, while rotation is unconfigured.
type submissionPostResponse struct {
	PostID     *string `json:"postId"`
	Configured bool    `json:"configured"`
}

// submissionPostRequest mirrors POST /admin/submission-post.
type submissionPostRequest struct {
	PostID string `json:"postId"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// HandleSubmissionPost handles GET and POST /admin/submission-post.
// Reading the pointer is open; changing it requires moderator status.
func (h *AdminHandler) HandleSubmissionPost(w http.ResponseWriter, r *http.Request) {
	const op = "api.submission_post"
	switch r.Method {
	case http.MethodGet:
		postID, configured, err := h.deps.SubmissionPost(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		resp := submissionPostResponse{Configured: configured}
		if configured {
			resp.PostID = &postID
		}
		writeJSON(w, http.StatusOK, resp)

	case http.MethodPost:
		if !isModerator(r) {
			writeError(w, http.StatusForbidden, "forbidden", NewKind(op, ErrForbidden))
			return
		}
		var req submissionPostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if strings.TrimSpace(req.PostID) == "" {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if err := h.deps.SetSubmissionPost(r.Context(), req.PostID); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "submission post updated"})

	default:
		http.NotFound(w, r)
	}
}

// HandleClearData handles DELETE /admin/data requests, wiping today's
// dungeon, leaderboard and ghosts.
func (h *AdminHandler) HandleClearData(w http.ResponseWriter, r *http.Request) {
	const op = "api.clear_data"
	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}
	if !isModerator(r) {
		writeError(w, http.StatusForbidden, "forbidden", NewKind(op, ErrForbidden))
		return
	}
	if err := h.deps.ClearToday(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "today's data cleared"})
}
