package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pawtrail/pawtrail/internal/api/middleware"
	"github.com/pawtrail/pawtrail/internal/api/response"
	"github.com/pawtrail/pawtrail/internal/user"
)

// SocialHandler handles the follow graph.
type SocialHandler struct {
	users *user.Service
}

// NewSocialHandler creates a new social handler.
func NewSocialHandler(users *user.Service) *SocialHandler {
	return &SocialHandler{users: users}
}

// Follow handles POST /v1/users/{userId}/follow.
func (h *SocialHandler) Follow(w http.ResponseWriter, r *http.Request) {
	followerID := middleware.GetUserID(r.Context())
	followeeID := chi.URLParam(r, "userId")

	err := h.users.Follow(r.Context(), followerID, followeeID)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrSelfFollow):
			response.Conflict(w, r, "cannot follow yourself")
		case errors.Is(err, user.ErrUserNotFound):
			response.NotFound(w, r, "user not found")
		default:
			response.InternalError(w, r, "failed to follow user")
		}
		return
	}

	response.NoContent(w, r)
}

// Unfollow handles DELETE /v1/users/{userId}/follow. Idempotent.
func (h *SocialHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	followerID := middleware.GetUserID(r.Context())
	followeeID := chi.URLParam(r, "userId")

	if err := h.users.Unfollow(r.Context(), followerID, followeeID); err != nil {
		response.InternalError(w, r, "failed to unfollow user")
		return
	}

	response.NoContent(w, r)
}
