package user

import (
	"context"
	"net/http"

	"Murmur/internal/api/handlers"
	"Murmur/internal/core/apperr"
	"Murmur/internal/core/users"

	"github.com/go-chi/chi/v5"
)

// profileSchema admits only the mutable profile fields
var profileSchema = handlers.MustSchema(`{
	"type": "object",
	"properties": {
		"fullName": {"type": "string"},
		"bio": {"type": "string"},
		"profilePicture": {"type": "string"},
		"coverPicture": {"type": "string"}
	},
	"additionalProperties": false
}`)

// AccountDeleter removes a user and everything that references them
type AccountDeleter interface {
	DeleteUser(ctx context.Context, userID string) error
}

// Handler serves profile reads and self-service account endpoints
type Handler struct {
	users   users.Service
	deleter AccountDeleter
}

// NewHandler creates a new user handler
func NewHandler(userService users.Service, deleter AccountDeleter) *Handler {
	return &Handler{
		users:   userService,
		deleter: deleter,
	}
}

// HandleGet handles GET /api/users/{userID}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, user)
}

// HandleSearch handles GET /api/users/search/{query}
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	found, err := h.users.Search(r.Context(), chi.URLParam(r, "query"))
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}

	views := make([]users.ProfileView, 0, len(found))
	for _, u := range found {
		views = append(views, u.View())
	}
	handlers.WriteJSON(w, http.StatusOK, views)
}

// HandleUpdateProfile handles PUT /api/users/{userID}.
// Only the mutable profile fields are accepted; edge sets cannot be written here.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireSelf(w, r)
	if !ok {
		return
	}

	var input users.UpdateProfileInput
	if !handlers.DecodeValid(w, r, profileSchema, &input) {
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, input)
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, user)
}

// HandleDelete handles DELETE /api/users/{userID}.
// Runs the full deletion cascade; an interrupted cascade is reported as 500 and may be retried.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireSelf(w, r)
	if !ok {
		return
	}

	if err := h.deleter.DeleteUser(r.Context(), userID); err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Account deleted",
	})
}

// requireSelf allows the request only when the caller is the user named in the path
func requireSelf(w http.ResponseWriter, r *http.Request) (string, bool) {
	actorID, ok := handlers.RequireUser(w, r)
	if !ok {
		return "", false
	}

	userID := chi.URLParam(r, "userID")
	if userID != actorID {
		handlers.HandleServiceError(w, r, &apperr.NotAuthorError{
			Entity: apperr.EntityUser,
			ID:     userID,
			UserID: actorID,
		})
		return "", false
	}
	return userID, true
}
