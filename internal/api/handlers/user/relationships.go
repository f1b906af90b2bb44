package user

import (
	"context"
	"net/http"

	"Murmur/internal/api/handlers"
	"Murmur/internal/core/users"

	"github.com/go-chi/chi/v5"
)

// RelationshipHandler serves follow and block endpoints.
// The actor is always the authenticated caller; the path names the target.
type RelationshipHandler struct {
	relationships users.RelationshipService
}

// NewRelationshipHandler creates a new relationship handler
func NewRelationshipHandler(relationships users.RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{relationships: relationships}
}

type edgeAction func(ctx context.Context, actorID, targetID string) error

func (h *RelationshipHandler) handleEdge(w http.ResponseWriter, r *http.Request, action edgeAction) {
	actorID, ok := handlers.RequireUser(w, r)
	if !ok {
		return
	}

	if err := action(r.Context(), actorID, chi.URLParam(r, "userID")); err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleFollow handles POST /api/users/{userID}/follow
func (h *RelationshipHandler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	h.handleEdge(w, r, h.relationships.Follow)
}

// HandleUnfollow handles POST /api/users/{userID}/unfollow
func (h *RelationshipHandler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	h.handleEdge(w, r, h.relationships.Unfollow)
}

// HandleBlock handles POST /api/users/{userID}/block
func (h *RelationshipHandler) HandleBlock(w http.ResponseWriter, r *http.Request) {
	h.handleEdge(w, r, h.relationships.Block)
}

// HandleUnblock handles POST /api/users/{userID}/unblock
func (h *RelationshipHandler) HandleUnblock(w http.ResponseWriter, r *http.Request) {
	h.handleEdge(w, r, h.relationships.Unblock)
}

// HandleListBlocked handles GET /api/users/{userID}/blocked (self only)
func (h *RelationshipHandler) HandleListBlocked(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireSelf(w, r)
	if !ok {
		return
	}

	blocked, err := h.relationships.ListBlocked(r.Context(), userID)
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	if blocked == nil {
		blocked = []users.ProfileView{}
	}
	handlers.WriteJSON(w, http.StatusOK, blocked)
}
