package post

import (
	"context"
	"net/http"

	"Murmur/internal/api/handlers"
	"Murmur/internal/core/apperr"
	"Murmur/internal/core/posts"

	"github.com/go-chi/chi/v5"
)

var (
	createPostSchema = handlers.MustSchema(`{
		"type": "object",
		"properties": {
			"caption": {"type": "string"},
			"media": {"type": "array", "items": {"type": "string"}}
		},
		"additionalProperties": false
	}`)

	updatePostSchema = handlers.MustSchema(`{
		"type": "object",
		"properties": {
			"caption": {"type": "string"}
		},
		"required": ["caption"],
		"additionalProperties": false
	}`)
)

// Handler serves post endpoints
type Handler struct {
	service posts.Service
}

// NewHandler creates a new post handler
func NewHandler(service posts.Service) *Handler {
	return &Handler{service: service}
}

// CreatePostBody is the request body for creating a post.
// The owner is always the authenticated caller.
type CreatePostBody struct {
	Caption string   `json:"caption"`
	Media   []string `json:"media,omitempty"`
}

// UpdatePostBody carries the new caption
type UpdatePostBody struct {
	Caption string `json:"caption"`
}

// HandleCreate handles POST /api/posts
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.RequireUser(w, r)
	if !ok {
		return
	}

	var body CreatePostBody
	if !handlers.DecodeValid(w, r, createPostSchema, &body) {
		return
	}

	post, err := h.service.CreatePost(r.Context(), posts.CreatePostRequest{
		UserID:  userID,
		Caption: body.Caption,
		Media:   body.Media,
	})
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusCreated, post)
}

// HandleGet handles GET /api/posts/{postID}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPost(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, post)
}

// HandleListByUser handles GET /api/users/{userID}/posts
func (h *Handler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListByUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []*posts.Post{}
	}
	handlers.WriteJSON(w, http.StatusOK, list)
}

// HandleUpdate handles PUT /api/posts/{postID} (owner only)
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	postID, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	var body UpdatePostBody
	if !handlers.DecodeValid(w, r, updatePostSchema, &body) {
		return
	}

	post, err := h.service.UpdatePost(r.Context(), postID, body.Caption)
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, post)
}

// HandleDelete handles DELETE /api/posts/{postID} (owner only)
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	postID, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	if err := h.service.DeletePost(r.Context(), postID); err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleLike handles POST /api/posts/{postID}/like
func (h *Handler) HandleLike(w http.ResponseWriter, r *http.Request) {
	h.handleToggle(w, r, h.service.LikePost)
}

// HandleDislike handles POST /api/posts/{postID}/dislike
func (h *Handler) HandleDislike(w http.ResponseWriter, r *http.Request) {
	h.handleToggle(w, r, h.service.DislikePost)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request,
	toggle func(ctx context.Context, postID, userID string) (*posts.Post, error),
) {
	userID, ok := handlers.RequireUser(w, r)
	if !ok {
		return
	}

	post, err := toggle(r.Context(), chi.URLParam(r, "postID"), userID)
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, post)
}

// requireOwner loads the post and allows the request only for its owner
func (h *Handler) requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := handlers.RequireUser(w, r)
	if !ok {
		return "", false
	}

	postID := chi.URLParam(r, "postID")
	post, err := h.service.GetPost(r.Context(), postID)
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return "", false
	}
	if post.UserID != userID {
		handlers.HandleServiceError(w, r, &apperr.NotAuthorError{
			Entity: apperr.EntityPost,
			ID:     postID,
			UserID: userID,
		})
		return "", false
	}
	return postID, true
}
