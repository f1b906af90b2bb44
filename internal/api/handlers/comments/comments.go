package comments

import (
	"context"
	"net/http"

	"Murmur/internal/api/handlers"
	"Murmur/internal/core/apperr"
	"Murmur/internal/core/comments"

	"github.com/go-chi/chi/v5"
)

// Handler serves comment and reply endpoints
type Handler struct {
	service comments.Service
}

// NewHandler creates a new comment handler
func NewHandler(service comments.Service) *Handler {
	return &Handler{service: service}
}

var textSchema = handlers.MustSchema(`{
	"type": "object",
	"properties": {
		"text": {"type": "string"}
	},
	"required": ["text"],
	"additionalProperties": false
}`)

// TextBody is the request body for creating or editing a comment or reply
type TextBody struct {
	Text string `json:"text"`
}

// HandleListByPost handles GET /api/posts/{postID}/comments
func (h *Handler) HandleListByPost(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListByPost(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []*comments.Comment{}
	}
	handlers.WriteJSON(w, http.StatusOK, list)
}

// HandleCreate handles POST /api/posts/{postID}/comments
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.RequireUser(w, r)
	if !ok {
		return
	}

	var body TextBody
	if !handlers.DecodeValid(w, r, textSchema, &body) {
		return
	}

	comment, err := h.service.CreateComment(r.Context(), chi.URLParam(r, "postID"), userID, body.Text)
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusCreated, comment)
}

// HandleGet handles GET /api/comments/{commentID}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	comment, err := h.service.GetComment(r.Context(), chi.URLParam(r, "commentID"))
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, comment)
}

// HandleUpdate handles PUT /api/comments/{commentID}.
// Authorship is enforced by the service.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.RequireUser(w, r)
	if !ok {
		return
	}

	var body TextBody
	if !handlers.DecodeValid(w, r, textSchema, &body) {
		return
	}

	comment, err := h.service.UpdateComment(r.Context(), chi.URLParam(r, "commentID"), userID, body.Text)
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, comment)
}

// HandleDelete handles DELETE /api/comments/{commentID} (author only)
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.RequireUser(w, r)
	if !ok {
		return
	}

	commentID := chi.URLParam(r, "commentID")
	comment, err := h.service.GetComment(r.Context(), commentID)
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	if comment.UserID != userID {
		handlers.HandleServiceError(w, r, &apperr.NotAuthorError{
			Entity: apperr.EntityComment,
			ID:     commentID,
			UserID: userID,
		})
		return
	}

	if err := h.service.DeleteComment(r.Context(), commentID); err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleLike handles POST /api/comments/{commentID}/like
func (h *Handler) HandleLike(w http.ResponseWriter, r *http.Request) {
	h.handleToggle(w, r, h.service.LikeComment)
}

// HandleDislike handles POST /api/comments/{commentID}/dislike
func (h *Handler) HandleDislike(w http.ResponseWriter, r *http.Request) {
	h.handleToggle(w, r, h.service.DislikeComment)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request,
	toggle func(ctx context.Context, commentID, userID string) (*comments.Comment, error),
) {
	userID, ok := handlers.RequireUser(w, r)
	if !ok {
		return
	}

	comment, err := toggle(r.Context(), chi.URLParam(r, "commentID"), userID)
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, comment)
}
