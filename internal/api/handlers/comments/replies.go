package comments

import (
	"context"
	"net/http"

	"Murmur/internal/api/handlers"
	"Murmur/internal/core/apperr"
	"Murmur/internal/core/comments"

	"github.com/go-chi/chi/v5"
)

// HandleCreateReply handles POST /api/comments/{commentID}/replies
func (h *Handler) HandleCreateReply(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.RequireUser(w, r)
	if !ok {
		return
	}

	var body TextBody
	if !handlers.DecodeValid(w, r, textSchema, &body) {
		return
	}

	reply, err := h.service.CreateReply(r.Context(), chi.URLParam(r, "commentID"), userID, body.Text)
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusCreated, reply)
}

// HandleUpdateReply handles PUT /api/comments/{commentID}/replies/{replyID}.
// Responds with the parent comment so clients see the reply in place.
func (h *Handler) HandleUpdateReply(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.RequireUser(w, r)
	if !ok {
		return
	}

	var body TextBody
	if !handlers.DecodeValid(w, r, textSchema, &body) {
		return
	}

	comment, err := h.service.UpdateReply(r.Context(),
		chi.URLParam(r, "commentID"), chi.URLParam(r, "replyID"), userID, body.Text)
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, comment)
}

// HandleDeleteReply handles DELETE /api/comments/{commentID}/replies/{replyID} (author only)
func (h *Handler) HandleDeleteReply(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.RequireUser(w, r)
	if !ok {
		return
	}

	commentID := chi.URLParam(r, "commentID")
	replyID := chi.URLParam(r, "replyID")

	comment, err := h.service.GetComment(r.Context(), commentID)
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	reply, found := comment.FindReply(replyID)
	if !found {
		handlers.HandleServiceError(w, r, apperr.NotFound(apperr.EntityReply, replyID))
		return
	}
	if reply.UserID != userID {
		handlers.HandleServiceError(w, r, &apperr.NotAuthorError{
			Entity: apperr.EntityReply,
			ID:     replyID,
			UserID: userID,
		})
		return
	}

	if err := h.service.DeleteReply(r.Context(), commentID, replyID); err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleLikeReply handles POST /api/comments/{commentID}/replies/{replyID}/like
func (h *Handler) HandleLikeReply(w http.ResponseWriter, r *http.Request) {
	h.handleReplyToggle(w, r, h.service.LikeReply)
}

// HandleDislikeReply handles POST /api/comments/{commentID}/replies/{replyID}/dislike
func (h *Handler) HandleDislikeReply(w http.ResponseWriter, r *http.Request) {
	h.handleReplyToggle(w, r, h.service.DislikeReply)
}

func (h *Handler) handleReplyToggle(w http.ResponseWriter, r *http.Request,
	toggle func(ctx context.Context, commentID, replyID, userID string) (*comments.Comment, error),
) {
	userID, ok := handlers.RequireUser(w, r)
	if !ok {
		return
	}

	comment, err := toggle(r.Context(), chi.URLParam(r, "commentID"), chi.URLParam(r, "replyID"), userID)
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, comment)
}
