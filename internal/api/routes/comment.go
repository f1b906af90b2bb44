package routes

import (
	"Murmur/internal/api/handlers/comments"
	"Murmur/internal/api/middleware"
	commentsCore "Murmur/internal/core/comments"

	"github.com/go-chi/chi/v5"
)

// RegisterCommentRoutes registers comment and reply endpoints.
// All write operations require authentication.
func RegisterCommentRoutes(r chi.Router, service commentsCore.Service, authMiddleware *middleware.AuthMiddleware) {
	h := comments.NewHandler(service)

	r.Get("/api/posts/{postID}/comments", h.HandleListByPost)
	r.Get("/api/comments/{commentID}", h.HandleGet)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)

		r.Post("/api/posts/{postID}/comments", h.HandleCreate)
		r.Put("/api/comments/{commentID}", h.HandleUpdate)
		r.Delete("/api/comments/{commentID}", h.HandleDelete)
		r.Post("/api/comments/{commentID}/like", h.HandleLike)
		r.Post("/api/comments/{commentID}/dislike", h.HandleDislike)

		r.Post("/api/comments/{commentID}/replies", h.HandleCreateReply)
		r.Put("/api/comments/{commentID}/replies/{replyID}", h.HandleUpdateReply)
		r.Delete("/api/comments/{commentID}/replies/{replyID}", h.HandleDeleteReply)
		r.Post("/api/comments/{commentID}/replies/{replyID}/like", h.HandleLikeReply)
		r.Post("/api/comments/{commentID}/replies/{replyID}/dislike", h.HandleDislikeReply)
	})
}
