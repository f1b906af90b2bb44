package routes

import (
	"Murmur/internal/api/handlers/post"
	"Murmur/internal/api/middleware"
	"Murmur/internal/core/posts"

	"github.com/go-chi/chi/v5"
)

// RegisterPostRoutes registers post endpoints
func RegisterPostRoutes(r chi.Router, service posts.Service, authMiddleware *middleware.AuthMiddleware) {
	h := post.NewHandler(service)

	r.Get("/api/users/{userID}/posts", h.HandleListByUser)
	r.Get("/api/posts/{postID}", h.HandleGet)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)

		r.Post("/api/posts", h.HandleCreate)
		r.Put("/api/posts/{postID}", h.HandleUpdate)
		r.Delete("/api/posts/{postID}", h.HandleDelete)
		r.Post("/api/posts/{postID}/like", h.HandleLike)
		r.Post("/api/posts/{postID}/dislike", h.HandleDislike)
	})
}
