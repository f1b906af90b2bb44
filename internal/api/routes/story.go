package routes

import (
	"Murmur/internal/api/handlers/story"
	"Murmur/internal/api/middleware"
	"Murmur/internal/core/stories"

	"github.com/go-chi/chi/v5"
)

// RegisterStoryRoutes registers story endpoints
func RegisterStoryRoutes(r chi.Router, service stories.Service, authMiddleware *middleware.AuthMiddleware) {
	h := story.NewHandler(service)

	r.Get("/api/users/{userID}/stories", h.HandleListByUser)
	r.With(authMiddleware.RequireAuth).Post("/api/stories", h.HandleCreate)
	r.With(authMiddleware.RequireAuth).Delete("/api/stories/{storyID}", h.HandleDelete)
}
