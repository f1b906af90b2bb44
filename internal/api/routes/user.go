package routes

import (
	"Murmur/internal/api/handlers/user"
	"Murmur/internal/api/middleware"
	"Murmur/internal/core/users"

	"github.com/go-chi/chi/v5"
)

// RegisterUserRoutes registers profile, account deletion and relationship endpoints.
// Write operations act on behalf of the authenticated caller.
func RegisterUserRoutes(r chi.Router, service users.Service, relationships users.RelationshipService, deleter user.AccountDeleter, authMiddleware *middleware.AuthMiddleware) {
	profiles := user.NewHandler(service, deleter)
	edges := user.NewRelationshipHandler(relationships)

	r.Get("/api/users/search/{query}", profiles.HandleSearch)
	r.Get("/api/users/{userID}", profiles.HandleGet)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)

		r.Put("/api/users/{userID}", profiles.HandleUpdateProfile)
		r.Delete("/api/users/{userID}", profiles.HandleDelete)

		r.Post("/api/users/{userID}/follow", edges.HandleFollow)
		r.Post("/api/users/{userID}/unfollow", edges.HandleUnfollow)
		r.Post("/api/users/{userID}/block", edges.HandleBlock)
		r.Post("/api/users/{userID}/unblock", edges.HandleUnblock)
		r.Get("/api/users/{userID}/blocked", edges.HandleListBlocked)
	})
}
