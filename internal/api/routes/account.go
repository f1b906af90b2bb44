package routes

import (
	"time"

	"Murmur/internal/api/handlers/account"
	"Murmur/internal/api/middleware"
	"Murmur/internal/core/users"

	"github.com/go-chi/chi/v5"
)

// RegisterAccountRoutes registers registration, login and session endpoints
func RegisterAccountRoutes(r chi.Router, service users.Service, tokens account.TokenIssuer, secureCookies bool, authMiddleware *middleware.AuthMiddleware) {
	h := account.NewHandler(service, tokens, secureCookies)

	// Credential endpoints get a tighter per-IP budget than the global limiter
	credentialLimiter := middleware.NewRateLimiter(10, time.Minute)

	r.With(credentialLimiter.Middleware).Post("/api/auth/register", h.HandleRegister)
	r.With(credentialLimiter.Middleware).Post("/api/auth/login", h.HandleLogin)
	r.Get("/api/auth/logout", h.HandleLogout)
	r.With(authMiddleware.RequireAuth).Get("/api/auth/me", h.HandleMe)
}
