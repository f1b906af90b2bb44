package routes

import (
	"net/http"
	"time"

	"Murmur/internal/api/handlers/account"
	"Murmur/internal/api/handlers/user"
	"Murmur/internal/api/middleware"
	"Murmur/internal/core/comments"
	"Murmur/internal/core/posts"
	"Murmur/internal/core/stories"
	"Murmur/internal/core/users"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps collects the services mounted by NewRouter
type Deps struct {
	Users         users.Service
	Relationships users.RelationshipService
	Posts         posts.Service
	Comments      comments.Service
	Stories       stories.Service
	Deleter       user.AccountDeleter
	Tokens        account.TokenIssuer
	Verifier      middleware.TokenVerifier

	AllowedOrigins     []string
	SecureCookies      bool
	RateLimitPerMinute int
}

// NewRouter builds the HTTP API with its global middleware stack
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authMiddleware := middleware.NewAuthMiddleware(deps.Verifier)

	// Resolve the caller before limiting so authenticated clients are keyed by user ID
	r.Use(authMiddleware.OptionalAuth)
	if deps.RateLimitPerMinute > 0 {
		r.Use(middleware.NewRateLimiter(deps.RateLimitPerMinute, time.Minute).Middleware)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	RegisterAccountRoutes(r, deps.Users, deps.Tokens, deps.SecureCookies, authMiddleware)
	RegisterUserRoutes(r, deps.Users, deps.Relationships, deps.Deleter, authMiddleware)
	RegisterPostRoutes(r, deps.Posts, authMiddleware)
	RegisterCommentRoutes(r, deps.Comments, authMiddleware)
	RegisterStoryRoutes(r, deps.Stories, authMiddleware)

	return r
}
