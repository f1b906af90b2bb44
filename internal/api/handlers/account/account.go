package account

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"Murmur/internal/api/handlers"
	"Murmur/internal/api/middleware"
	"Murmur/internal/core/users"
)

var (
	registerSchema = handlers.MustSchema(`{
		"type": "object",
		"properties": {
			"username": {"type": "string"},
			"email": {"type": "string"},
			"password": {"type": "string"},
			"fullName": {"type": "string"}
		},
		"required": ["username", "email", "password"],
		"additionalProperties": false
	}`)

	loginSchema = handlers.MustSchema(`{
		"type": "object",
		"properties": {
			"login": {"type": "string"},
			"password": {"type": "string"}
		},
		"required": ["login", "password"],
		"additionalProperties": false
	}`)
)

// TokenIssuer mints session tokens for authenticated users
type TokenIssuer interface {
	Issue(userID, username string) (string, error)
	TTL() time.Duration
}

// Handler serves registration, login, logout and the current-user lookup
type Handler struct {
	users         users.Service
	tokens        TokenIssuer
	secureCookies bool
}

// NewHandler creates a new account handler.
// secureCookies marks the session cookie Secure; enable it behind TLS.
func NewHandler(userService users.Service, tokens TokenIssuer, secureCookies bool) *Handler {
	return &Handler{
		users:         userService,
		tokens:        tokens,
		secureCookies: secureCookies,
	}
}

// LoginRequest accepts a username or an email as Login
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// SessionResponse is returned by login
type SessionResponse struct {
	User  *users.User `json:"user"`
	Token string      `json:"token"`
}

// HandleRegister handles POST /api/auth/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req users.RegisterRequest
	if !handlers.DecodeValid(w, r, registerSchema, &req) {
		return
	}

	user, err := h.users.Register(r.Context(), req)
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}

	handlers.WriteJSON(w, http.StatusCreated, user)
}

// HandleLogin handles POST /api/auth/login.
// The token is returned in the body and set as the session cookie.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !handlers.DecodeValid(w, r, loginSchema, &req) {
		return
	}
	if req.Login == "" || req.Password == "" {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "login and password are required")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Login, req.Password)
	if errors.Is(err, users.ErrInvalidCredentials) {
		handlers.WriteError(w, http.StatusUnauthorized, "InvalidCredentials", err.Error())
		return
	}
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		slog.Error("failed to issue session token",
			slog.String("user", user.ID),
			slog.String("error", err.Error()))
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "Failed to create session")
		return
	}

	http.SetCookie(w, h.sessionCookie(token, int(h.tokens.TTL().Seconds())))
	handlers.WriteJSON(w, http.StatusOK, SessionResponse{User: user, Token: token})
}

// HandleLogout handles GET /api/auth/logout by expiring the session cookie.
// Tokens are stateless, so a bearer token stays valid until it expires.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	handlers.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleMe handles GET /api/auth/me
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.RequireUser(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
