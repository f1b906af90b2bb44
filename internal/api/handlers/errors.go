package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"Murmur/internal/api/middleware"
	"Murmur/internal/core/apperr"
	"Murmur/internal/core/cascade"
)

// WriteError writes a standardized JSON error response
func WriteError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   errorType,
		"message": message,
	}); err != nil {
		slog.Warn("failed to encode error response", slog.String("error", err.Error()))
	}
}

// WriteJSON writes v as the JSON response body
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", slog.String("error", err.Error()))
	}
}

// HandleServiceError maps domain errors to HTTP responses.
// Unknown errors are logged and reported as 500 without detail.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var stepErr *cascade.StepError

	switch {
	case errors.Is(err, apperr.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NotFound", err.Error())
	case errors.Is(err, apperr.ErrValidation):
		WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
	case errors.Is(err, apperr.ErrSelfReference):
		WriteError(w, http.StatusBadRequest, "SelfReference", err.Error())
	case errors.Is(err, apperr.ErrAlreadyExists):
		WriteError(w, http.StatusConflict, "AlreadyExists", err.Error())
	case errors.Is(err, apperr.ErrAlreadyBlocked):
		WriteError(w, http.StatusConflict, "AlreadyBlocked", err.Error())
	case errors.Is(err, apperr.ErrNotFollowing):
		WriteError(w, http.StatusConflict, "NotFollowing", err.Error())
	case errors.Is(err, apperr.ErrNotLiked):
		WriteError(w, http.StatusConflict, "NotLiked", err.Error())
	case errors.Is(err, apperr.ErrNotBlocked):
		WriteError(w, http.StatusConflict, "NotBlocked", err.Error())
	case errors.Is(err, apperr.ErrBlocked):
		WriteError(w, http.StatusForbidden, "Blocked", err.Error())
	case errors.Is(err, apperr.ErrNotAuthor):
		WriteError(w, http.StatusForbidden, "NotAuthorized", err.Error())
	case errors.As(err, &stepErr):
		slog.Error("user deletion interrupted",
			slog.String("user", stepErr.UserID),
			slog.String("step", stepErr.Step.String()),
			slog.String("error", stepErr.Err.Error()))
		WriteError(w, http.StatusInternalServerError, "DeletionIncomplete",
			"Account deletion did not finish; retry to complete it")
	default:
		slog.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		WriteError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
	}
}

// RequireUser returns the authenticated user ID, writing a 401 when there is none
func RequireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return "", false
	}
	return userID, true
}
