package story

import (
	"net/http"

	"Murmur/internal/api/handlers"
	"Murmur/internal/core/stories"

	"github.com/go-chi/chi/v5"
)

var createStorySchema = handlers.MustSchema(`{
	"type": "object",
	"properties": {
		"text": {"type": "string"},
		"image": {"type": "string"}
	},
	"required": ["text"],
	"additionalProperties": false
}`)

// Handler serves story endpoints
type Handler struct {
	service stories.Service
}

// NewHandler creates a new story handler
func NewHandler(service stories.Service) *Handler {
	return &Handler{service: service}
}

// CreateStoryBody is the request body for creating a story
type CreateStoryBody struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
}

// HandleCreate handles POST /api/stories
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.RequireUser(w, r)
	if !ok {
		return
	}

	var body CreateStoryBody
	if !handlers.DecodeValid(w, r, createStorySchema, &body) {
		return
	}

	story, err := h.service.CreateStory(r.Context(), stories.CreateStoryRequest{
		UserID: userID,
		Text:   body.Text,
		Image:  body.Image,
	})
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusCreated, story)
}

// HandleListByUser handles GET /api/users/{userID}/stories
func (h *Handler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListByUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []*stories.Story{}
	}
	handlers.WriteJSON(w, http.StatusOK, list)
}

// HandleDelete handles DELETE /api/stories/{storyID}.
// Ownership is enforced by the service.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.RequireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteStory(r.Context(), chi.URLParam(r, "storyID"), userID); err != nil {
		handlers.HandleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
