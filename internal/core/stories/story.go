package stories

import "time"

// Story is a short user post with no relationship fields
type Story struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	Image     string    `json:"image,omitempty"`
}

// CreateStoryRequest is the input for CreateStory
type CreateStoryRequest struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
	Image  string `json:"image,omitempty"`
}
