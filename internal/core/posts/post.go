package posts

import (
	"slices"
	"time"
)

// Post is a user-authored post. UserID and Media are fixed at creation.
type Post struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Caption   string    `json:"caption"`
	Media     []string  `json:"media"`
	Likes     []string  `json:"likes"`
	// Comments holds comment IDs in creation order
	Comments []string `json:"comments"`
}

// LikedBy reports whether userID is in the likes set
func (p *Post) LikedBy(userID string) bool {
	return slices.Contains(p.Likes, userID)
}

// CreatePostRequest is the input for CreatePost
type CreatePostRequest struct {
	UserID  string   `json:"userId"`
	Caption string   `json:"caption"`
	Media   []string `json:"media,omitempty"`
}
