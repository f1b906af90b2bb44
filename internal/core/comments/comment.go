package comments

import (
	"slices"
	"time"
)

// Comment is a top-level comment on a post. It exclusively owns its replies.
type Comment struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	PostID    string    `json:"postId"`
	Text      string    `json:"text"`
	Likes     []string  `json:"likes"`
	// Replies is ordered by creation; entries are addressed by ID, never by index
	Replies []Reply `json:"replies"`
}

// Reply is a value nested inside a Comment. Its ID is unique within the comment.
type Reply struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	Likes     []string  `json:"likes"`
}

// FindReply locates a reply by ID
func (c *Comment) FindReply(replyID string) (*Reply, bool) {
	i := slices.IndexFunc(c.Replies, func(r Reply) bool { return r.ID == replyID })
	if i < 0 {
		return nil, false
	}
	return &c.Replies[i], true
}

// LikedBy reports whether userID is in the comment's likes set
func (c *Comment) LikedBy(userID string) bool {
	return slices.Contains(c.Likes, userID)
}

// LikedBy reports whether userID is in the reply's likes set
func (r *Reply) LikedBy(userID string) bool {
	return slices.Contains(r.Likes, userID)
}
