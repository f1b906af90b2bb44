package posts

import "context"

// Service defines post operations and post like toggles
type Service interface {
	CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error)
	GetPost(ctx context.Context, id string) (*Post, error)
	// ListByUser returns a user's posts oldest first
	ListByUser(ctx context.Context, userID string) ([]*Post, error)
	// UpdatePost replaces the caption; media is immutable after creation
	UpdatePost(ctx context.Context, id, caption string) (*Post, error)
	// DeletePost unlinks the post from its owner, deletes its comments, then deletes it
	DeletePost(ctx context.Context, id string) error
	// LikePost fails with *apperr.AlreadyLikedError on a second like
	LikePost(ctx context.Context, postID, userID string) (*Post, error)
	// DislikePost fails with *apperr.NotLikedError when the post is not liked
	DislikePost(ctx context.Context, postID, userID string) (*Post, error)
}

// Repository defines the data access interface for posts
type Repository interface {
	Create(ctx context.Context, post *Post) error

	// GetByID returns *apperr.NotFoundError when absent
	GetByID(ctx context.Context, id string) (*Post, error)

	// ListByOwner returns posts of userID ordered by creation time
	ListByOwner(ctx context.Context, userID string) ([]*Post, error)

	// ListIDsByOwner returns only the IDs of posts owned by userID
	ListIDsByOwner(ctx context.Context, userID string) ([]string, error)

	UpdateCaption(ctx context.Context, id, caption string) (*Post, error)

	// AddLike and RemoveLike are atomic set primitives on the likes field.
	// The boolean reports whether membership changed.
	AddLike(ctx context.Context, postID, userID string) (bool, error)
	RemoveLike(ctx context.Context, postID, userID string) (bool, error)

	// AppendComment appends commentID to the comments list if absent
	AppendComment(ctx context.Context, postID, commentID string) error
	// RemoveComment drops commentID from the comments list if present
	RemoveComment(ctx context.Context, postID, commentID string) (bool, error)

	// RemoveCommentRefs drops every given comment ID from every post's comments list.
	// Returns the number of posts changed. Idempotent.
	RemoveCommentRefs(ctx context.Context, commentIDs []string) (int64, error)

	// RemoveLikeEverywhere drops userID from the likes set of every post. Idempotent.
	RemoveLikeEverywhere(ctx context.Context, userID string) (int64, error)

	// Delete returns *apperr.NotFoundError when absent
	Delete(ctx context.Context, id string) error

	// DeleteByOwner deletes every post of userID and returns the count. Idempotent.
	DeleteByOwner(ctx context.Context, userID string) (int64, error)
}

// CommentPurger deletes the comments that belong to a set of posts.
// Implemented by the comment store; declared here to keep posts free of a comments import.
type CommentPurger interface {
	DeleteByPosts(ctx context.Context, postIDs []string) (int64, error)
}
