package comments

import "context"

// Service defines comment, reply and like operations
type Service interface {
	CreateComment(ctx context.Context, postID, userID, text string) (*Comment, error)
	GetComment(ctx context.Context, id string) (*Comment, error)
	// ListByPost returns the comments of a post oldest first
	ListByPost(ctx context.Context, postID string) ([]*Comment, error)
	// UpdateComment replaces the text; only the author may do so
	UpdateComment(ctx context.Context, commentID, actingUserID, text string) (*Comment, error)
	// DeleteComment unlinks the comment from its post, then deletes it with its replies
	DeleteComment(ctx context.Context, commentID string) error
	LikeComment(ctx context.Context, commentID, userID string) (*Comment, error)
	DislikeComment(ctx context.Context, commentID, userID string) (*Comment, error)

	CreateReply(ctx context.Context, commentID, userID, text string) (*Reply, error)
	UpdateReply(ctx context.Context, commentID, replyID, actingUserID, text string) (*Comment, error)
	DeleteReply(ctx context.Context, commentID, replyID string) error
	LikeReply(ctx context.Context, commentID, replyID, userID string) (*Comment, error)
	DislikeReply(ctx context.Context, commentID, replyID, userID string) (*Comment, error)
}

// Repository defines the data access interface for comments and their nested replies.
// Replies are only reachable through their parent comment's ID.
type Repository interface {
	Create(ctx context.Context, comment *Comment) error

	// GetByID loads the comment with its replies in order.
	// Returns *apperr.NotFoundError when absent.
	GetByID(ctx context.Context, id string) (*Comment, error)

	ListByPost(ctx context.Context, postID string) ([]*Comment, error)

	// ListIDsByAuthor returns the IDs of top-level comments written by userID
	ListIDsByAuthor(ctx context.Context, userID string) ([]string, error)

	UpdateText(ctx context.Context, id, text string) (*Comment, error)

	// AddLike and RemoveLike are atomic set primitives on the comment's likes
	AddLike(ctx context.Context, commentID, userID string) (bool, error)
	RemoveLike(ctx context.Context, commentID, userID string) (bool, error)

	// Delete removes the comment and its replies. Returns *apperr.NotFoundError when absent.
	Delete(ctx context.Context, id string) error

	// DeleteByPosts deletes every comment whose parent is one of postIDs. Idempotent.
	DeleteByPosts(ctx context.Context, postIDs []string) (int64, error)

	// DeleteByAuthor deletes every comment written by userID. Idempotent.
	DeleteByAuthor(ctx context.Context, userID string) (int64, error)

	// RemoveLikeEverywhere drops userID from the likes of every comment and every reply.
	// Idempotent.
	RemoveLikeEverywhere(ctx context.Context, userID string) (int64, error)

	// AddReply appends reply to the comment. Returns *apperr.NotFoundError for a missing comment.
	AddReply(ctx context.Context, commentID string, reply *Reply) error

	// UpdateReplyText returns *apperr.NotFoundError when the comment or reply is absent
	UpdateReplyText(ctx context.Context, commentID, replyID, text string) error

	// RemoveReply drops the reply with replyID from the comment. The boolean
	// reports whether a reply was removed.
	RemoveReply(ctx context.Context, commentID, replyID string) (bool, error)

	// AddReplyLike and RemoveReplyLike are atomic set primitives on a reply's likes.
	// Return *apperr.NotFoundError when the reply is absent.
	AddReplyLike(ctx context.Context, commentID, replyID, userID string) (bool, error)
	RemoveReplyLike(ctx context.Context, commentID, replyID, userID string) (bool, error)

	// RemoveRepliesByAuthor drops every reply written by userID from every comment. Idempotent.
	RemoveRepliesByAuthor(ctx context.Context, userID string) (int64, error)
}
