package comments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"Murmur/internal/core/apperr"
	"Murmur/internal/core/posts"
	"Murmur/internal/core/textlimit"
	"Murmur/internal/core/users"
)

type commentService struct {
	repo     Repository
	postRepo posts.Repository
	userRepo users.Repository
	logger   *slog.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(repo Repository, postRepo posts.Repository, userRepo users.Repository, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &commentService{
		repo:     repo,
		postRepo: postRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

// CreateComment inserts the comment, then appends its ID to the post.
// If the append fails the comment is deleted again.
func (s *commentService) CreateComment(ctx context.Context, postID, userID, text string) (*Comment, error) {
	text, err := textlimit.Required("text", text, textlimit.MaxCommentGraphemes)
	if err != nil {
		return nil, err
	}

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	comment := &Comment{
		ID:        uuid.NewString(),
		UserID:    userID,
		PostID:    postID,
		Text:      text,
		Likes:     []string{},
		Replies:   []Reply{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	if err := s.postRepo.AppendComment(ctx, postID, comment.ID); err != nil {
		if delErr := s.repo.Delete(context.WithoutCancel(ctx), comment.ID); delErr != nil {
			s.logger.Error("failed to roll back unlinked comment",
				slog.String("comment", comment.ID),
				slog.String("error", delErr.Error()))
		}
		return nil, fmt.Errorf("failed to link comment to post: %w", err)
	}

	s.logger.Info("comment created",
		slog.String("comment", comment.ID),
		slog.String("post", postID),
		slog.String("author", userID))
	return comment, nil
}

func (s *commentService) GetComment(ctx context.Context, id string) (*Comment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *commentService) ListByPost(ctx context.Context, postID string) ([]*Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.repo.ListByPost(ctx, postID)
}

func (s *commentService) UpdateComment(ctx context.Context, commentID, actingUserID, text string) (*Comment, error) {
	text, err := textlimit.Required("text", text, textlimit.MaxCommentGraphemes)
	if err != nil {
		return nil, err
	}

	comment, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != actingUserID {
		return nil, &apperr.NotAuthorError{Entity: apperr.EntityComment, ID: commentID, UserID: actingUserID}
	}

	return s.repo.UpdateText(ctx, commentID, text)
}

// DeleteComment unlinks the comment from its post first so a failure never
// leaves the post pointing at a deleted comment.
func (s *commentService) DeleteComment(ctx context.Context, commentID string) error {
	comment, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	if _, err := s.postRepo.RemoveComment(ctx, comment.PostID, commentID); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("failed to unlink comment from post: %w", err)
	}

	if err := s.repo.Delete(ctx, commentID); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	s.logger.Info("comment deleted",
		slog.String("comment", commentID),
		slog.String("post", comment.PostID),
		slog.Int("replies_deleted", len(comment.Replies)))
	return nil
}

func (s *commentService) LikeComment(ctx context.Context, commentID, userID string) (*Comment, error) {
	if err := s.checkCommentAndUser(ctx, commentID, userID); err != nil {
		return nil, err
	}

	added, err := s.repo.AddLike(ctx, commentID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to like comment: %w", err)
	}
	if !added {
		return nil, &apperr.AlreadyLikedError{Entity: apperr.EntityComment, ID: commentID, UserID: userID}
	}
	return s.repo.GetByID(ctx, commentID)
}

func (s *commentService) DislikeComment(ctx context.Context, commentID, userID string) (*Comment, error) {
	if err := s.checkCommentAndUser(ctx, commentID, userID); err != nil {
		return nil, err
	}

	removed, err := s.repo.RemoveLike(ctx, commentID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to dislike comment: %w", err)
	}
	if !removed {
		return nil, &apperr.NotLikedError{Entity: apperr.EntityComment, ID: commentID, UserID: userID}
	}
	return s.repo.GetByID(ctx, commentID)
}

func (s *commentService) CreateReply(ctx context.Context, commentID, userID, text string) (*Reply, error) {
	text, err := textlimit.Required("text", text, textlimit.MaxCommentGraphemes)
	if err != nil {
		return nil, err
	}
	if err := s.checkCommentAndUser(ctx, commentID, userID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reply := &Reply{
		ID:        uuid.NewString(),
		UserID:    userID,
		Text:      text,
		Likes:     []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.AddReply(ctx, commentID, reply); err != nil {
		return nil, err
	}

	s.logger.Info("reply created",
		slog.String("comment", commentID),
		slog.String("reply", reply.ID),
		slog.String("author", userID))
	return reply, nil
}

func (s *commentService) UpdateReply(ctx context.Context, commentID, replyID, actingUserID, text string) (*Comment, error) {
	text, err := textlimit.Required("text", text, textlimit.MaxCommentGraphemes)
	if err != nil {
		return nil, err
	}

	_, reply, err := s.loadReply(ctx, commentID, replyID)
	if err != nil {
		return nil, err
	}
	if reply.UserID != actingUserID {
		return nil, &apperr.NotAuthorError{Entity: apperr.EntityReply, ID: replyID, UserID: actingUserID}
	}

	if err := s.repo.UpdateReplyText(ctx, commentID, replyID, text); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, commentID)
}

// DeleteReply drops the reply whose ID matches; every other reply keeps its place
func (s *commentService) DeleteReply(ctx context.Context, commentID, replyID string) error {
	if _, _, err := s.loadReply(ctx, commentID, replyID); err != nil {
		return err
	}

	removed, err := s.repo.RemoveReply(ctx, commentID, replyID)
	if err != nil {
		return fmt.Errorf("failed to delete reply: %w", err)
	}
	if !removed {
		// Deleted concurrently between the lookup and the removal
		return apperr.NotFound(apperr.EntityReply, replyID)
	}

	s.logger.Info("reply deleted", slog.String("comment", commentID), slog.String("reply", replyID))
	return nil
}

func (s *commentService) LikeReply(ctx context.Context, commentID, replyID, userID string) (*Comment, error) {
	if err := s.checkReplyAndUser(ctx, commentID, replyID, userID); err != nil {
		return nil, err
	}

	added, err := s.repo.AddReplyLike(ctx, commentID, replyID, userID)
	if err != nil {
		return nil, err
	}
	if !added {
		return nil, &apperr.AlreadyLikedError{Entity: apperr.EntityReply, ID: replyID, UserID: userID}
	}
	return s.repo.GetByID(ctx, commentID)
}

func (s *commentService) DislikeReply(ctx context.Context, commentID, replyID, userID string) (*Comment, error) {
	if err := s.checkReplyAndUser(ctx, commentID, replyID, userID); err != nil {
		return nil, err
	}

	removed, err := s.repo.RemoveReplyLike(ctx, commentID, replyID, userID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, &apperr.NotLikedError{Entity: apperr.EntityReply, ID: replyID, UserID: userID}
	}
	return s.repo.GetByID(ctx, commentID)
}

func (s *commentService) loadReply(ctx context.Context, commentID, replyID string) (*Comment, *Reply, error) {
	comment, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		return nil, nil, err
	}
	reply, ok := comment.FindReply(replyID)
	if !ok {
		return nil, nil, apperr.NotFound(apperr.EntityReply, replyID)
	}
	return comment, reply, nil
}

func (s *commentService) checkCommentAndUser(ctx context.Context, commentID, userID string) error {
	if _, err := s.repo.GetByID(ctx, commentID); err != nil {
		return err
	}
	_, err := s.userRepo.GetByID(ctx, userID)
	return err
}

func (s *commentService) checkReplyAndUser(ctx context.Context, commentID, replyID, userID string) error {
	if _, _, err := s.loadReply(ctx, commentID, replyID); err != nil {
		return err
	}
	_, err := s.userRepo.GetByID(ctx, userID)
	return err
}
