package posts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"Murmur/internal/core/apperr"
	"Murmur/internal/core/textlimit"
	"Murmur/internal/core/users"
)

// MaxMediaPerPost bounds the media references attached at creation
const MaxMediaPerPost = 5

type postService struct {
	repo     Repository
	userRepo users.Repository
	comments CommentPurger
	logger   *slog.Logger
}

// NewPostService creates a new post service
func NewPostService(repo Repository, userRepo users.Repository, comments CommentPurger, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &postService{
		repo:     repo,
		userRepo: userRepo,
		comments: comments,
		logger:   logger,
	}
}

// CreatePost inserts the post, then appends its ID to the owner's posts index.
// If indexing fails the post is deleted again so no unreferenced post survives.
func (s *postService) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	caption, err := textlimit.Optional("caption", req.Caption, textlimit.MaxCaptionGraphemes)
	if err != nil {
		return nil, err
	}
	media, err := validateMedia(req.Media)
	if err != nil {
		return nil, err
	}
	if caption == "" && len(media) == 0 {
		return nil, apperr.Invalid("caption", "a post needs a caption or media")
	}

	if _, err := s.userRepo.GetByID(ctx, req.UserID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	post := &Post{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Caption:   caption,
		Media:     media,
		Likes:     []string{},
		Comments:  []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	if _, err := s.userRepo.AddToSet(ctx, req.UserID, users.SetPosts, post.ID); err != nil {
		if delErr := s.repo.Delete(context.WithoutCancel(ctx), post.ID); delErr != nil {
			s.logger.Error("failed to roll back unindexed post",
				slog.String("post", post.ID),
				slog.String("error", delErr.Error()))
		}
		return nil, fmt.Errorf("failed to index post on owner: %w", err)
	}

	s.logger.Info("post created", slog.String("post", post.ID), slog.String("owner", post.UserID))
	return post, nil
}

func (s *postService) GetPost(ctx context.Context, id string) (*Post, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *postService) ListByUser(ctx context.Context, userID string) ([]*Post, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByOwner(ctx, userID)
}

func (s *postService) UpdatePost(ctx context.Context, id, caption string) (*Post, error) {
	caption, err := textlimit.Optional("caption", caption, textlimit.MaxCaptionGraphemes)
	if err != nil {
		return nil, err
	}
	if caption == "" {
		// Media never changes after creation, so this check cannot go stale
		post, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(post.Media) == 0 {
			return nil, apperr.Invalid("caption", "a post needs a caption or media")
		}
	}
	return s.repo.UpdateCaption(ctx, id, caption)
}

// DeletePost runs owner unlink -> comment purge -> post delete.
// Each step is idempotent so a failed delete can simply be retried.
func (s *postService) DeletePost(ctx context.Context, id string) error {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// The owner may already be gone mid-way through a user deletion
	if _, err := s.userRepo.RemoveFromSet(ctx, post.UserID, users.SetPosts, id); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("failed to unlink post from owner: %w", err)
	}

	n, err := s.comments.DeleteByPosts(ctx, []string{id})
	if err != nil {
		return fmt.Errorf("failed to delete comments of post: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.logger.Info("post deleted",
		slog.String("post", id),
		slog.String("owner", post.UserID),
		slog.Int64("comments_deleted", n))
	return nil
}

func (s *postService) LikePost(ctx context.Context, postID, userID string) (*Post, error) {
	if err := s.checkPair(ctx, postID, userID); err != nil {
		return nil, err
	}

	added, err := s.repo.AddLike(ctx, postID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to like post: %w", err)
	}
	if !added {
		return nil, &apperr.AlreadyLikedError{Entity: apperr.EntityPost, ID: postID, UserID: userID}
	}
	return s.repo.GetByID(ctx, postID)
}

func (s *postService) DislikePost(ctx context.Context, postID, userID string) (*Post, error) {
	if err := s.checkPair(ctx, postID, userID); err != nil {
		return nil, err
	}

	removed, err := s.repo.RemoveLike(ctx, postID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to dislike post: %w", err)
	}
	if !removed {
		return nil, &apperr.NotLikedError{Entity: apperr.EntityPost, ID: postID, UserID: userID}
	}
	return s.repo.GetByID(ctx, postID)
}

// checkPair verifies both the post and the user exist
func (s *postService) checkPair(ctx context.Context, postID, userID string) error {
	if _, err := s.repo.GetByID(ctx, postID); err != nil {
		return err
	}
	_, err := s.userRepo.GetByID(ctx, userID)
	return err
}

func validateMedia(media []string) ([]string, error) {
	if len(media) > MaxMediaPerPost {
		return nil, apperr.Invalid("media", fmt.Sprintf("at most %d items allowed", MaxMediaPerPost))
	}
	out := make([]string, 0, len(media))
	for _, m := range media {
		m = strings.TrimSpace(m)
		if m == "" {
			return nil, apperr.Invalid("media", "references must be non-empty")
		}
		out = append(out, m)
	}
	return out, nil
}
