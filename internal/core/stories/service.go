package stories

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"Murmur/internal/core/apperr"
	"Murmur/internal/core/textlimit"
	"Murmur/internal/core/users"
)

type storyService struct {
	repo     Repository
	userRepo users.Repository
	logger   *slog.Logger
}

// NewStoryService creates a new story service
func NewStoryService(repo Repository, userRepo users.Repository, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &storyService{repo: repo, userRepo: userRepo, logger: logger}
}

func (s *storyService) CreateStory(ctx context.Context, req CreateStoryRequest) (*Story, error) {
	text, err := textlimit.Required("text", req.Text, textlimit.MaxStoryGraphemes)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, req.UserID); err != nil {
		return nil, err
	}

	story := &Story{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Text:      text,
		Image:     strings.TrimSpace(req.Image),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, story); err != nil {
		return nil, err
	}

	s.logger.Info("story created", slog.String("story", story.ID), slog.String("owner", story.UserID))
	return story, nil
}

func (s *storyService) GetStory(ctx context.Context, id string) (*Story, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *storyService) ListByUser(ctx context.Context, userID string) ([]*Story, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByOwner(ctx, userID)
}

func (s *storyService) DeleteStory(ctx context.Context, id, actingUserID string) error {
	story, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if story.UserID != actingUserID {
		return &apperr.NotAuthorError{Entity: apperr.EntityStory, ID: id, UserID: actingUserID}
	}
	return s.repo.Delete(ctx, id)
}
