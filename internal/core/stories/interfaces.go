package stories

import "context"

// Service defines story operations
type Service interface {
	CreateStory(ctx context.Context, req CreateStoryRequest) (*Story, error)
	GetStory(ctx context.Context, id string) (*Story, error)
	// ListByUser returns a user's stories newest first
	ListByUser(ctx context.Context, userID string) ([]*Story, error)
	// DeleteStory removes a story; only its owner may do so
	DeleteStory(ctx context.Context, id, actingUserID string) error
}

// Repository defines the data access interface for stories
type Repository interface {
	Create(ctx context.Context, story *Story) error
	// GetByID returns *apperr.NotFoundError when absent
	GetByID(ctx context.Context, id string) (*Story, error)
	ListByOwner(ctx context.Context, userID string) ([]*Story, error)
	// Delete returns *apperr.NotFoundError when absent
	Delete(ctx context.Context, id string) error
	// DeleteByOwner deletes every story of userID. Idempotent.
	DeleteByOwner(ctx context.Context, userID string) (int64, error)
}
