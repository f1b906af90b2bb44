package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"Murmur/internal/core/apperr"
	"Murmur/internal/core/stories"
)

type postgresStoryRepo struct {
	db *sql.DB
}

// NewStoryRepository creates a new PostgreSQL story repository
func NewStoryRepository(db *sql.DB) stories.Repository {
	return &postgresStoryRepo{db: db}
}

func (r *postgresStoryRepo) Create(ctx context.Context, story *stories.Story) error {
	query := `INSERT INTO stories (id, user_id, text, image, created_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, story.ID, story.UserID, story.Text, story.Image, story.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return &apperr.AlreadyExistsError{Entity: apperr.EntityStory, Field: "id", Value: story.ID}
		}
		return fmt.Errorf("failed to insert story: %w", err)
	}
	return nil
}

func (r *postgresStoryRepo) GetByID(ctx context.Context, id string) (*stories.Story, error) {
	s := &stories.Story{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, text, image, created_at FROM stories WHERE id = $1`, id).
		Scan(&s.ID, &s.UserID, &s.Text, &s.Image, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound(apperr.EntityStory, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get story: %w", err)
	}
	return s, nil
}

// ListByOwner returns newest first
func (r *postgresStoryRepo) ListByOwner(ctx context.Context, userID string) ([]*stories.Story, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, text, image, created_at
		FROM stories
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := []*stories.Story{}
	for rows.Next() {
		s := &stories.Story{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.Text, &s.Image, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan story: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stories: %w", err)
	}
	return result, nil
}

func (r *postgresStoryRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
	}
	return requireAffected(result, apperr.EntityStory, id)
}

func (r *postgresStoryRepo) DeleteByOwner(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stories WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stories by owner: %w", err)
	}
	return result.RowsAffected()
}
