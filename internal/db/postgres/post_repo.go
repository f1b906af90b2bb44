package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"Murmur/internal/core/apperr"
	"Murmur/internal/core/posts"
)

const postColumns = `id, user_id, caption, media, likes, comments, created_at, updated_at`

type postgresPostRepo struct {
	db *sql.DB
}

// NewPostRepository creates a new PostgreSQL post repository
func NewPostRepository(db *sql.DB) posts.Repository {
	return &postgresPostRepo{db: db}
}

func scanPost(row interface{ Scan(...any) error }) (*posts.Post, error) {
	p := &posts.Post{}
	err := row.Scan(&p.ID, &p.UserID, &p.Caption,
		pq.Array(&p.Media), pq.Array(&p.Likes), pq.Array(&p.Comments),
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Media = nonNil(p.Media)
	p.Likes = nonNil(p.Likes)
	p.Comments = nonNil(p.Comments)
	return p, nil
}

// Create inserts a new post
func (r *postgresPostRepo) Create(ctx context.Context, post *posts.Post) error {
	query := `
		INSERT INTO posts (id, user_id, caption, media, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		post.ID, post.UserID, post.Caption, pq.Array(nonNil(post.Media)), post.CreatedAt, post.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return &apperr.AlreadyExistsError{Entity: apperr.EntityPost, Field: "id", Value: post.ID}
		}
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// GetByID retrieves a post by ID
func (r *postgresPostRepo) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	p, err := scanPost(r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound(apperr.EntityPost, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return p, nil
}

func (r *postgresPostRepo) ListByOwner(ctx context.Context, userID string) ([]*posts.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by owner: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	result := []*posts.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	return result, nil
}

func (r *postgresPostRepo) ListIDsByOwner(ctx context.Context, userID string) ([]string, error) {
	var ids pq.StringArray
	query := `SELECT COALESCE(array_agg(id ORDER BY created_at), '{}') FROM posts WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&ids); err != nil {
		return nil, fmt.Errorf("failed to list post IDs by owner: %w", err)
	}
	return nonNil(ids), nil
}

func (r *postgresPostRepo) UpdateCaption(ctx context.Context, id, caption string) (*posts.Post, error) {
	query := `
		UPDATE posts SET caption = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + postColumns

	p, err := scanPost(r.db.QueryRowContext(ctx, query, id, caption))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound(apperr.EntityPost, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update caption: %w", err)
	}
	return p, nil
}

func (r *postgresPostRepo) AddLike(ctx context.Context, postID, userID string) (bool, error) {
	return r.addToArray(ctx, "likes", postID, userID)
}

func (r *postgresPostRepo) RemoveLike(ctx context.Context, postID, userID string) (bool, error) {
	return r.removeFromArray(ctx, "likes", postID, userID)
}

func (r *postgresPostRepo) AppendComment(ctx context.Context, postID, commentID string) error {
	_, err := r.addToArray(ctx, "comments", postID, commentID)
	return err
}

func (r *postgresPostRepo) RemoveComment(ctx context.Context, postID, commentID string) (bool, error) {
	return r.removeFromArray(ctx, "comments", postID, commentID)
}

// addToArray and removeFromArray take column from the fixed callers above only
func (r *postgresPostRepo) addToArray(ctx context.Context, column, postID, member string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE posts SET %[1]s = array_append(%[1]s, $2), updated_at = NOW()
		WHERE id = $1 AND NOT (%[1]s @> ARRAY[$2]::text[])`, column)
	return conditionalUpdate(ctx, r.db, query, "posts", apperr.EntityPost, postID, member)
}

func (r *postgresPostRepo) removeFromArray(ctx context.Context, column, postID, member string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE posts SET %[1]s = array_remove(%[1]s, $2), updated_at = NOW()
		WHERE id = $1 AND %[1]s @> ARRAY[$2]::text[]`, column)
	return conditionalUpdate(ctx, r.db, query, "posts", apperr.EntityPost, postID, member)
}

// RemoveCommentRefs filters the comment lists in place, keeping the order of survivors
func (r *postgresPostRepo) RemoveCommentRefs(ctx context.Context, commentIDs []string) (int64, error) {
	if len(commentIDs) == 0 {
		return 0, nil
	}

	query := `
		UPDATE posts p
		SET comments = ARRAY(
				SELECT t.c FROM unnest(p.comments) WITH ORDINALITY AS t(c, ord)
				WHERE NOT (t.c = ANY($1))
				ORDER BY t.ord
			),
			updated_at = NOW()
		WHERE p.comments && $1::text[]`

	result, err := r.db.ExecContext(ctx, query, pq.Array(commentIDs))
	if err != nil {
		return 0, fmt.Errorf("failed to remove comment references: %w", err)
	}
	return result.RowsAffected()
}

func (r *postgresPostRepo) RemoveLikeEverywhere(ctx context.Context, userID string) (int64, error) {
	query := `
		UPDATE posts SET likes = array_remove(likes, $1), updated_at = NOW()
		WHERE likes @> ARRAY[$1]::text[]`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove post likes: %w", err)
	}
	return result.RowsAffected()
}

func (r *postgresPostRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return requireAffected(result, apperr.EntityPost, id)
}

func (r *postgresPostRepo) DeleteByOwner(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete posts by owner: %w", err)
	}
	return result.RowsAffected()
}
