package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"Murmur/internal/core/apperr"
	"Murmur/internal/core/comments"
)

// foreignKeyViolation is the SQLSTATE for a missing referenced row
const foreignKeyViolation = "23503"

const commentColumns = `id, post_id, user_id, text, likes, created_at, updated_at`

const replyColumns = `comment_id, id, user_id, text, likes, created_at, updated_at`

type postgresCommentRepo struct {
	db *sql.DB
}

// NewCommentRepository creates a new PostgreSQL comment repository.
// Replies live in comment_replies and are only reachable through their comment.
func NewCommentRepository(db *sql.DB) comments.Repository {
	return &postgresCommentRepo{db: db}
}

func scanComment(row interface{ Scan(...any) error }) (*comments.Comment, error) {
	c := &comments.Comment{}
	err := row.Scan(&c.ID, &c.PostID, &c.UserID, &c.Text, pq.Array(&c.Likes), &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Likes = nonNil(c.Likes)
	c.Replies = []comments.Reply{}
	return c, nil
}

// Create inserts a comment. Replies present on the value are ignored; use AddReply.
func (r *postgresCommentRepo) Create(ctx context.Context, comment *comments.Comment) error {
	query := `
		INSERT INTO comments (id, post_id, user_id, text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.PostID, comment.UserID, comment.Text, comment.CreatedAt, comment.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return &apperr.AlreadyExistsError{Entity: apperr.EntityComment, Field: "id", Value: comment.ID}
		}
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// GetByID loads the comment and its replies in insertion order
func (r *postgresCommentRepo) GetByID(ctx context.Context, id string) (*comments.Comment, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound(apperr.EntityComment, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	if err := r.attachReplies(ctx, []*comments.Comment{c}); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *postgresCommentRepo) ListByPost(ctx context.Context, postID string) ([]*comments.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE post_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments by post: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	result := []*comments.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		result = append(result, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	if err := r.attachReplies(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// attachReplies loads the replies of every given comment in one query
func (r *postgresCommentRepo) attachReplies(ctx context.Context, list []*comments.Comment) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[string]*comments.Comment, len(list))
	ids := make([]string, 0, len(list))
	for _, c := range list {
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}

	query := `SELECT ` + replyColumns + ` FROM comment_replies WHERE comment_id = ANY($1) ORDER BY comment_id, position`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load replies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var commentID string
		var reply comments.Reply
		if err := rows.Scan(&commentID, &reply.ID, &reply.UserID, &reply.Text,
			pq.Array(&reply.Likes), &reply.CreatedAt, &reply.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan reply: %w", err)
		}
		reply.Likes = nonNil(reply.Likes)
		if c, ok := byID[commentID]; ok {
			c.Replies = append(c.Replies, reply)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating replies: %w", err)
	}
	return nil
}

func (r *postgresCommentRepo) ListIDsByAuthor(ctx context.Context, userID string) ([]string, error) {
	var ids pq.StringArray
	query := `SELECT COALESCE(array_agg(id ORDER BY created_at), '{}') FROM comments WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&ids); err != nil {
		return nil, fmt.Errorf("failed to list comment IDs by author: %w", err)
	}
	return nonNil(ids), nil
}

func (r *postgresCommentRepo) UpdateText(ctx context.Context, id, text string) (*comments.Comment, error) {
	query := `
		UPDATE comments SET text = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + commentColumns

	c, err := scanComment(r.db.QueryRowContext(ctx, query, id, text))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound(apperr.EntityComment, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	if err := r.attachReplies(ctx, []*comments.Comment{c}); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *postgresCommentRepo) AddLike(ctx context.Context, commentID, userID string) (bool, error) {
	query := `
		UPDATE comments SET likes = array_append(likes, $2), updated_at = NOW()
		WHERE id = $1 AND NOT (likes @> ARRAY[$2]::text[])`
	return conditionalUpdate(ctx, r.db, query, "comments", apperr.EntityComment, commentID, userID)
}

func (r *postgresCommentRepo) RemoveLike(ctx context.Context, commentID, userID string) (bool, error) {
	query := `
		UPDATE comments SET likes = array_remove(likes, $2), updated_at = NOW()
		WHERE id = $1 AND likes @> ARRAY[$2]::text[]`
	return conditionalUpdate(ctx, r.db, query, "comments", apperr.EntityComment, commentID, userID)
}

// Delete removes the comment; its replies go with it via ON DELETE CASCADE
func (r *postgresCommentRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return requireAffected(result, apperr.EntityComment, id)
}

func (r *postgresCommentRepo) DeleteByPosts(ctx context.Context, postIDs []string) (int64, error) {
	if len(postIDs) == 0 {
		return 0, nil
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE post_id = ANY($1)`, pq.Array(postIDs))
	if err != nil {
		return 0, fmt.Errorf("failed to delete comments by posts: %w", err)
	}
	return result.RowsAffected()
}

func (r *postgresCommentRepo) DeleteByAuthor(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete comments by author: %w", err)
	}
	return result.RowsAffected()
}

func (r *postgresCommentRepo) RemoveLikeEverywhere(ctx context.Context, userID string) (int64, error) {
	var total int64
	for _, table := range []string{"comments", "comment_replies"} {
		query := fmt.Sprintf(`
			UPDATE %s SET likes = array_remove(likes, $1), updated_at = NOW()
			WHERE likes @> ARRAY[$1]::text[]`, table)
		result, err := r.db.ExecContext(ctx, query, userID)
		if err != nil {
			return total, fmt.Errorf("failed to remove likes from %s: %w", table, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (r *postgresCommentRepo) AddReply(ctx context.Context, commentID string, reply *comments.Reply) error {
	query := `
		INSERT INTO comment_replies (comment_id, id, user_id, text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		commentID, reply.ID, reply.UserID, reply.Text, reply.CreatedAt, reply.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case foreignKeyViolation:
				return apperr.NotFound(apperr.EntityComment, commentID)
			case uniqueViolation:
				return &apperr.AlreadyExistsError{Entity: apperr.EntityReply, Field: "id", Value: reply.ID}
			}
		}
		return fmt.Errorf("failed to insert reply: %w", err)
	}
	return nil
}

func (r *postgresCommentRepo) UpdateReplyText(ctx context.Context, commentID, replyID, text string) error {
	query := `
		UPDATE comment_replies SET text = $3, updated_at = NOW()
		WHERE comment_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, commentID, replyID, text)
	if err != nil {
		return fmt.Errorf("failed to update reply: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return r.missingReply(ctx, commentID, replyID)
	}
	return nil
}

func (r *postgresCommentRepo) RemoveReply(ctx context.Context, commentID, replyID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM comment_replies WHERE comment_id = $1 AND id = $2`, commentID, replyID)
	if err != nil {
		return false, fmt.Errorf("failed to delete reply: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check delete result: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	exists, err := r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM comments WHERE id = $1)`, commentID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, apperr.NotFound(apperr.EntityComment, commentID)
	}
	return false, nil
}

func (r *postgresCommentRepo) AddReplyLike(ctx context.Context, commentID, replyID, userID string) (bool, error) {
	query := `
		UPDATE comment_replies SET likes = array_append(likes, $3), updated_at = NOW()
		WHERE comment_id = $1 AND id = $2 AND NOT (likes @> ARRAY[$3]::text[])`
	return r.replyLikeUpdate(ctx, query, commentID, replyID, userID)
}

func (r *postgresCommentRepo) RemoveReplyLike(ctx context.Context, commentID, replyID, userID string) (bool, error) {
	query := `
		UPDATE comment_replies SET likes = array_remove(likes, $3), updated_at = NOW()
		WHERE comment_id = $1 AND id = $2 AND likes @> ARRAY[$3]::text[]`
	return r.replyLikeUpdate(ctx, query, commentID, replyID, userID)
}

func (r *postgresCommentRepo) replyLikeUpdate(ctx context.Context, query, commentID, replyID, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, query, commentID, replyID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to update reply likes: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check update result: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	exists, err := r.exists(ctx,
		`SELECT EXISTS(SELECT 1 FROM comment_replies WHERE comment_id = $1 AND id = $2)`, commentID, replyID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, r.missingReply(ctx, commentID, replyID)
	}
	return false, nil
}

func (r *postgresCommentRepo) RemoveRepliesByAuthor(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comment_replies WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete replies by author: %w", err)
	}
	return result.RowsAffected()
}

// missingReply reports whichever of the comment or the reply is absent
func (r *postgresCommentRepo) missingReply(ctx context.Context, commentID, replyID string) error {
	exists, err := r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM comments WHERE id = $1)`, commentID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound(apperr.EntityComment, commentID)
	}
	return apperr.NotFound(apperr.EntityReply, replyID)
}

func (r *postgresCommentRepo) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return exists, nil
}
