package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lib/pq"

	"Murmur/internal/core/apperr"
	"Murmur/internal/core/users"
)

// setColumns maps set fields to their array columns. Column names are only
// ever interpolated into SQL from this map.
var setColumns = map[users.SetField]string{
	users.SetFollowers: "followers",
	users.SetFollowing: "following",
	users.SetBlockList: "block_list",
	users.SetPosts:     "posts",
}

const userColumns = `id, username, email, password_hash, full_name, bio, profile_picture, cover_picture,
	followers, following, block_list, posts, created_at, updated_at`

type postgresUserRepo struct {
	db *sql.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sql.DB) users.Repository {
	return &postgresUserRepo{db: db}
}

func scanUser(row interface{ Scan(...any) error }) (*users.User, error) {
	u := &users.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.Bio,
		&u.ProfilePicture, &u.CoverPicture,
		pq.Array(&u.Followers), pq.Array(&u.Following), pq.Array(&u.BlockList), pq.Array(&u.Posts),
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Followers = nonNil(u.Followers)
	u.Following = nonNil(u.Following)
	u.BlockList = nonNil(u.BlockList)
	u.Posts = nonNil(u.Posts)
	return u, nil
}

// Create inserts a new user into the users table
func (r *postgresUserRepo) Create(ctx context.Context, user *users.User) (*users.User, error) {
	query := `
		INSERT INTO users (id, username, email, password_hash, full_name, bio, profile_picture, cover_picture)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.FullName, user.Bio, user.ProfilePicture, user.CoverPicture))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			switch pqErr.Constraint {
			case "users_username_key":
				return nil, &apperr.AlreadyExistsError{Entity: apperr.EntityUser, Field: "username", Value: user.Username}
			case "users_email_key":
				return nil, &apperr.AlreadyExistsError{Entity: apperr.EntityUser, Field: "email", Value: user.Email}
			default:
				return nil, &apperr.AlreadyExistsError{Entity: apperr.EntityUser, Field: "id", Value: user.ID}
			}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return created, nil
}

// GetByID retrieves a user by ID
func (r *postgresUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound(apperr.EntityUser, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetByIDs retrieves multiple users in one query
func (r *postgresUserRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*users.User, error) {
	if len(ids) == 0 {
		return map[string]*users.User{}, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query users by IDs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	result := make(map[string]*users.User, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		result[u.ID] = u
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return result, nil
}

// GetByLogin matches either the username or the email
func (r *postgresUserRepo) GetByLogin(ctx context.Context, login string) (*users.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $1 LIMIT 1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, login))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound(apperr.EntityUser, login)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by login: %w", err)
	}
	return u, nil
}

func (r *postgresUserRepo) Search(ctx context.Context, query string, limit int) ([]*users.User, error) {
	pattern := "%" + escapeLike(query) + "%"
	sqlQuery := `
		SELECT ` + userColumns + `
		FROM users
		WHERE username ILIKE $1 OR full_name ILIKE $1
		ORDER BY username
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, sqlQuery, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*users.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return result, nil
}

// UpdateProfile sets only the non-nil fields
func (r *postgresUserRepo) UpdateProfile(ctx context.Context, id string, input users.UpdateProfileInput) (*users.User, error) {
	query := `
		UPDATE users
		SET full_name = COALESCE($2, full_name),
			bio = COALESCE($3, bio),
			profile_picture = COALESCE($4, profile_picture),
			cover_picture = COALESCE($5, cover_picture),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id,
		nullString(input.FullName), nullString(input.Bio),
		nullString(input.ProfilePicture), nullString(input.CoverPicture)))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound(apperr.EntityUser, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

// AddToSet appends member unless present. The membership test and the write are one
// statement; a concurrent writer on the same row re-evaluates the WHERE clause after
// the row lock is released, so exactly one of two racing adds reports a change.
func (r *postgresUserRepo) AddToSet(ctx context.Context, id string, field users.SetField, member string) (bool, error) {
	column, ok := setColumns[field]
	if !ok {
		return false, apperr.Invalid("field", string(field))
	}

	query := fmt.Sprintf(`
		UPDATE users
		SET %[1]s = array_append(%[1]s, $2), updated_at = NOW()
		WHERE id = $1 AND NOT (%[1]s @> ARRAY[$2]::text[])`, column)

	return conditionalUpdate(ctx, r.db, query, "users", apperr.EntityUser, id, member)
}

// AddFollowing appends targetID to following when it is neither followed nor blocked.
// Block also writes the actor row, so the two serialize on the row lock.
func (r *postgresUserRepo) AddFollowing(ctx context.Context, actorID, targetID string) (bool, bool, error) {
	query := `
		UPDATE users
		SET following = array_append(following, $2), updated_at = NOW()
		WHERE id = $1
			AND NOT (following @> ARRAY[$2]::text[])
			AND NOT (block_list @> ARRAY[$2]::text[])`

	result, err := r.db.ExecContext(ctx, query, actorID, targetID)
	if err != nil {
		return false, false, fmt.Errorf("failed to add following edge: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, false, fmt.Errorf("failed to check update result: %w", err)
	}
	if n > 0 {
		return true, false, nil
	}

	var blocked bool
	err = r.db.QueryRowContext(ctx,
		`SELECT block_list @> ARRAY[$2]::text[] FROM users WHERE id = $1`, actorID, targetID).Scan(&blocked)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, apperr.NotFound(apperr.EntityUser, actorID)
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to check block list: %w", err)
	}
	return false, blocked, nil
}

// RemoveFromSet removes every occurrence of member
func (r *postgresUserRepo) RemoveFromSet(ctx context.Context, id string, field users.SetField, member string) (bool, error) {
	column, ok := setColumns[field]
	if !ok {
		return false, apperr.Invalid("field", string(field))
	}

	query := fmt.Sprintf(`
		UPDATE users
		SET %[1]s = array_remove(%[1]s, $2), updated_at = NOW()
		WHERE id = $1 AND %[1]s @> ARRAY[$2]::text[]`, column)

	return conditionalUpdate(ctx, r.db, query, "users", apperr.EntityUser, id, member)
}

func (r *postgresUserRepo) RemoveMemberEverywhere(ctx context.Context, field users.SetField, member string) (int64, error) {
	column, ok := setColumns[field]
	if !ok {
		return 0, apperr.Invalid("field", string(field))
	}

	query := fmt.Sprintf(`
		UPDATE users
		SET %[1]s = array_remove(%[1]s, $1), updated_at = NOW()
		WHERE %[1]s @> ARRAY[$1]::text[]`, column)

	result, err := r.db.ExecContext(ctx, query, member)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep %s: %w", column, err)
	}
	return result.RowsAffected()
}

// ReconcileFollowEdges runs under a lock that blocks concurrent user writes so the
// three passes see one consistent graph
func (r *postgresUserRepo) ReconcileFollowEdges(ctx context.Context) (*users.ReconcileReport, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin reconcile transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return nil, fmt.Errorf("failed to lock users: %w", err)
	}

	report := &users.ReconcileReport{}
	const memberExists = `EXISTS (SELECT 1 FROM users x WHERE x.id = t.m)`

	if report.FollowersRemoved, err = pruneSet(ctx, tx, "followers", memberExists); err != nil {
		return nil, err
	}
	if report.FollowingRemoved, err = pruneSet(ctx, tx, "following", memberExists); err != nil {
		return nil, err
	}
	if report.BlockListRemoved, err = pruneSet(ctx, tx, "block_list", memberExists); err != nil {
		return nil, err
	}

	// following is authoritative: mirror each edge into the target's followers
	addMissing := `
		WITH missing AS (
			SELECT t.target AS id, array_agg(u.id ORDER BY u.id) AS add
			FROM users u
			CROSS JOIN LATERAL unnest(u.following) AS t(target)
			JOIN users tu ON tu.id = t.target
			WHERE NOT (tu.followers @> ARRAY[u.id])
			GROUP BY t.target
		), upd AS (
			UPDATE users u
			SET followers = u.followers || m.add, updated_at = NOW()
			FROM missing m
			WHERE u.id = m.id
			RETURNING cardinality(m.add) AS added
		)
		SELECT COALESCE(SUM(added), 0) FROM upd`
	if err := tx.QueryRowContext(ctx, addMissing).Scan(&report.FollowersAdded); err != nil {
		return nil, fmt.Errorf("failed to add missing followers: %w", err)
	}

	stale, err := pruneSet(ctx, tx, "followers",
		`EXISTS (SELECT 1 FROM users x WHERE x.id = t.m AND x.following @> ARRAY[u.id])`)
	if err != nil {
		return nil, err
	}
	report.FollowersRemoved += stale

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reconcile: %w", err)
	}
	return report, nil
}

// pruneSet keeps only the members of column satisfying keep, where keep may refer
// to the member as t.m and the owning row as u. Order is preserved. Returns the
// number of members removed.
func pruneSet(ctx context.Context, tx *sql.Tx, column, keep string) (int64, error) {
	query := fmt.Sprintf(`
		WITH pruned AS (
			SELECT u.id,
				cardinality(u.%[1]s) AS before,
				ARRAY(
					SELECT t.m FROM unnest(u.%[1]s) WITH ORDINALITY AS t(m, ord)
					WHERE %[2]s
					ORDER BY t.ord
				) AS kept
			FROM users u
		), upd AS (
			UPDATE users u
			SET %[1]s = p.kept, updated_at = NOW()
			FROM pruned p
			WHERE u.id = p.id AND cardinality(p.kept) <> p.before
			RETURNING p.before - cardinality(p.kept) AS removed
		)
		SELECT COALESCE(SUM(removed), 0) FROM upd`, column, keep)

	var removed int64
	if err := tx.QueryRowContext(ctx, query).Scan(&removed); err != nil {
		return 0, fmt.Errorf("failed to prune %s: %w", column, err)
	}
	return removed, nil
}

func (r *postgresUserRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireAffected(result, apperr.EntityUser, id)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
