package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"Murmur/internal/core/apperr"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint failure
const uniqueViolation = "23505"

// requireAffected maps a zero-row DELETE/UPDATE to a typed not-found error
func requireAffected(result sql.Result, entity apperr.Entity, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return apperr.NotFound(entity, id)
	}
	return nil
}

// nonNil keeps empty array columns serializing as [] rather than null
func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// conditionalUpdate runs an UPDATE whose WHERE clause encodes the set precondition.
// Zero affected rows means either no change or no such row; an existence check on
// table tells them apart.
func conditionalUpdate(ctx context.Context, db *sql.DB, query, table string, entity apperr.Entity, id string, args ...any) (bool, error) {
	result, err := db.ExecContext(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return false, fmt.Errorf("failed to update %s: %w", table, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check update result: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	var exists bool
	check := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)`, table)
	if err := db.QueryRowContext(ctx, check, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s existence: %w", table, err)
	}
	if !exists {
		return false, apperr.NotFound(entity, id)
	}
	return false, nil
}
