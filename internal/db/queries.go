package db

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/hpungsan/blueprint/internal/errors"
)

// PutRecord upserts value under key. A second write to the same key replaces
// the first; there is no versioning.
func PutRecord(ctx context.Context, db *sql.DB, key, value string, updatedAt int64) error {
	query := `
		INSERT INTO records (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(ctx, query, key, value, updatedAt); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetRecord returns the value stored under key and whether it exists.
func GetRecord(ctx context.Context, db *sql.DB, key string) (string, bool, error) {
	var value string
	err := db.QueryRowContext(ctx, "SELECT value FROM records WHERE key = ?", key).Scan(&value)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.NewInternal(err)
	}
	return value, true, nil
}
