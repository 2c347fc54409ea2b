package recordstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/blueprint/internal/db"
)

// SQLite is the durable Store backed by the records table.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*SQLite)(nil)

// NewSQLite wraps an initialized database (see db.Init).
func NewSQLite(database *sql.DB) *SQLite {
	return &SQLite{db: database, now: time.Now}
}

// Get implements Store.
func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	return db.GetRecord(ctx, s.db, key)
}

// Set implements Store.
func (s *SQLite) Set(ctx context.Context, key, value string) error {
	return db.PutRecord(ctx, s.db, key, value, s.now().UnixNano())
}
