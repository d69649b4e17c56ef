package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists run records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at path, creating the schema if it
// does not exist. Use ":memory:" for a transient database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Each pooled connection gets its own ":memory:" database, so the
	// pool must stay at one connection.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		outcome TEXT NOT NULL,
		value TEXT NOT NULL DEFAULT '',
		diagnostic TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save inserts the record, replacing any existing record with the same ID.
func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		return errors.New("runstore: record has empty ID")
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, source, outcome, value, diagnostic, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Source, rec.Outcome, rec.Value, rec.Diagnostic, rec.DurationMs, created.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns the record with the given ID, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, outcome, value, diagnostic, duration_ms, created_at
		 FROM runs WHERE id = ?`, id,
	)

	var rec Record
	var createdAt int64
	err := row.Scan(&rec.ID, &rec.Source, &rec.Outcome, &rec.Value,
		&rec.Diagnostic, &rec.DurationMs, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	return &rec, nil
}

// List returns records newest first, most recently inserted first among
// records created at the same instant. A limit <= 0 returns all records.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, outcome, value, diagnostic, duration_ms, created_at
		 FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var rec Record
		var createdAt int64
		err := rows.Scan(&rec.ID, &rec.Source, &rec.Outcome, &rec.Value,
			&rec.Diagnostic, &rec.DurationMs, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		rec.CreatedAt = time.Unix(0, createdAt).UTC()
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
