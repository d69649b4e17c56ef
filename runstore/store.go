// Package runstore persists the outcome of program runs.
//
// A Record captures one run of one source program: what outcome the
// driver reached, the value or diagnostic it produced, and when it
// happened. Two backends implement the Store interface: an in-memory
// map for tests and short-lived tools, and a SQLite database for the
// run history kept across invocations.
package runstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no run with the given ID exists.
var ErrNotFound = errors.New("runstore: run not found")

// Record is one persisted run of a source program.
type Record struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Outcome    string    `json:"outcome"`
	Value      string    `json:"value,omitempty"`
	Diagnostic string    `json:"diagnostic,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store persists run records.
type Store interface {
	// Save inserts the record, replacing any existing record with the
	// same ID. A zero CreatedAt is filled with the current time.
	Save(ctx context.Context, rec *Record) error

	// Get returns the record with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns records newest first. A limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]*Record, error)

	// Close releases any resources held by the store.
	Close() error
}
