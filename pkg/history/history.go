// Package history persists the command lines executed by the shell.
//
// Entries are keyed by ULID so they sort by creation time across sessions.
// The only backend is SQLite; a path of ":memory:" keeps the history for
// the life of the process.
package history

import (
	"context"
	"time"
)

// Store records and lists executed command lines.
//
// All operations accept context.Context for timeout/cancellation support.
type Store interface {
	// Record stores e. ID and Timestamp are filled in when empty.
	Record(ctx context.Context, e *Entry) error

	// List returns matching entries, oldest first
	List(ctx context.Context, opts *ListOptions) ([]*Entry, error)

	// Cleanup deletes entries older than cutoff
	Cleanup(ctx context.Context, cutoff time.Time) (int64, error)

	// Close the store
	Close() error
}

// Entry is one executed command line.
type Entry struct {
	ID        string    // ULID
	SessionID string    // Session identifier (UUID)
	Source    string    // "tty" or the script path
	Family    string    // Chip family the line ran against
	Line      string    // Command line as typed
	Status    int       // Driver status code
	Timestamp time.Time // When the line was executed
}

// ListOptions filters List.
type ListOptions struct {
	Limit     int    // Most recent entries to return; 0 means all
	SessionID string // Restrict to one session when set
}
