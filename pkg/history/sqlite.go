package history

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/oklog/ulid/v2"

	"github.com/akam1o/mcli/pkg/errors"
	"github.com/akam1o/mcli/pkg/logger"
)

// sqliteStore implements Store using SQLite.
type sqliteStore struct {
	db     *sql.DB
	dbPath string

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy

	closeOnce sync.Once
}

// NewSQLiteStore opens (creating when needed) the history database at
// dbPath and brings its schema up to date.
func NewSQLiteStore(dbPath string, log *logger.Logger) (Store, error) {
	if dbPath == "" {
		return nil, errors.HistoryError("history path is empty", nil)
	}
	if log == nil {
		log = logger.Discard("history")
	}

	memory := dbPath == ":memory:"
	if !memory {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, errors.HistoryError("failed to create history directory", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_txlock=immediate")
	if err != nil {
		return nil, errors.HistoryError("failed to open history database", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.HistoryError(fmt.Sprintf("failed to set pragma %q", pragma), err)
		}
	}

	// Every connection to ":memory:" is a separate database
	if memory {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
	}
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	m := &migrator{db: db, dbPath: dbPath, log: log}
	if err := m.apply(); err != nil {
		db.Close()
		return nil, errors.HistoryError("failed to apply history migrations", err)
	}

	return &sqliteStore{
		db:      db,
		dbPath:  dbPath,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// newID returns a ULID that sorts after every ID this store issued before.
func (s *sqliteStore) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// Record implements Store.
func (s *sqliteStore) Record(ctx context.Context, e *Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if e.ID == "" {
		e.ID = s.newID(e.Timestamp)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO command_history (id, session_id, source, family, line, status, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		e.SessionID,
		e.Source,
		e.Family,
		e.Line,
		e.Status,
		e.Timestamp.UTC(),
	)
	if err != nil {
		return errors.HistoryError("failed to record command", err)
	}
	return nil
}

// List implements Store.
func (s *sqliteStore) List(ctx context.Context, opts *ListOptions) ([]*Entry, error) {
	if opts == nil {
		opts = &ListOptions{}
	}

	query := `SELECT id, session_id, source, family, line, status, timestamp FROM command_history`
	var args []interface{}
	if opts.SessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, opts.SessionID)
	}
	query += ` ORDER BY seq DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.HistoryError("failed to list history", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Source, &e.Family, &e.Line, &e.Status, &e.Timestamp); err != nil {
			return nil, errors.HistoryError("failed to scan history entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.HistoryError("failed to iterate history", err)
	}

	// Oldest first
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Cleanup implements Store.
func (s *sqliteStore) Cleanup(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM command_history WHERE timestamp < ?`, cutoff.UTC())
	if err != nil {
		return 0, errors.HistoryError("failed to clean up history", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.HistoryError("failed to get deleted count", err)
	}
	return n, nil
}

// Close closes the database.
// This method is idempotent and safe to call multiple times.
func (s *sqliteStore) Close() error {
	var closeErr error
	s.closeOnce.Do(func() {
		if s.db != nil {
			closeErr = s.db.Close()
		}
	})
	return closeErr
}
