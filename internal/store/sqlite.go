// internal/store/sqlite.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS requests (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    conn_id TEXT NOT NULL,
    remote_addr TEXT NOT NULL,
    method TEXT NOT NULL,
    path TEXT NOT NULL,
    status INTEGER NOT NULL,
    duration_us INTEGER NOT NULL,
    served_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS requests_served_at ON requests(served_at);
`

// SQLiteStore is the access log. Every worker writes to it, so it keeps a
// single connection and lets database/sql serialize the inserts.
type SQLiteStore struct {
	db *sql.DB

	mu     sync.RWMutex
	closed bool
}

func NewSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open access log %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create access log schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Record inserts e. A zero ServedAt is stamped with the current time.
func (s *SQLiteStore) Record(ctx context.Context, e Entry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	if e.ServedAt.IsZero() {
		e.ServedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO requests (conn_id, remote_addr, method, path, status, duration_us, served_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ConnID, e.RemoteAddr, e.Method, e.Path, e.Status,
		e.Duration.Microseconds(), e.ServedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("record request: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conn_id, remote_addr, method, path, status, duration_us, served_at
		 FROM requests ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			durationUS int64
			servedAt   int64
		)
		if err := rows.Scan(&e.ID, &e.ConnID, &e.RemoteAddr, &e.Method, &e.Path, &e.Status, &durationUS, &servedAt); err != nil {
			return nil, err
		}
		e.Duration = time.Duration(durationUS) * time.Microsecond
		e.ServedAt = time.Unix(0, servedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of recorded requests.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}

	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM requests").Scan(&n)
	return n, err
}
