// Package logbook is the run-history store behind the local host: a SQLite
// file of entries written under the session's current logbook level.
package logbook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/modellerbridge/internal/host"

	_ "modernc.org/sqlite"
)

var ErrClosed = errors.New("logbook: closed")

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	level      TEXT NOT NULL,
	message    TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_session ON entries(session_id, id);
`

// Entry is one stored logbook line.
type Entry struct {
	ID        int64
	SessionID string
	Level     host.LogbookLevel
	Message   string
	CreatedAt time.Time
}

// Store appends entries for one logbook session. Each Open starts a new
// session id; earlier sessions stay in the file until it is removed.
type Store struct {
	path      string
	sessionID string

	mu    sync.Mutex
	db    *sql.DB
	level host.LogbookLevel
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("logbook: create directory %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("logbook: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("logbook: create schema: %w", err)
	}

	s := &Store{
		path:      path,
		sessionID: uuid.NewString(),
		db:        db,
		level:     host.LogbookStandard,
	}
	log.Debug().Str("path", path).Str("session", s.sessionID).Msg("logbook.Open ready")
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) SessionID() string {
	return s.sessionID
}

func (s *Store) Level() host.LogbookLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

func (s *Store) SetLevel(level host.LogbookLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = level
}

// Write stores message at level unless the current level filters it out.
// It reports whether the entry was kept.
func (s *Store) Write(ctx context.Context, level host.LogbookLevel, message string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return false, ErrClosed
	}
	if s.level == host.LogbookNone || level > s.level {
		return false, nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (session_id, level, message, created_at) VALUES (?, ?, ?, ?)`,
		s.sessionID, level.String(), message, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("logbook: write: %w", err)
	}
	return true, nil
}

// Entries lists stored entries in write order. An empty sessionID lists
// every session.
func (s *Store) Entries(ctx context.Context, sessionID string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	query := `SELECT id, session_id, level, message, created_at FROM entries`
	var args []any
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("logbook: list: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var level, created string
		if err := rows.Scan(&e.ID, &e.SessionID, &level, &e.Message, &created); err != nil {
			return nil, fmt.Errorf("logbook: scan: %w", err)
		}
		e.Level, _ = host.ParseLogbookLevel(level)
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Remove closes the store and deletes the logbook file.
func (s *Store) Remove() error {
	if err := s.Close(); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("logbook: remove %s: %w", s.path, err)
	}
	return nil
}
