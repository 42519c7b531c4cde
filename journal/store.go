// Package journal records engine events in a SQLite database. Each run of
// the arena is a session; simulation state itself is never persisted.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/lab1702/shiparena/game"
	"github.com/lab1702/shiparena/journal/migrations"
)

// ErrNoSession is returned when events are appended before StartSession
var ErrNoSession = errors.New("journal session not started")

// Store persists arena events in SQLite.
type Store struct {
	sqlDB *sql.DB

	mu      sync.RWMutex
	session string
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Open opens a SQLite journal and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// StartSession records a new arena session and makes it the target of
// subsequent appends. It returns the session id.
func (s *Store) StartSession(ctx context.Context, arena game.Arena, seed int64) (string, error) {
	id := uuid.NewString()
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO sessions (id, arena_width, arena_height, ticks_per_second, seed, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, arena.Width, arena.Height, arena.TicksPerSecond, seed, toMillis(time.Now()),
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}

	s.mu.Lock()
	s.session = id
	s.mu.Unlock()
	return id, nil
}

// SessionID returns the current session id, or "" before StartSession
func (s *Store) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Emit implements game.EventSink. Failures are logged and never reach the tick.
func (s *Store) Emit(ev game.Event) {
	if err := s.Append(context.Background(), ev); err != nil {
		log.Printf("journal: %v", err)
	}
}

// Append records one event in the current session
func (s *Store) Append(ctx context.Context, ev game.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	session := s.SessionID()
	if session == "" {
		return ErrNoSession
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO events (session_id, tick, kind, ship, target, payload, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session, ev.Tick, ev.Kind, ev.Ship, ev.Target, ev.Payload, toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Recent returns up to limit events of the current session, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]game.Event, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT tick, kind, ship, target, payload FROM events
		 WHERE session_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		s.SessionID(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []game.Event
	for rows.Next() {
		var ev game.Event
		if err := rows.Scan(&ev.Tick, &ev.Kind, &ev.Ship, &ev.Target, &ev.Payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// CountByKind returns how many events of each kind the current session recorded
func (s *Store) CountByKind(ctx context.Context) (map[string]int, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT kind, COUNT(*) FROM events WHERE session_id = ? GROUP BY kind`,
		s.SessionID(),
	)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var (
			kind  string
			count int
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[kind] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}
