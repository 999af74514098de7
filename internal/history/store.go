// Package history records applied background transitions in SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"daynight-wallpaper/internal/clock"
)

// ErrNotFound is returned when no transition has been recorded.
var ErrNotFound = errors.New("no transitions recorded")

const dbFileName = "history.db"

// Transition is one applied phase change.
type Transition struct {
	ID    string
	From  clock.Phase
	To    clock.Phase
	Image string
	At    time.Time
}

// Store persists transitions.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database in dataDir. Pass ":memory:"
// for an in-memory database.
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, dbFileName)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS transitions (
		id         TEXT PRIMARY KEY,
		from_phase INTEGER NOT NULL,
		to_phase   INTEGER NOT NULL,
		image      TEXT NOT NULL,
		applied_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_transitions_applied_at ON transitions(applied_at);
	`)
	return err
}

// Record stores a transition. It satisfies background.Recorder.
func (s *Store) Record(from, to clock.Phase, image string, at time.Time) error {
	_, err := s.Add(context.Background(), Transition{From: from, To: to, Image: image, At: at})
	return err
}

// Add inserts t, assigning an ID when empty, and returns the stored record.
func (s *Store) Add(ctx context.Context, t Transition) (Transition, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.At.IsZero() {
		t.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transitions (id, from_phase, to_phase, image, applied_at) VALUES (?, ?, ?, ?, ?)`,
		t.ID, int(t.From), int(t.To), t.Image, t.At.UnixNano(),
	)
	if err != nil {
		return Transition{}, fmt.Errorf("inserting transition: %w", err)
	}
	return t, nil
}

// Recent returns up to limit transitions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Transition, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, from_phase, to_phase, image, applied_at FROM transitions ORDER BY applied_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying transitions: %w", err)
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		t, err := scanTransition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Last returns the most recent transition or ErrNotFound.
func (s *Store) Last(ctx context.Context) (Transition, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, from_phase, to_phase, image, applied_at FROM transitions ORDER BY applied_at DESC LIMIT 1`,
	)
	t, err := scanTransition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Transition{}, ErrNotFound
	}
	return t, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransition(sc scanner) (Transition, error) {
	var (
		t        Transition
		from, to int
		nanos    int64
	)
	if err := sc.Scan(&t.ID, &from, &to, &t.Image, &nanos); err != nil {
		return Transition{}, err
	}
	t.From, t.To = clock.Phase(from), clock.Phase(to)
	t.At = time.Unix(0, nanos)
	return t, nil
}
