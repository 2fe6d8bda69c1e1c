// Package history persists completed search runs to a sqlite database so
// earlier result sets can be listed and replayed without rescanning.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/ffind/internal/filelock"
)

// Run is one recorded search execution.
type Run struct {
	ID        string
	Root      string
	Pattern   string
	Workers   int
	Substring bool
	Matches   int64
	Warnings  int64
	StartedAt time.Time
	Duration  time.Duration
}

// Store wraps the history database.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    root        TEXT NOT NULL,
    pattern     TEXT NOT NULL,
    workers     INTEGER NOT NULL,
    substring   INTEGER NOT NULL,
    matches     INTEGER NOT NULL,
    warnings    INTEGER NOT NULL,
    started_at  INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS matches (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    path   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_matches_run ON matches(run_id);
`

// Open opens (creating if necessary) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// SaveRun records a run and its matched paths in one transaction. The
// start time is stored as Unix nanoseconds so listings order correctly
// across sub-second boundaries. Writes
// are serialized against other ffind processes with a sidecar file lock,
// since sqlite handles concurrent writers poorly over some filesystems.
func (s *Store) SaveRun(run Run, paths []string) error {
	if run.ID == "" {
		run.ID = NewRunID()
	}

	return filelock.WithLock(s.path, func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		_, err = tx.Exec(
			`INSERT INTO runs(id, root, pattern, workers, substring, matches, warnings, started_at, duration_ms)
			 VALUES(?,?,?,?,?,?,?,?,?)`,
			run.ID, run.Root, run.Pattern, run.Workers, boolToInt(run.Substring),
			run.Matches, run.Warnings, run.StartedAt.UnixNano(),
			run.Duration.Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		stmt, err := tx.Prepare("INSERT INTO matches(run_id, path) VALUES(?,?)")
		if err != nil {
			return fmt.Errorf("failed to prepare match insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range paths {
			if _, err := stmt.Exec(run.ID, p); err != nil {
				return fmt.Errorf("failed to insert match: %w", err)
			}
		}

		return tx.Commit()
	})
}

// ListRuns returns the most recent runs, newest first, up to limit.
// A limit <= 0 returns all runs.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	query := `SELECT id, root, pattern, workers, substring, matches, warnings, started_at, duration_ms
	          FROM runs ORDER BY started_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			substring  int
			startedNS  int64
			durationMS int64
		)
		if err := rows.Scan(&r.ID, &r.Root, &r.Pattern, &r.Workers, &substring,
			&r.Matches, &r.Warnings, &startedNS, &durationMS); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Substring = substring != 0
		r.StartedAt = time.Unix(0, startedNS).UTC()
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun fetches a single run by id. Returns an error if the id is unknown.
func (s *Store) GetRun(id string) (Run, error) {
	rows, err := s.db.Query(
		`SELECT id, root, pattern, workers, substring, matches, warnings, started_at, duration_ms
		 FROM runs WHERE id = ?`, id)
	if err != nil {
		return Run{}, fmt.Errorf("failed to query run: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return Run{}, fmt.Errorf("run %s not found", id)
	}

	var (
		r          Run
		substring  int
		startedNS  int64
		durationMS int64
	)
	if err := rows.Scan(&r.ID, &r.Root, &r.Pattern, &r.Workers, &substring,
		&r.Matches, &r.Warnings, &startedNS, &durationMS); err != nil {
		return Run{}, fmt.Errorf("failed to scan run: %w", err)
	}
	r.Substring = substring != 0
	r.StartedAt = time.Unix(0, startedNS).UTC()
	r.Duration = time.Duration(durationMS) * time.Millisecond
	return r, nil
}

// RunMatches returns the matched paths recorded for a run, in insertion order.
func (s *Store) RunMatches(id string) ([]string, error) {
	rows, err := s.db.Query("SELECT path FROM matches WHERE run_id = ? ORDER BY rowid", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
