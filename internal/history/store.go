// Package history keeps a local SQLite record of finished crawl runs.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the database file created inside the history directory.
const FileName = "history.db"

// Run is one recorded crawl.
type Run struct {
	ID         int64     `json:"id"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Mode       string    `json:"mode"`
	Engine     string    `json:"engine"`
	Seeds      []string  `json:"seeds"`
	MaxPages   int       `json:"maxPages"`
	Pages      int       `json:"pages"`
	Written    int       `json:"written"`
	Skipped    int       `json:"skipped"`
	Error      string    `json:"error,omitempty"`
}

// Duration returns how long the run took
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store is a SQLite-backed run history.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the history database inside dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	path := filepath.Join(dir, FileName)
	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Path returns the database file location
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		mode TEXT NOT NULL,
		engine TEXT NOT NULL DEFAULT '',
		seeds TEXT NOT NULL,
		max_pages INTEGER NOT NULL,
		pages INTEGER NOT NULL DEFAULT 0,
		written INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Record stores a finished run and returns its ID.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	seeds, err := json.Marshal(run.Seeds)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize seeds: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
	INSERT INTO runs (started_at, finished_at, mode, engine, seeds, max_pages, pages, written, skipped, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UnixMilli(),
		run.FinishedAt.UnixMilli(),
		run.Mode,
		run.Engine,
		string(seeds),
		run.MaxPages,
		run.Pages,
		run.Written,
		run.Skipped,
		run.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return res.LastInsertId()
}

// List returns the most recent runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `
	SELECT id, started_at, finished_at, mode, engine, seeds, max_pages, pages, written, skipped, error
	FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished int64
			seeds             string
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.Mode, &r.Engine, &seeds,
			&r.MaxPages, &r.Pages, &r.Written, &r.Skipped, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(started).UTC()
		r.FinishedAt = time.UnixMilli(finished).UTC()
		if err := json.Unmarshal([]byte(seeds), &r.Seeds); err != nil {
			return nil, fmt.Errorf("failed to parse seeds of run %d: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
