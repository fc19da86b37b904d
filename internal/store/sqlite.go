package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"quiverwsb/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ RunStore = (*SQLiteStore)(nil)

// SQLiteStore implements RunStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at     TEXT NOT NULL,
	finished_at    TEXT NOT NULL DEFAULT '',
	records        INTEGER NOT NULL DEFAULT 0,
	history_files  INTEGER NOT NULL DEFAULT 0,
	universe_files INTEGER NOT NULL DEFAULT 0,
	status         TEXT NOT NULL,
	error          TEXT NOT NULL DEFAULT ''
)`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the runs table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(createRunsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating runs table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// BeginRun inserts a new run in the running state and returns its ID.
func (s *SQLiteStore) BeginRun(ctx context.Context, startedAt time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (started_at, status) VALUES (?, ?)`,
		startedAt.UTC().Format(time.RFC3339), domain.RunStatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	return res.LastInsertId()
}

// FinishRun records a run's terminal state and counters by run.ID.
func (s *SQLiteStore) FinishRun(ctx context.Context, run *domain.Run) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs
		 SET finished_at = ?, records = ?, history_files = ?, universe_files = ?, status = ?, error = ?
		 WHERE id = ?`,
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.Records, run.HistoryFiles, run.UniverseFiles,
		run.Status, run.Error, run.ID,
	)
	if err != nil {
		return fmt.Errorf("updating run %d: %w", run.ID, err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first, up to limit.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, records, history_files, universe_files, status, error
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		var (
			run                 domain.Run
			startedAt, finished string
		)
		if err := rows.Scan(&run.ID, &startedAt, &finished, &run.Records,
			&run.HistoryFiles, &run.UniverseFiles, &run.Status, &run.Error); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if run.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
			return nil, fmt.Errorf("parsing started_at %q: %w", startedAt, err)
		}
		if finished != "" {
			if run.FinishedAt, err = time.Parse(time.RFC3339, finished); err != nil {
				return nil, fmt.Errorf("parsing finished_at %q: %w", finished, err)
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
