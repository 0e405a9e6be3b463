package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bkyoung/inspection-sync/internal/store"
)

// Store implements the store.Store interface using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- Stores metadata about each reconciliation run
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		owner TEXT NOT NULL,
		repo TEXT NOT NULL,
		branch TEXT NOT NULL,
		sha TEXT NOT NULL,
		source TEXT NOT NULL
	);

	-- Issue activity produced by runs
	CREATE TABLE IF NOT EXISTS issue_actions (
		action_id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		issue_number INTEGER NOT NULL,
		issue_title TEXT NOT NULL,
		action TEXT NOT NULL CHECK(action IN ('created', 'updated', 'closed', 'labeled')),
		sha TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	);

	-- Indexes for performance
	CREATE INDEX IF NOT EXISTS idx_actions_run ON issue_actions(run_id);
	CREATE INDEX IF NOT EXISTS idx_actions_issue ON issue_actions(issue_number);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateRun stores a new reconciliation run.
func (s *Store) CreateRun(ctx context.Context, run store.Run) error {
	query := `
		INSERT INTO runs (run_id, timestamp, owner, repo, branch, sha, source)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		run.RunID,
		run.Timestamp.Unix(),
		run.Owner,
		run.Repo,
		run.Branch,
		run.SHA,
		run.Source,
	)

	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (store.Run, error) {
	query := `
		SELECT run_id, timestamp, owner, repo, branch, sha, source
		FROM runs
		WHERE run_id = ?
	`

	var run store.Run
	var timestamp int64

	err := s.db.QueryRowContext(ctx, query, runID).Scan(
		&run.RunID,
		&timestamp,
		&run.Owner,
		&run.Repo,
		&run.Branch,
		&run.SHA,
		&run.Source,
	)
	if err == sql.ErrNoRows {
		return store.Run{}, fmt.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return store.Run{}, fmt.Errorf("failed to get run: %w", err)
	}

	run.Timestamp = unixTime(timestamp)
	return run, nil
}

// ListRuns retrieves the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	query := `
		SELECT run_id, timestamp, owner, repo, branch, sha, source
		FROM runs
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var run store.Run
		var timestamp int64
		if err := rows.Scan(&run.RunID, &timestamp, &run.Owner, &run.Repo, &run.Branch, &run.SHA, &run.Source); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Timestamp = unixTime(timestamp)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// SaveAction stores one issue action.
func (s *Store) SaveAction(ctx context.Context, action store.IssueAction) error {
	query := `
		INSERT INTO issue_actions (run_id, issue_number, issue_title, action, sha, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		action.RunID,
		action.IssueNumber,
		action.IssueTitle,
		action.Action,
		action.SHA,
		action.Timestamp.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to save action: %w", err)
	}

	return nil
}

// GetActionsByRun retrieves all issue actions for a run, oldest first.
func (s *Store) GetActionsByRun(ctx context.Context, runID string) ([]store.IssueAction, error) {
	query := `
		SELECT action_id, run_id, issue_number, issue_title, action, sha, timestamp
		FROM issue_actions
		WHERE run_id = ?
		ORDER BY action_id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get actions: %w", err)
	}
	defer rows.Close()

	var actions []store.IssueAction
	for rows.Next() {
		var action store.IssueAction
		var timestamp int64
		if err := rows.Scan(&action.ActionID, &action.RunID, &action.IssueNumber, &action.IssueTitle, &action.Action, &action.SHA, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		action.Timestamp = unixTime(timestamp)
		actions = append(actions, action)
	}
	return actions, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
