package store

import (
	"context"
	"time"
)

// Store defines the persistence layer interface for reconciliation history.
type Store interface {
	// Run management
	CreateRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, runID string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Issue action persistence
	SaveAction(ctx context.Context, action IssueAction) error
	GetActionsByRun(ctx context.Context, runID string) ([]IssueAction, error)

	// Utility
	Close() error
}

// Run represents a single reconciliation execution.
type Run struct {
	RunID     string
	Timestamp time.Time
	Owner     string
	Repo      string
	Branch    string
	SHA       string
	Source    string
}

// IssueAction records one piece of issue activity: which commit caused
// which action on which issue.
type IssueAction struct {
	ActionID    int
	RunID       string
	IssueNumber int
	IssueTitle  string
	Action      string // "created", "updated", "closed", or "labeled"
	SHA         string
	Timestamp   time.Time
}
