// Package store bridges the reconciler's event port to the persistence
// layer: every commit-issue reference raised during reconciliation is
// recorded as an issue action on the current run.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/bkyoung/inspection-sync/internal/store"
	"github.com/bkyoung/inspection-sync/internal/usecase/reconcile"
)

// Publisher implements reconcile.EventPublisher on top of a store.Store.
type Publisher struct {
	store store.Store
	runID string
	now   func() time.Time
}

// NewPublisher creates a publisher recording actions against the given run.
func NewPublisher(s store.Store, runID string) *Publisher {
	return &Publisher{store: s, runID: runID, now: time.Now}
}

// BeginRun records a new run and directs subsequent actions to it.
func (p *Publisher) BeginRun(ctx context.Context, run store.Run) error {
	if err := p.store.CreateRun(ctx, run); err != nil {
		return err
	}
	p.runID = run.RunID
	return nil
}

// NewRunID creates a unique identifier for a reconciliation run.
func NewRunID(timestamp time.Time, owner, repo, branch string) string {
	ts := timestamp.UTC().Format("20060102T150405Z")

	input := fmt.Sprintf("%s/%s|%s|%d", owner, repo, branch, timestamp.UnixNano())
	hash := sha256.Sum256([]byte(input))
	shortHash := hex.EncodeToString(hash[:3])

	return fmt.Sprintf("run-%s-%s", ts, shortHash)
}

// PublishCommitIssueRef records the reference as an issue action.
func (p *Publisher) PublishCommitIssueRef(ctx context.Context, ref reconcile.CommitIssueRef) error {
	return p.store.SaveAction(ctx, store.IssueAction{
		RunID:       p.runID,
		IssueNumber: ref.IssueNumber,
		IssueTitle:  ref.IssueTitle,
		Action:      string(ref.Action),
		SHA:         ref.SHA,
		Timestamp:   p.now(),
	})
}
