// Package events reacts to source-control events that affect managed
// issues: branch deletions close the issues tracked for that branch, and
// recorded deployments label the issues their commits reference.
package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/bkyoung/inspection-sync/internal/adapter/github"
	"github.com/bkyoung/inspection-sync/internal/tag"
)

// IssueClient defines the GitHub operations the event listeners need.
type IssueClient interface {
	UpdateIssue(ctx context.Context, input github.UpdateIssueInput) (*github.Issue, error)
	CreateComment(ctx context.Context, owner, repo string, number int, body string) (*github.Comment, error)
	FindIssues(ctx context.Context, owner, repo, term string) ([]github.Issue, error)
	AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error
}

// Logger is the minimal structured logging port for event listeners.
type Logger interface {
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

// BranchDeletionEvent describes a deleted branch.
type BranchDeletionEvent struct {
	Owner  string
	Repo   string
	Branch string
}

// BranchDeletionListener closes the issues managed for a deleted branch.
type BranchDeletionListener struct {
	client IssueClient
	logger Logger

	// sources are the inspection source identifiers whose issues this
	// listener manages.
	sources []string
}

// NewBranchDeletionListener constructs the listener for the given sources.
func NewBranchDeletionListener(client IssueClient, logger Logger, sources []string) *BranchDeletionListener {
	return &BranchDeletionListener{client: client, logger: logger, sources: sources}
}

// OnBranchDeletion closes every open issue tagged for the deleted branch
// under any configured source, posting an explanatory comment first.
// Returns the number of issues closed.
func (l *BranchDeletionListener) OnBranchDeletion(ctx context.Context, ev BranchDeletionEvent) (int, error) {
	closed := 0
	for _, source := range l.sources {
		bodyTag := tag.Create(source, ev.Branch)
		issues, err := l.client.FindIssues(ctx, ev.Owner, ev.Repo, bodyTag)
		if err != nil {
			return closed, fmt.Errorf("find issues for deleted branch %s: %w", ev.Branch, err)
		}

		for _, issue := range issues {
			if issue.State != string(github.StateOpen) {
				continue
			}
			if !strings.Contains(issue.Body, bodyTag) {
				continue
			}

			comment := fmt.Sprintf("Closing because branch `%s` was deleted.", ev.Branch)
			if _, err := l.client.CreateComment(ctx, ev.Owner, ev.Repo, issue.Number, comment); err != nil {
				return closed, fmt.Errorf("comment on issue #%d: %w", issue.Number, err)
			}
			if _, err := l.client.UpdateIssue(ctx, github.UpdateIssueInput{
				Owner:  ev.Owner,
				Repo:   ev.Repo,
				Number: issue.Number,
				State:  github.StateClosed,
				Labels: issue.LabelNames(),
			}); err != nil {
				return closed, fmt.Errorf("close issue #%d: %w", issue.Number, err)
			}
			closed++
			if l.logger != nil {
				l.logger.LogInfo(ctx, "issue closed for deleted branch", map[string]interface{}{
					"number": issue.Number,
					"branch": ev.Branch,
					"source": source,
				})
			}
		}
	}
	return closed, nil
}
