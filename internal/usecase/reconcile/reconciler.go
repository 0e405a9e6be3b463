// Package reconcile turns a push's review comments into GitHub issue
// activity: one managed issue per comment category, created when findings
// first appear, updated when the rendered body changes, and closed when a
// category's findings disappear.
package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bkyoung/inspection-sync/internal/adapter/github"
	"github.com/bkyoung/inspection-sync/internal/domain"
	"github.com/bkyoung/inspection-sync/internal/markdown"
	"github.com/bkyoung/inspection-sync/internal/tag"
)

// TitlePrefix starts the title of every managed issue.
const TitlePrefix = "Code inspection: "

// IssueTitle returns the title of the issue tracking a comment category.
func IssueTitle(category string) string {
	return TitlePrefix + category
}

// IssueClient defines the GitHub operations the reconciler needs.
// This interface allows for mocking in tests.
type IssueClient interface {
	CreateIssue(ctx context.Context, input github.CreateIssueInput) (*github.Issue, error)
	UpdateIssue(ctx context.Context, input github.UpdateIssueInput) (*github.Issue, error)
	CreateComment(ctx context.Context, owner, repo string, number int, body string) (*github.Comment, error)
	FindIssue(ctx context.Context, owner, repo, title string) (*github.Issue, error)
	FindIssues(ctx context.Context, owner, repo, term string) ([]github.Issue, error)
}

// Action is the kind of issue activity a reconciliation produced.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionClosed  Action = "closed"
	ActionLabeled Action = "labeled"
)

// CommitIssueRef correlates a commit with the issue activity it caused,
// so downstream consumers can track which commit resolved an issue.
type CommitIssueRef struct {
	Owner       string
	Repo        string
	SHA         string
	IssueNumber int
	IssueTitle  string
	Action      Action
}

// EventPublisher receives a commit-issue reference for every create,
// update, and close. Publish failures must not abort reconciliation.
type EventPublisher interface {
	PublishCommitIssueRef(ctx context.Context, ref CommitIssueRef) error
}

// Logger is the minimal structured logging port for use cases.
type Logger interface {
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

// Options tune reconciliation behavior.
type Options struct {
	// BranchFilter restricts which branches are reconciled. Empty means
	// the push's default branch only.
	BranchFilter string

	// AssignCommitters assigns new issues to the push's commit authors.
	AssignCommitters bool

	// SeverityLabels applies a severity-derived label (bug/enhancement)
	// to managed issues.
	SeverityLabels bool
}

// Reconciler synchronizes managed GitHub issues with review comments.
type Reconciler struct {
	client    IssueClient
	publisher EventPublisher
	logger    Logger
	opts      Options
}

// NewReconciler constructs a reconciler. The publisher and logger are
// optional.
func NewReconciler(client IssueClient, publisher EventPublisher, logger Logger, opts Options) *Reconciler {
	return &Reconciler{
		client:    client,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
	}
}

// Request carries one push's worth of filtered review comments.
type Request struct {
	Push     domain.Push
	Source   string
	Comments []domain.ReviewComment
}

// Result summarizes the issue activity of one reconciliation run.
type Result struct {
	// Skipped is true when the push's branch did not match the branch
	// filter and no issue activity happened.
	Skipped   bool
	Created   int
	Updated   int
	Unchanged int
	Closed    int
}

// Reconcile processes one push to completion. Categories are resolved
// sequentially, one fully before the next, so there is no intra-run race.
// Issue API failures propagate to the caller unretried.
func (r *Reconciler) Reconcile(ctx context.Context, req Request) (Result, error) {
	if !r.branchAllowed(req.Push) {
		r.logInfo(ctx, "push ignored by branch filter", map[string]interface{}{
			"branch": req.Push.Branch,
		})
		return Result{Skipped: true}, nil
	}

	var result Result
	ref := req.Push.RepoRef()
	bodyTag := tag.Create(req.Source, req.Push.Branch)
	groups := groupByCategory(req.Comments)

	for _, category := range sortedCategories(groups) {
		comments := groups[category]
		if err := r.reconcileCategory(ctx, req, category, comments, ref, bodyTag, &result); err != nil {
			return result, err
		}
	}

	if err := r.closeStale(ctx, req, groups, bodyTag, &result); err != nil {
		return result, err
	}

	return result, nil
}

func (r *Reconciler) reconcileCategory(ctx context.Context, req Request, category string, comments []domain.ReviewComment, ref domain.RepoRef, bodyTag string, result *Result) error {
	title := IssueTitle(category)
	formatted := markdown.CategorySortingBodyFormatter(comments, &ref)
	// The client truncates and appends the tag; composing the same final
	// body here keeps the remote comparison exact.
	body := github.ComposeBody(formatted, bodyTag)

	existing, err := r.client.FindIssue(ctx, req.Push.Owner, req.Push.Repo, title)
	if err != nil {
		return fmt.Errorf("find issue for category %q: %w", category, err)
	}

	labels := r.severityLabels(comments)

	if existing == nil {
		input := github.CreateIssueInput{
			Owner:  req.Push.Owner,
			Repo:   req.Push.Repo,
			Title:  title,
			Body:   formatted,
			Tag:    bodyTag,
			Labels: labels,
		}
		if r.opts.AssignCommitters {
			input.Assignees = dedupe(req.Push.Committers)
		}
		created, err := r.client.CreateIssue(ctx, input)
		if err != nil {
			return fmt.Errorf("create issue for category %q: %w", category, err)
		}
		result.Created++
		r.publish(ctx, req.Push, created.Number, title, ActionCreated)
		r.logInfo(ctx, "issue created", map[string]interface{}{
			"category": category,
			"number":   created.Number,
		})
		return nil
	}

	if existing.Body == body && existing.State == string(github.StateOpen) {
		result.Unchanged++
		return nil
	}

	// Reopens closed issues: findings are back, so is the issue.
	updated, err := r.client.UpdateIssue(ctx, github.UpdateIssueInput{
		Owner:  req.Push.Owner,
		Repo:   req.Push.Repo,
		Number: existing.Number,
		Body:   formatted,
		Tag:    bodyTag,
		State:  github.StateOpen,
		Labels: labels,
	})
	if err != nil {
		return fmt.Errorf("update issue #%d for category %q: %w", existing.Number, category, err)
	}
	result.Updated++
	r.publish(ctx, req.Push, updated.Number, title, ActionUpdated)
	r.logInfo(ctx, "issue updated", map[string]interface{}{
		"category": category,
		"number":   updated.Number,
	})
	return nil
}

// closeStale closes every open tagged issue whose category no longer has
// findings in this push, with a comment naming the fixing commit.
func (r *Reconciler) closeStale(ctx context.Context, req Request, groups map[string][]domain.ReviewComment, bodyTag string, result *Result) error {
	known, err := r.client.FindIssues(ctx, req.Push.Owner, req.Push.Repo, bodyTag)
	if err != nil {
		return fmt.Errorf("find tagged issues: %w", err)
	}

	for _, issue := range known {
		if issue.State != string(github.StateOpen) {
			continue
		}
		category, ok := categoryFromTitle(issue.Title)
		if !ok {
			continue
		}
		if _, present := groups[category]; present {
			continue
		}
		if !strings.Contains(issue.Body, bodyTag) {
			// Search matched on a looser term than the verbatim tag.
			continue
		}

		if _, err := r.client.CreateComment(ctx, req.Push.Owner, req.Push.Repo, issue.Number, closingComment(category, req.Push)); err != nil {
			return fmt.Errorf("comment on stale issue #%d: %w", issue.Number, err)
		}
		if _, err := r.client.UpdateIssue(ctx, github.UpdateIssueInput{
			Owner:  req.Push.Owner,
			Repo:   req.Push.Repo,
			Number: issue.Number,
			State:  github.StateClosed,
			Labels: issue.LabelNames(),
		}); err != nil {
			return fmt.Errorf("close stale issue #%d: %w", issue.Number, err)
		}
		result.Closed++
		r.publish(ctx, req.Push, issue.Number, issue.Title, ActionClosed)
		r.logInfo(ctx, "issue closed", map[string]interface{}{
			"category": category,
			"number":   issue.Number,
		})
	}
	return nil
}

func (r *Reconciler) branchAllowed(push domain.Push) bool {
	filter := r.opts.BranchFilter
	if filter == "" {
		filter = push.DefaultBranch
	}
	return push.Branch == filter
}

// severityLabels derives the label set from the worst severity present:
// any error makes it a bug, otherwise any warn an enhancement.
func (r *Reconciler) severityLabels(comments []domain.ReviewComment) []string {
	if !r.opts.SeverityLabels {
		return nil
	}
	hasWarn := false
	for _, c := range comments {
		switch c.Severity {
		case domain.SeverityError:
			return []string{"bug"}
		case domain.SeverityWarn:
			hasWarn = true
		}
	}
	if hasWarn {
		return []string{"enhancement"}
	}
	return nil
}

func (r *Reconciler) publish(ctx context.Context, push domain.Push, number int, title string, action Action) {
	if r.publisher == nil {
		return
	}
	err := r.publisher.PublishCommitIssueRef(ctx, CommitIssueRef{
		Owner:       push.Owner,
		Repo:        push.Repo,
		SHA:         push.SHA,
		IssueNumber: number,
		IssueTitle:  title,
		Action:      action,
	})
	if err != nil {
		r.logWarning(ctx, "failed to publish commit-issue reference", map[string]interface{}{
			"number": number,
			"action": string(action),
			"error":  err.Error(),
		})
	}
}

func (r *Reconciler) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if r.logger != nil {
		r.logger.LogInfo(ctx, msg, fields)
	}
}

func (r *Reconciler) logWarning(ctx context.Context, msg string, fields map[string]interface{}) {
	if r.logger != nil {
		r.logger.LogWarning(ctx, msg, fields)
	}
}

func closingComment(category string, push domain.Push) string {
	link := fmt.Sprintf("https://github.com/%s/%s/commit/%s", push.Owner, push.Repo, push.SHA)
	comment := fmt.Sprintf("All %s comments were resolved as of [`%s`](%s)", category, shortSHA(push.SHA), link)
	if len(push.Committers) > 0 {
		comment += fmt.Sprintf(" by @%s", push.Committers[len(push.Committers)-1])
	}
	return comment + "."
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func categoryFromTitle(title string) (string, bool) {
	if !strings.HasPrefix(title, TitlePrefix) {
		return "", false
	}
	return strings.TrimPrefix(title, TitlePrefix), true
}

func groupByCategory(comments []domain.ReviewComment) map[string][]domain.ReviewComment {
	groups := make(map[string][]domain.ReviewComment)
	for _, c := range comments {
		groups[c.Category] = append(groups[c.Category], c)
	}
	return groups
}

func sortedCategories(groups map[string][]domain.ReviewComment) []string {
	categories := make([]string, 0, len(groups))
	for c := range groups {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
