package reconcile_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/inspection-sync/internal/adapter/github"
	"github.com/bkyoung/inspection-sync/internal/domain"
	"github.com/bkyoung/inspection-sync/internal/usecase/reconcile"
)

// fakeIssueClient keeps managed issues in memory and counts API calls.
type fakeIssueClient struct {
	issues       map[string]*github.Issue
	nextNumber   int
	createCalls  int
	updateCalls  int
	commentCalls int
	comments     []string
}

func newFakeIssueClient() *fakeIssueClient {
	return &fakeIssueClient{issues: make(map[string]*github.Issue), nextNumber: 1}
}

func (f *fakeIssueClient) CreateIssue(ctx context.Context, input github.CreateIssueInput) (*github.Issue, error) {
	f.createCalls++
	issue := &github.Issue{
		Number: f.nextNumber,
		Title:  input.Title,
		Body:   github.ComposeBody(input.Body, input.Tag),
		State:  string(github.StateOpen),
	}
	for _, l := range input.Labels {
		issue.Labels = append(issue.Labels, github.Label{Name: l})
	}
	for _, a := range input.Assignees {
		issue.Assignees = append(issue.Assignees, github.User{Login: a})
	}
	f.nextNumber++
	f.issues[input.Title] = issue
	return issue, nil
}

func (f *fakeIssueClient) UpdateIssue(ctx context.Context, input github.UpdateIssueInput) (*github.Issue, error) {
	f.updateCalls++
	for _, issue := range f.issues {
		if issue.Number == input.Number {
			if input.Body != "" {
				issue.Body = github.ComposeBody(input.Body, input.Tag)
			}
			if input.State != "" {
				issue.State = string(input.State)
			}
			return issue, nil
		}
	}
	return nil, errors.New("issue not found")
}

func (f *fakeIssueClient) CreateComment(ctx context.Context, owner, repo string, number int, body string) (*github.Comment, error) {
	f.commentCalls++
	f.comments = append(f.comments, body)
	return &github.Comment{ID: int64(len(f.comments))}, nil
}

func (f *fakeIssueClient) FindIssue(ctx context.Context, owner, repo, title string) (*github.Issue, error) {
	if issue, ok := f.issues[title]; ok {
		return issue, nil
	}
	return nil, nil
}

func (f *fakeIssueClient) FindIssues(ctx context.Context, owner, repo, term string) ([]github.Issue, error) {
	var out []github.Issue
	for _, issue := range f.issues {
		if strings.Contains(issue.Body, term) {
			out = append(out, *issue)
		}
	}
	return out, nil
}

type fakePublisher struct {
	refs []reconcile.CommitIssueRef
	err  error
}

func (f *fakePublisher) PublishCommitIssueRef(ctx context.Context, ref reconcile.CommitIssueRef) error {
	if f.err != nil {
		return f.err
	}
	f.refs = append(f.refs, ref)
	return nil
}

type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
}

func (l *recordingLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.warnings = append(l.warnings, message)
}

func testPush() domain.Push {
	return domain.Push{
		Owner:         "marvel",
		Repo:          "heroes",
		Branch:        "main",
		DefaultBranch: "main",
		SHA:           "abc1234def",
		Committers:    []string{"stan", "jack", "stan"},
	}
}

func bugComments() []domain.ReviewComment {
	return []domain.ReviewComment{
		{Category: "bugs", Severity: domain.SeverityError, Detail: "nil deref",
			SourceLocation: &domain.SourceLocation{Path: "a.go", LineFrom1: 3}},
		{Category: "bugs", Severity: domain.SeverityWarn, Detail: "leak"},
	}
}

func TestReconcile_IgnoresNonDefaultBranch(t *testing.T) {
	client := newFakeIssueClient()
	r := reconcile.NewReconciler(client, nil, nil, reconcile.Options{})

	push := testPush()
	push.Branch = "feature/thing"

	result, err := r.Reconcile(context.Background(), reconcile.Request{
		Push: push, Source: "tslint", Comments: bugComments(),
	})

	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, 0, client.createCalls)
}

func TestReconcile_CreatesIssuePerCategory(t *testing.T) {
	client := newFakeIssueClient()
	publisher := &fakePublisher{}
	r := reconcile.NewReconciler(client, publisher, nil, reconcile.Options{
		AssignCommitters: true,
		SeverityLabels:   true,
	})

	comments := append(bugComments(),
		domain.ReviewComment{Category: "style", Severity: domain.SeverityInfo, Detail: "rename"})

	result, err := r.Reconcile(context.Background(), reconcile.Request{
		Push: testPush(), Source: "tslint", Comments: comments,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 2, client.createCalls)

	bugs := client.issues["Code inspection: bugs"]
	require.NotNil(t, bugs)
	assert.Contains(t, bugs.Body, "[atomist:code-inspection:main=tslint]")
	assert.Contains(t, bugs.Body, "## bugs")
	assert.Equal(t, []github.Label{{Name: "bug"}}, bugs.Labels)
	// Committers deduplicated, order preserved.
	require.Len(t, bugs.Assignees, 2)
	assert.Equal(t, "stan", bugs.Assignees[0].Login)
	assert.Equal(t, "jack", bugs.Assignees[1].Login)

	// One event per create.
	require.Len(t, publisher.refs, 2)
	assert.Equal(t, reconcile.ActionCreated, publisher.refs[0].Action)
	assert.Equal(t, "abc1234def", publisher.refs[0].SHA)
}

func TestReconcile_SecondRunWithSameCommentsIsIdempotent(t *testing.T) {
	client := newFakeIssueClient()
	r := reconcile.NewReconciler(client, nil, nil, reconcile.Options{})

	req := reconcile.Request{Push: testPush(), Source: "tslint", Comments: bugComments()}

	first, err := r.Reconcile(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	second, err := r.Reconcile(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, 1, second.Unchanged)
	assert.Equal(t, 1, client.createCalls)
	assert.Equal(t, 0, client.updateCalls)
}

func TestReconcile_UpdatesWhenBodyChanged(t *testing.T) {
	client := newFakeIssueClient()
	r := reconcile.NewReconciler(client, nil, nil, reconcile.Options{})

	req := reconcile.Request{Push: testPush(), Source: "tslint", Comments: bugComments()}
	_, err := r.Reconcile(context.Background(), req)
	require.NoError(t, err)

	req.Comments = append(req.Comments,
		domain.ReviewComment{Category: "bugs", Severity: domain.SeverityError, Detail: "another"})

	result, err := r.Reconcile(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, client.updateCalls)
	assert.Contains(t, client.issues["Code inspection: bugs"].Body, "another")
}

func TestReconcile_ReopensClosedIssue(t *testing.T) {
	client := newFakeIssueClient()
	r := reconcile.NewReconciler(client, nil, nil, reconcile.Options{})

	req := reconcile.Request{Push: testPush(), Source: "tslint", Comments: bugComments()}
	_, err := r.Reconcile(context.Background(), req)
	require.NoError(t, err)

	// Someone closed the issue remotely; findings persist.
	client.issues["Code inspection: bugs"].State = string(github.StateClosed)

	result, err := r.Reconcile(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, string(github.StateOpen), client.issues["Code inspection: bugs"].State)
}

func TestReconcile_ClosesStaleCategoryWithComment(t *testing.T) {
	client := newFakeIssueClient()
	publisher := &fakePublisher{}
	r := reconcile.NewReconciler(client, publisher, nil, reconcile.Options{})

	req := reconcile.Request{Push: testPush(), Source: "tslint", Comments: bugComments()}
	_, err := r.Reconcile(context.Background(), req)
	require.NoError(t, err)

	// Next push has no bugs findings at all.
	req.Comments = nil
	result, err := r.Reconcile(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Closed)
	assert.Equal(t, string(github.StateClosed), client.issues["Code inspection: bugs"].State)
	require.Len(t, client.comments, 1)
	assert.Contains(t, client.comments[0], "bugs")
	assert.Contains(t, client.comments[0], "abc1234")
	assert.Contains(t, client.comments[0], "@stan")

	last := publisher.refs[len(publisher.refs)-1]
	assert.Equal(t, reconcile.ActionClosed, last.Action)
}

func TestReconcile_ClosedStaleIssueStaysClosed(t *testing.T) {
	client := newFakeIssueClient()
	r := reconcile.NewReconciler(client, nil, nil, reconcile.Options{})

	req := reconcile.Request{Push: testPush(), Source: "tslint", Comments: bugComments()}
	_, err := r.Reconcile(context.Background(), req)
	require.NoError(t, err)

	req.Comments = nil
	_, err = r.Reconcile(context.Background(), req)
	require.NoError(t, err)

	// A third empty push must not close (or comment) again.
	result, err := r.Reconcile(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Closed)
	assert.Len(t, client.comments, 1)
}

func TestReconcile_PublisherFailureDoesNotAbort(t *testing.T) {
	client := newFakeIssueClient()
	publisher := &fakePublisher{err: errors.New("store down")}
	logger := &recordingLogger{}
	r := reconcile.NewReconciler(client, publisher, logger, reconcile.Options{})

	result, err := r.Reconcile(context.Background(), reconcile.Request{
		Push: testPush(), Source: "tslint", Comments: bugComments(),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	require.NotEmpty(t, logger.warnings)
	assert.Contains(t, logger.warnings[0], "commit-issue reference")
}

func TestReconcile_OversizedBodyKeepsTagAndStaysIdempotent(t *testing.T) {
	client := newFakeIssueClient()
	r := reconcile.NewReconciler(client, nil, nil, reconcile.Options{})

	comments := []domain.ReviewComment{
		{Category: "bugs", Severity: domain.SeverityError, Detail: strings.Repeat("x", 76*1024)},
	}
	req := reconcile.Request{Push: testPush(), Source: "tslint", Comments: comments}

	first, err := r.Reconcile(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	body := client.issues["Code inspection: bugs"].Body
	assert.Contains(t, body, "[atomist:code-inspection:main=tslint]",
		"tag must survive truncation verbatim")
	assert.Contains(t, body, github.TruncationMarker)

	// The truncated remote body must compare equal on the next push.
	second, err := r.Reconcile(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Unchanged)
	assert.Equal(t, 0, client.updateCalls)

	// And the tag search must still find the issue to close it.
	req.Comments = nil
	third, err := r.Reconcile(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, third.Closed)
}

func TestReconcile_BranchFilterOverride(t *testing.T) {
	client := newFakeIssueClient()
	r := reconcile.NewReconciler(client, nil, nil, reconcile.Options{BranchFilter: "develop"})

	push := testPush()
	push.Branch = "develop"

	result, err := r.Reconcile(context.Background(), reconcile.Request{
		Push: push, Source: "tslint", Comments: bugComments(),
	})

	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, 1, result.Created)
}

func TestIssueTitle(t *testing.T) {
	assert.Equal(t, "Code inspection: bugs", reconcile.IssueTitle("bugs"))
}
