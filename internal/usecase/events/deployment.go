package events

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/bkyoung/inspection-sync/internal/domain"
)

// issueRefPattern matches GitHub issue references like "fixes #123" in
// commit messages.
var issueRefPattern = regexp.MustCompile(`(?:^|\W)#(\d+)\b`)

// GitEngine supplies the commits between two deployments.
type GitEngine interface {
	CommitsBetween(ctx context.Context, fromSHA, toSHA string) ([]domain.Commit, error)
}

// DeploymentEvent records that a commit range reached an environment.
// PreviousSHA is the head of the prior deployment to the same
// environment; empty means this is the first recorded deployment and only
// the deployed commit itself is considered.
type DeploymentEvent struct {
	Owner       string
	Repo        string
	Environment string
	SHA         string
	PreviousSHA string
}

// DeploymentListener labels issues referenced by deployed commits with
// the environment they reached.
type DeploymentListener struct {
	client IssueClient
	git    GitEngine
	logger Logger
}

// NewDeploymentListener constructs the listener.
func NewDeploymentListener(client IssueClient, git GitEngine, logger Logger) *DeploymentListener {
	return &DeploymentListener{client: client, git: git, logger: logger}
}

// OnDeployment traverses the commits between the previous and current
// deployment, collects the issue numbers their messages reference, and
// adds an `env:<environment>` label to each. Returns the labeled issue
// numbers in ascending order.
func (l *DeploymentListener) OnDeployment(ctx context.Context, ev DeploymentEvent) ([]int, error) {
	commits, err := l.git.CommitsBetween(ctx, ev.PreviousSHA, ev.SHA)
	if err != nil {
		return nil, fmt.Errorf("commits between %s and %s: %w", ev.PreviousSHA, ev.SHA, err)
	}

	numbers := referencedIssues(commits)
	label := "env:" + ev.Environment

	for _, number := range numbers {
		if err := l.client.AddLabels(ctx, ev.Owner, ev.Repo, number, []string{label}); err != nil {
			return nil, fmt.Errorf("label issue #%d with %s: %w", number, label, err)
		}
		if l.logger != nil {
			l.logger.LogInfo(ctx, "issue labeled for deployment", map[string]interface{}{
				"number":      number,
				"environment": ev.Environment,
			})
		}
	}
	return numbers, nil
}

// referencedIssues extracts the unique issue numbers referenced by the
// commit messages, sorted ascending.
func referencedIssues(commits []domain.Commit) []int {
	seen := make(map[int]bool)
	for _, commit := range commits {
		for _, match := range issueRefPattern.FindAllStringSubmatch(commit.Message, -1) {
			if n, err := strconv.Atoi(match[1]); err == nil {
				seen[n] = true
			}
		}
	}
	numbers := make([]int, 0, len(seen))
	for n := range seen {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}
