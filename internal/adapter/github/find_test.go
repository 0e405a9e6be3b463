package github_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/inspection-sync/internal/adapter/github"
)

func searchServer(t *testing.T, items []github.Issue) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/issues", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("q"))
		json.NewEncoder(w).Encode(github.SearchIssuesResponse{
			TotalCount: len(items),
			Items:      items,
		})
	}))
}

func TestFindIssue_NoMatchesIsNotAnError(t *testing.T) {
	server := searchServer(t, nil)
	defer server.Close()

	client := github.NewClient("test-token")
	client.SetBaseURL(server.URL)

	issue, err := client.FindIssue(context.Background(), "owner", "repo", "Code inspection: bugs")

	require.NoError(t, err)
	assert.Nil(t, issue)
}

func TestFindIssue_ExactTitleMatchOnly(t *testing.T) {
	server := searchServer(t, []github.Issue{
		{Number: 9, Title: "Code inspection: bugs and more", State: "open"},
		{Number: 4, Title: "Code inspection: bugs", State: "open"},
	})
	defer server.Close()

	client := github.NewClient("test-token")
	client.SetBaseURL(server.URL)

	issue, err := client.FindIssue(context.Background(), "owner", "repo", "Code inspection: bugs")

	require.NoError(t, err)
	require.NotNil(t, issue)
	assert.Equal(t, 4, issue.Number)
}

func TestFindIssue_OpenBeatsClosedRegardlessOfNumber(t *testing.T) {
	server := searchServer(t, []github.Issue{
		{Number: 42, Title: "Code inspection: bugs", State: "closed"},
		{Number: 3, Title: "Code inspection: bugs", State: "open"},
	})
	defer server.Close()

	client := github.NewClient("test-token")
	client.SetBaseURL(server.URL)

	issue, err := client.FindIssue(context.Background(), "owner", "repo", "Code inspection: bugs")

	require.NoError(t, err)
	require.NotNil(t, issue)
	assert.Equal(t, 3, issue.Number)
}

func TestFindIssue_HigherNumberWinsWithinSameState(t *testing.T) {
	server := searchServer(t, []github.Issue{
		{Number: 3, Title: "Code inspection: bugs", State: "open"},
		{Number: 17, Title: "Code inspection: bugs", State: "open"},
		{Number: 11, Title: "Code inspection: bugs", State: "open"},
	})
	defer server.Close()

	client := github.NewClient("test-token")
	client.SetBaseURL(server.URL)

	issue, err := client.FindIssue(context.Background(), "owner", "repo", "Code inspection: bugs")

	require.NoError(t, err)
	require.NotNil(t, issue)
	assert.Equal(t, 17, issue.Number)
}

func TestFindIssues_EmptyResult(t *testing.T) {
	server := searchServer(t, nil)
	defer server.Close()

	client := github.NewClient("test-token")
	client.SetBaseURL(server.URL)

	issues, err := client.FindIssues(context.Background(), "owner", "repo", "[atomist:code-inspection:main=")

	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestFindIssues_ReturnsAllMatches(t *testing.T) {
	server := searchServer(t, []github.Issue{
		{Number: 1, Title: "Code inspection: bugs", State: "open"},
		{Number: 2, Title: "Code inspection: style", State: "closed"},
	})
	defer server.Close()

	client := github.NewClient("test-token")
	client.SetBaseURL(server.URL)

	issues, err := client.FindIssues(context.Background(), "owner", "repo", "[atomist:code-inspection:main=tslint]")

	require.NoError(t, err)
	assert.Len(t, issues, 2)
}
