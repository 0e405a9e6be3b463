package github

import (
	"context"
	"fmt"
	"net/url"
	"sort"
)

// FindIssue returns the most relevant issue whose title is exactly the
// given title, or nil when none matches. Open issues rank before closed
// ones regardless of number; within the same state the highest issue
// number (most recent) wins.
func (c *Client) FindIssue(ctx context.Context, owner, repo, title string) (*Issue, error) {
	query := fmt.Sprintf(`is:issue repo:%s/%s in:title %q`, owner, repo, title)
	resp, err := c.SearchIssues(ctx, query)
	if err != nil {
		return nil, err
	}

	matches := make([]Issue, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Title == title {
			matches = append(matches, item)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return moreRelevant(matches[i], matches[j])
	})
	return &matches[0], nil
}

// FindIssues returns every issue whose body contains the given substring.
// Zero matches yields an empty slice, not an error.
func (c *Client) FindIssues(ctx context.Context, owner, repo, term string) ([]Issue, error) {
	query := fmt.Sprintf(`is:issue repo:%s/%s in:body %q`, owner, repo, term)
	resp, err := c.SearchIssues(ctx, query)
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func moreRelevant(a, b Issue) bool {
	aOpen := a.State == string(StateOpen)
	bOpen := b.State == string(StateOpen)
	if aOpen != bOpen {
		return aOpen
	}
	return a.Number > b.Number
}

func encodeQuery(query string) string {
	return url.QueryEscape(query)
}
