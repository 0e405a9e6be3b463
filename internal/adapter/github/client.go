package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bkyoung/inspection-sync/internal/adapter/rest"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 30 * time.Second
)

// Client is an HTTP client for the GitHub Issues API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	retryConf  rest.RetryConfig
	logger     rest.Logger
}

// NewClient creates a new GitHub API client with the given token.
// The token should be a GitHub personal access token or GITHUB_TOKEN from
// Actions. By default no request is retried; failures surface to the caller.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		retryConf:  rest.DefaultRetryConfig(),
	}
}

// SetBaseURL sets a custom base URL (for testing or GitHub Enterprise).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

// SetTimeout sets the HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// SetMaxRetries sets the maximum number of retry attempts.
func (c *Client) SetMaxRetries(maxRetries int) {
	c.retryConf.MaxRetries = maxRetries
}

// SetRetryConfig replaces the whole retry policy, including backoff.
func (c *Client) SetRetryConfig(conf rest.RetryConfig) {
	c.retryConf = conf
}

// SetLogger installs a structured logger for API call tracing.
func (c *Client) SetLogger(logger rest.Logger) {
	c.logger = logger
}

// CreateIssueInput contains all data needed to create an issue. Tag is
// the correlation tag; it is appended after the body is truncated so it
// survives regardless of body length.
type CreateIssueInput struct {
	Owner     string
	Repo      string
	Title     string
	Body      string
	Tag       string
	Labels    []string
	Assignees []string
}

// CreateIssue opens a new issue. The inspection label is always applied
// in addition to any labels supplied, and the body is truncated to leave
// headroom before the tag suffix is appended.
func (c *Client) CreateIssue(ctx context.Context, input CreateIssueInput) (*Issue, error) {
	req := CreateIssueRequest{
		Title:     input.Title,
		Body:      ComposeBody(input.Body, input.Tag),
		Labels:    ensureInspectionLabel(input.Labels),
		Assignees: input.Assignees,
	}

	path := fmt.Sprintf("/repos/%s/%s/issues", input.Owner, input.Repo)
	var issue Issue
	if err := c.do(ctx, http.MethodPost, path, req, &issue); err != nil {
		return nil, fmt.Errorf("create issue %q in %s/%s: %w", input.Title, input.Owner, input.Repo, err)
	}
	return &issue, nil
}

// UpdateIssueInput contains all data needed to update an issue. Tag
// follows the same rule as on create: appended after truncation.
type UpdateIssueInput struct {
	Owner  string
	Repo   string
	Number int
	Body   string
	Tag    string
	State  IssueState
	Labels []string
}

// UpdateIssue patches an issue's state, body, and labels. The inspection
// label is re-injected on every update so a managed issue never loses it.
func (c *Client) UpdateIssue(ctx context.Context, input UpdateIssueInput) (*Issue, error) {
	req := UpdateIssueRequest{
		Body:   ComposeBody(input.Body, input.Tag),
		State:  string(input.State),
		Labels: ensureInspectionLabel(input.Labels),
	}

	path := fmt.Sprintf("/repos/%s/%s/issues/%d", input.Owner, input.Repo, input.Number)
	var issue Issue
	if err := c.do(ctx, http.MethodPatch, path, req, &issue); err != nil {
		return nil, fmt.Errorf("update issue #%d in %s/%s: %w", input.Number, input.Owner, input.Repo, err)
	}
	return &issue, nil
}

// CreateComment posts a comment on an issue. The body is truncated under
// the same headroom rule as issue bodies.
func (c *Client) CreateComment(ctx context.Context, owner, repo string, number int, body string) (*Comment, error) {
	req := CreateCommentRequest{Body: TruncateBody(body)}

	path := fmt.Sprintf("/repos/%s/%s/issues/%d/comments", owner, repo, number)
	var comment Comment
	if err := c.do(ctx, http.MethodPost, path, req, &comment); err != nil {
		return nil, fmt.Errorf("comment on issue #%d in %s/%s: %w", number, owner, repo, err)
	}
	return &comment, nil
}

// AddLabels adds labels to an issue without replacing existing ones.
func (c *Client) AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error {
	req := AddLabelsRequest{Labels: labels}

	path := fmt.Sprintf("/repos/%s/%s/issues/%d/labels", owner, repo, number)
	if err := c.do(ctx, http.MethodPost, path, req, nil); err != nil {
		return fmt.Errorf("label issue #%d in %s/%s: %w", number, owner, repo, err)
	}
	return nil
}

// SearchIssues runs a raw issue search query. Zero matches is a valid
// empty result, not an error. Only the first page of results is fetched;
// reconciliation never manages enough issues per repository to page.
func (c *Client) SearchIssues(ctx context.Context, query string) (*SearchIssuesResponse, error) {
	path := "/search/issues?q=" + encodeQuery(query)
	var resp SearchIssuesResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("search issues %q: %w", query, err)
	}
	return &resp, nil
}

// do executes one API request with auth headers, optional logging, the
// configured retry policy, and error mapping. respBody may be nil when the
// response payload is irrelevant.
func (c *Client) do(ctx context.Context, method, path string, reqBody, respBody any) error {
	var payload []byte
	if reqBody != nil {
		var err error
		payload, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	if c.logger != nil {
		c.logger.LogRequest(ctx, rest.RequestLog{
			Service:   serviceName,
			Method:    method,
			Path:      path,
			Timestamp: time.Now(),
			BodyBytes: len(payload),
			Token:     c.token,
		})
	}

	start := time.Now()
	var resp *http.Response
	err := rest.RetryWithBackoff(ctx, func(ctx context.Context) error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, reqErr := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if reqErr != nil {
			return &rest.Error{
				Type:      rest.ErrTypeUnknown,
				Message:   reqErr.Error(),
				Retryable: false,
				Service:   serviceName,
			}
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		var callErr error
		resp, callErr = c.httpClient.Do(req)
		if callErr != nil {
			// Could be timeout or network error
			return &rest.Error{
				Type:      rest.ErrTypeTimeout,
				Message:   callErr.Error(),
				Retryable: true,
				Service:   serviceName,
			}
		}

		if resp.StatusCode >= 400 {
			bodyBytes, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				return &rest.Error{
					Type:       rest.ErrTypeUnknown,
					Message:    fmt.Sprintf("HTTP %d (failed to read response: %v)", resp.StatusCode, readErr),
					StatusCode: resp.StatusCode,
					Retryable:  resp.StatusCode >= 500,
					Service:    serviceName,
				}
			}
			return MapHTTPError(resp.StatusCode, bodyBytes)
		}

		return nil
	}, c.retryConf)

	if err != nil {
		c.logFailure(ctx, method, path, start, err)
		return err
	}
	defer resp.Body.Close()

	if c.logger != nil {
		c.logger.LogResponse(ctx, rest.ResponseLog{
			Service:    serviceName,
			Method:     method,
			Path:       path,
			Timestamp:  time.Now(),
			Duration:   time.Since(start),
			StatusCode: resp.StatusCode,
		})
	}

	if respBody == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (c *Client) logFailure(ctx context.Context, method, path string, start time.Time, err error) {
	if c.logger == nil {
		return
	}
	entry := rest.ErrorLog{
		Service:   serviceName,
		Method:    method,
		Path:      path,
		Timestamp: time.Now(),
		Duration:  time.Since(start),
		Error:     err,
	}
	if restErr, ok := err.(*rest.Error); ok {
		entry.ErrorType = restErr.Type
		entry.StatusCode = restErr.StatusCode
		entry.Retryable = restErr.Retryable
	}
	c.logger.LogError(ctx, entry)
}

func ensureInspectionLabel(labels []string) []string {
	for _, l := range labels {
		if l == InspectionLabel {
			return labels
		}
	}
	out := make([]string, 0, len(labels)+1)
	out = append(out, labels...)
	return append(out, InspectionLabel)
}
