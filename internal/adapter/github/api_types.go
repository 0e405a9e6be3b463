package github

// GitHub Issues API types.
// See: https://docs.github.com/en/rest/issues/issues

// IssueState is the lifecycle state of an issue.
type IssueState string

const (
	// StateOpen marks an issue as open.
	StateOpen IssueState = "open"

	// StateClosed marks an issue as closed.
	StateClosed IssueState = "closed"
)

// InspectionLabel is applied to every issue this system creates or updates,
// so managed issues can be told apart from human-filed ones.
const InspectionLabel = "code-inspection"

// Issue is the subset of the GitHub issue schema this system reads.
type Issue struct {
	Number    int     `json:"number"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	State     string  `json:"state"`
	HTMLURL   string  `json:"html_url"`
	Labels    []Label `json:"labels,omitempty"`
	Assignees []User  `json:"assignees,omitempty"`
}

// LabelNames returns the plain names of the issue's labels.
func (i Issue) LabelNames() []string {
	names := make([]string, 0, len(i.Labels))
	for _, l := range i.Labels {
		names = append(names, l.Name)
	}
	return names
}

// Label represents a GitHub issue label.
type Label struct {
	Name string `json:"name"`
}

// User represents a GitHub user in the response.
type User struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
}

// Comment is the response from creating an issue comment.
type Comment struct {
	ID      int64  `json:"id"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

// CreateIssueRequest is the request body for POST /repos/{owner}/{repo}/issues.
type CreateIssueRequest struct {
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Labels    []string `json:"labels,omitempty"`
	Assignees []string `json:"assignees,omitempty"`
}

// UpdateIssueRequest is the request body for PATCH /repos/{owner}/{repo}/issues/{number}.
type UpdateIssueRequest struct {
	Body   string   `json:"body,omitempty"`
	State  string   `json:"state,omitempty"`
	Labels []string `json:"labels,omitempty"`
}

// CreateCommentRequest is the request body for POST .../issues/{number}/comments.
type CreateCommentRequest struct {
	Body string `json:"body"`
}

// AddLabelsRequest is the request body for POST .../issues/{number}/labels.
type AddLabelsRequest struct {
	Labels []string `json:"labels"`
}

// SearchIssuesResponse is the response from GET /search/issues.
type SearchIssuesResponse struct {
	TotalCount int     `json:"total_count"`
	Items      []Issue `json:"items"`
}

// ErrorResponse represents an error response from the GitHub API.
type ErrorResponse struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
	Errors           []struct {
		Resource string `json:"resource"`
		Field    string `json:"field"`
		Code     string `json:"code"`
		Message  string `json:"message"`
	} `json:"errors,omitempty"`
}
