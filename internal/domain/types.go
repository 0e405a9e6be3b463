package domain

// Severity classifies how serious a review comment is.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// SourceLocation points at the code a review comment refers to.
// LineFrom1 is 1-based; zero means the line is unknown.
type SourceLocation struct {
	Path      string `json:"path"`
	LineFrom1 int    `json:"lineFrom1,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// ReviewComment is a single finding emitted by a code-inspection reviewer.
// Comments are immutable once emitted for a given push.
type ReviewComment struct {
	Category       string          `json:"category"`
	Subcategory    string          `json:"subcategory,omitempty"`
	Severity       Severity        `json:"severity"`
	Detail         string          `json:"detail"`
	SourceLocation *SourceLocation `json:"sourceLocation,omitempty"`
}

// RepoRef identifies a repository at a specific commit, used to build
// deep links into source files.
type RepoRef struct {
	Owner string
	Repo  string
	SHA   string
}

// Push carries the metadata of the push that triggered an inspection.
type Push struct {
	Owner         string
	Repo          string
	Branch        string
	DefaultBranch string
	SHA           string

	// Committers are the GitHub logins of the push's commit authors,
	// in commit order, possibly with duplicates.
	Committers []string
}

// RepoRef returns the push's repository reference at its head commit.
func (p Push) RepoRef() RepoRef {
	return RepoRef{Owner: p.Owner, Repo: p.Repo, SHA: p.SHA}
}

// Commit is the subset of commit data needed for deployment labeling.
type Commit struct {
	SHA     string
	Message string
	Author  string
}
