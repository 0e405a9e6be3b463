package config

// Config represents the full application configuration.
type Config struct {
	GitHub        GitHubConfig        `yaml:"github"`
	HTTP          HTTPConfig          `yaml:"http"`
	Reconcile     ReconcileConfig     `yaml:"reconcile"`
	Events        EventsConfig        `yaml:"events"`
	Git           GitConfig           `yaml:"git"`
	Store         StoreConfig         `yaml:"store"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// GitHubConfig configures the GitHub API client.
type GitHubConfig struct {
	// Token is a personal access token or GITHUB_TOKEN from Actions.
	Token string `yaml:"token"`

	// APIBaseURL overrides the API endpoint (GitHub Enterprise).
	APIBaseURL string `yaml:"apiBaseURL"`

	// Owner and Repo are the default repository coordinates.
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
}

// HTTPConfig holds global HTTP client settings.
type HTTPConfig struct {
	Timeout           string  `yaml:"timeout"`
	MaxRetries        int     `yaml:"maxRetries"`
	InitialBackoff    string  `yaml:"initialBackoff"`
	MaxBackoff        string  `yaml:"maxBackoff"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier"`
}

// ReconcileConfig configures the issue reconciler.
type ReconcileConfig struct {
	// BranchFilter restricts reconciliation to one branch. Empty means
	// the repository's default branch.
	BranchFilter string `yaml:"branchFilter"`

	// AssignCommitters assigns new issues to the push's commit authors.
	AssignCommitters bool `yaml:"assignCommitters"`

	// SeverityLabels applies bug/enhancement labels derived from the
	// worst finding severity.
	SeverityLabels bool `yaml:"severityLabels"`
}

// EventsConfig toggles the event listeners.
type EventsConfig struct {
	// CloseOnBranchDeletion closes tagged issues when their branch is
	// deleted.
	CloseOnBranchDeletion bool `yaml:"closeOnBranchDeletion"`

	// Sources are the inspection source identifiers whose issues the
	// branch-deletion listener manages.
	Sources []string `yaml:"sources"`

	// LabelDeployments labels issues referenced by deployed commits.
	LabelDeployments bool `yaml:"labelDeployments"`
}

type GitConfig struct {
	RepositoryDir string `yaml:"repositoryDir"`
}

// StoreConfig configures the reconciliation history store.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures API call logging.
type LoggingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Level       string `yaml:"level"`       // debug, info, error
	Format      string `yaml:"format"`      // json, human, or empty for auto-detect
	RedactToken bool   `yaml:"redactToken"` // Redact the GitHub token in logs
}
