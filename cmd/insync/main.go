package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bkyoung/inspection-sync/internal/adapter/cli"
	"github.com/bkyoung/inspection-sync/internal/adapter/git"
	githubadapter "github.com/bkyoung/inspection-sync/internal/adapter/github"
	"github.com/bkyoung/inspection-sync/internal/adapter/observability"
	"github.com/bkyoung/inspection-sync/internal/adapter/rest"
	storeadapter "github.com/bkyoung/inspection-sync/internal/adapter/store"
	"github.com/bkyoung/inspection-sync/internal/adapter/store/sqlite"
	"github.com/bkyoung/inspection-sync/internal/config"
	"github.com/bkyoung/inspection-sync/internal/usecase/events"
	"github.com/bkyoung/inspection-sync/internal/usecase/reconcile"
	"github.com/bkyoung/inspection-sync/internal/version"
)

func main() {
	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	// Create cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "insync",
		EnvPrefix:   "INSYNC",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	repoDir := cfg.Git.RepositoryDir
	if repoDir == "" {
		repoDir = "."
	}
	gitEngine := git.NewEngine(repoDir)

	restLogger := buildLogger(cfg.Observability)

	var syncLogger reconcile.Logger
	if restLogger != nil {
		syncLogger = observability.NewSyncLogger(restLogger)
	}

	ghClient, err := buildGitHubClient(cfg, restLogger)
	if err != nil {
		return err
	}

	// Initialize store if enabled
	var recorder cli.RunRecorder
	var history cli.HistoryStore
	var publisher reconcile.EventPublisher
	if cfg.Store.Enabled {
		storeDir := filepath.Dir(cfg.Store.Path)
		if err := os.MkdirAll(storeDir, 0755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else {
			sqliteStore, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				log.Printf("warning: failed to initialize store: %v", err)
			} else {
				defer sqliteStore.Close()
				p := storeadapter.NewPublisher(sqliteStore, "")
				recorder = p
				publisher = p
				history = sqliteStore
			}
		}
	}

	reconciler := reconcile.NewReconciler(ghClient, publisher, syncLogger, reconcile.Options{
		BranchFilter:     cfg.Reconcile.BranchFilter,
		AssignCommitters: cfg.Reconcile.AssignCommitters,
		SeverityLabels:   cfg.Reconcile.SeverityLabels,
	})

	var branchDeletions cli.BranchDeletionHandler
	if cfg.Events.CloseOnBranchDeletion {
		branchDeletions = events.NewBranchDeletionListener(ghClient, syncLogger, cfg.Events.Sources)
	}
	var deployments cli.DeploymentHandler
	if cfg.Events.LabelDeployments {
		deployments = events.NewDeploymentListener(ghClient, gitEngine, syncLogger)
	}

	root := cli.NewRootCommand(cli.Dependencies{
		Synchronizer:    reconciler,
		BranchDeletions: branchDeletions,
		Deployments:     deployments,
		Git:             gitEngine,
		Recorder:        recorder,
		History:         history,
		DefaultOwner:    cfg.GitHub.Owner,
		DefaultRepo:     cfg.GitHub.Repo,
		Version:         version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

func buildGitHubClient(cfg config.Config, logger rest.Logger) (*githubadapter.Client, error) {
	token := cfg.GitHub.Token
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("no GitHub token; set github.token in config or the GITHUB_TOKEN environment variable")
	}

	client := githubadapter.NewClient(token)
	if cfg.GitHub.APIBaseURL != "" {
		client.SetBaseURL(cfg.GitHub.APIBaseURL)
	}
	if cfg.HTTP.Timeout != "" {
		if timeout, err := time.ParseDuration(cfg.HTTP.Timeout); err == nil {
			client.SetTimeout(timeout)
		} else {
			log.Printf("warning: invalid http timeout %q, using default", cfg.HTTP.Timeout)
		}
	}
	client.SetRetryConfig(githubadapter.BuildRetryConfig(cfg.HTTP))
	if logger != nil {
		client.SetLogger(logger)
	}
	return client, nil
}

// buildLogger creates the shared structured logger based on configuration.
// When no format is configured, log output is human-readable on a terminal
// and JSON otherwise.
func buildLogger(cfg config.ObservabilityConfig) rest.Logger {
	if !cfg.Logging.Enabled {
		return nil
	}

	logLevel := rest.LogLevelInfo
	switch cfg.Logging.Level {
	case "debug":
		logLevel = rest.LogLevelDebug
	case "error":
		logLevel = rest.LogLevelError
	}

	logFormat := rest.LogFormatJSON
	switch cfg.Logging.Format {
	case "human":
		logFormat = rest.LogFormatHuman
	case "json":
		logFormat = rest.LogFormatJSON
	default:
		if cli.IsOutputTerminal() {
			logFormat = rest.LogFormatHuman
		}
	}

	return rest.NewDefaultLogger(logLevel, logFormat, cfg.Logging.RedactToken)
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "insync"))
	}
	return paths
}

// Compile-time interface compliance checks
var _ cli.Synchronizer = (*reconcile.Reconciler)(nil)
var _ cli.BranchDeletionHandler = (*events.BranchDeletionListener)(nil)
var _ cli.DeploymentHandler = (*events.DeploymentListener)(nil)
var _ cli.GitEngine = (*git.Engine)(nil)
var _ cli.RunRecorder = (*storeadapter.Publisher)(nil)
var _ cli.HistoryStore = (*sqlite.Store)(nil)
var _ reconcile.IssueClient = (*githubadapter.Client)(nil)
var _ events.IssueClient = (*githubadapter.Client)(nil)
var _ events.GitEngine = (*git.Engine)(nil)
