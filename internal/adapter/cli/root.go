package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bkyoung/inspection-sync/internal/store"
	"github.com/bkyoung/inspection-sync/internal/usecase/events"
	"github.com/bkyoung/inspection-sync/internal/usecase/reconcile"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// Synchronizer defines the dependency required to run the sync command.
type Synchronizer interface {
	Reconcile(ctx context.Context, req reconcile.Request) (reconcile.Result, error)
}

// BranchDeletionHandler closes issues when a branch is deleted.
type BranchDeletionHandler interface {
	OnBranchDeletion(ctx context.Context, ev events.BranchDeletionEvent) (int, error)
}

// DeploymentHandler labels issues referenced by deployed commits.
type DeploymentHandler interface {
	OnDeployment(ctx context.Context, ev events.DeploymentEvent) ([]int, error)
}

// GitEngine resolves repository state for commands that accept defaults
// from the working copy.
type GitEngine interface {
	HeadSHA(ctx context.Context) (string, error)
	CurrentBranch(ctx context.Context) (string, error)
	ResolveDefaultBranch(ctx context.Context) (string, error)
	Committers(ctx context.Context, fromSHA, toSHA string) ([]string, error)
}

// RunRecorder records reconciliation runs in the history store.
type RunRecorder interface {
	BeginRun(ctx context.Context, run store.Run) error
}

// HistoryStore reads past runs and their issue actions.
type HistoryStore interface {
	ListRuns(ctx context.Context, limit int) ([]store.Run, error)
	GetActionsByRun(ctx context.Context, runID string) ([]store.IssueAction, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI. Recorder, History,
// and the event handlers may be nil when the corresponding feature is
// disabled.
type Dependencies struct {
	Synchronizer    Synchronizer
	BranchDeletions BranchDeletionHandler
	Deployments     DeploymentHandler
	Git             GitEngine
	Recorder        RunRecorder
	History         HistoryStore
	Args            Arguments
	DefaultOwner    string
	DefaultRepo     string
	DefaultBranch   string
	Version         string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "insync",
		Short: "Synchronize GitHub issues with code inspection findings",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(syncCommand(deps))
	root.AddCommand(baselineCommand())
	root.AddCommand(branchDeletedCommand(deps))
	root.AddCommand(deploymentCommand(deps))
	root.AddCommand(historyCommand(deps.History))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

// resolveRepo returns the flag values when set, otherwise the defaults.
func resolveRepo(owner, repo, defaultOwner, defaultRepo string) (string, string, error) {
	if owner == "" {
		owner = defaultOwner
	}
	if repo == "" {
		repo = defaultRepo
	}
	if owner == "" || repo == "" {
		return "", "", fmt.Errorf("repository not specified; pass --owner and --repo or set github.owner and github.repo in config")
	}
	return owner, repo, nil
}
