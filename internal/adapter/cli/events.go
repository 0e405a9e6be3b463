package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bkyoung/inspection-sync/internal/usecase/events"
)

func branchDeletedCommand(deps Dependencies) *cobra.Command {
	var owner string
	var repo string
	var branch string

	cmd := &cobra.Command{
		Use:   "branch-deleted [branch]",
		Short: "Close inspection issues for a deleted branch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				branch = args[0]
			}
			if branch == "" {
				return fmt.Errorf("branch not specified; pass as an argument or use --branch")
			}
			resolvedOwner, resolvedRepo, err := resolveRepo(owner, repo, deps.DefaultOwner, deps.DefaultRepo)
			if err != nil {
				return err
			}
			if deps.BranchDeletions == nil {
				return fmt.Errorf("branch deletion handling is disabled; enable events.closeOnBranchDeletion in config")
			}

			closed, err := deps.BranchDeletions.OnBranchDeletion(cmd.Context(), events.BranchDeletionEvent{
				Owner:  resolvedOwner,
				Repo:   resolvedRepo,
				Branch: branch,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Closed %d issues for deleted branch %s.\n", closed, branch)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Repository owner (defaults to github.owner from config)")
	cmd.Flags().StringVar(&repo, "repo", "", "Repository name (defaults to github.repo from config)")
	cmd.Flags().StringVar(&branch, "branch", "", "Deleted branch (overrides positional)")

	return cmd
}

func deploymentCommand(deps Dependencies) *cobra.Command {
	var owner string
	var repo string
	var environment string
	var sha string
	var previousSHA string

	cmd := &cobra.Command{
		Use:   "deployment",
		Short: "Label issues referenced by newly deployed commits",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if environment == "" {
				return fmt.Errorf("--environment is required")
			}
			resolvedOwner, resolvedRepo, err := resolveRepo(owner, repo, deps.DefaultOwner, deps.DefaultRepo)
			if err != nil {
				return err
			}
			if deps.Deployments == nil {
				return fmt.Errorf("deployment labeling is disabled; enable events.labelDeployments in config")
			}

			if sha == "" && deps.Git != nil {
				resolved, err := deps.Git.HeadSHA(ctx)
				if err != nil {
					return fmt.Errorf("detect head commit: %w", err)
				}
				sha = resolved
			}
			if sha == "" {
				return fmt.Errorf("--sha is required when the working copy is not a git repository")
			}

			labeled, err := deps.Deployments.OnDeployment(ctx, events.DeploymentEvent{
				Owner:       resolvedOwner,
				Repo:        resolvedRepo,
				Environment: environment,
				SHA:         sha,
				PreviousSHA: previousSHA,
			})
			if err != nil {
				return err
			}

			if len(labeled) == 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No issues referenced by commits deployed to %s.\n", environment)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Labeled %d issues with env:%s: %v.\n", len(labeled), environment, labeled)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Repository owner (defaults to github.owner from config)")
	cmd.Flags().StringVar(&repo, "repo", "", "Repository name (defaults to github.repo from config)")
	cmd.Flags().StringVar(&environment, "environment", "", "Deployment environment, e.g. production")
	cmd.Flags().StringVar(&sha, "sha", "", "Deployed commit SHA (detected from the working copy when omitted)")
	cmd.Flags().StringVar(&previousSHA, "previous-sha", "", "Previously deployed SHA; commits after it are scanned for issue references")

	return cmd
}
