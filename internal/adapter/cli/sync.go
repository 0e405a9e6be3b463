package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	storeadapter "github.com/bkyoung/inspection-sync/internal/adapter/store"
	"github.com/bkyoung/inspection-sync/internal/domain"
	"github.com/bkyoung/inspection-sync/internal/store"
	"github.com/bkyoung/inspection-sync/internal/usecase/baseline"
	"github.com/bkyoung/inspection-sync/internal/usecase/reconcile"
)

func syncCommand(deps Dependencies) *cobra.Command {
	var owner string
	var repo string
	var branch string
	var defaultBranch string
	var sha string
	var previousSHA string
	var source string
	var findingsPath string
	var committers []string
	var projectDir string
	var noBaselineFilter bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile inspection findings with GitHub issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			resolvedOwner, resolvedRepo, err := resolveRepo(owner, repo, deps.DefaultOwner, deps.DefaultRepo)
			if err != nil {
				return err
			}
			if source == "" {
				return fmt.Errorf("--source is required")
			}

			// Baseline filtering is layered onto the findings reader the
			// same way it wraps any reviewer.
			var reviewer baseline.Reviewer = fileReviewer{name: source, path: findingsPath}
			if !noBaselineFilter {
				reviewer = baseline.Wrap(reviewer)
			}
			comments, err := reviewer.Review(ctx, baseline.Project{Dir: projectDir})
			if err != nil {
				return err
			}

			if branch == "" && deps.Git != nil {
				resolved, err := deps.Git.CurrentBranch(ctx)
				if err != nil {
					return fmt.Errorf("detect branch: %w", err)
				}
				branch = resolved
			}
			if branch == "" {
				return fmt.Errorf("--branch is required when the working copy is not a git repository")
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
			if defaultBranch == "" {
				if deps.Git != nil {
					if resolved, err := deps.Git.ResolveDefaultBranch(ctx); err == nil {
						defaultBranch = resolved
					}
				}
				if defaultBranch == "" {
					defaultBranch = "main"
				}
			}
			if len(committers) == 0 && previousSHA != "" && deps.Git != nil {
				resolved, err := deps.Git.Committers(ctx, previousSHA, sha)
				if err != nil {
					return fmt.Errorf("detect committers: %w", err)
				}
				committers = resolved
			}

			if deps.Recorder != nil {
				now := time.Now()
				run := store.Run{
					RunID:     storeadapter.NewRunID(now, resolvedOwner, resolvedRepo, branch),
					Timestamp: now,
					Owner:     resolvedOwner,
					Repo:      resolvedRepo,
					Branch:    branch,
					SHA:       sha,
					Source:    source,
				}
				if err := deps.Recorder.BeginRun(ctx, run); err != nil {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to record run: %v\n", err)
				}
			}

			result, err := deps.Synchronizer.Reconcile(ctx, reconcile.Request{
				Push: domain.Push{
					Owner:         resolvedOwner,
					Repo:          resolvedRepo,
					Branch:        branch,
					DefaultBranch: defaultBranch,
					SHA:           sha,
					Committers:    committers,
				},
				Source:   source,
				Comments: comments,
			})
			if err != nil {
				return err
			}

			if result.Skipped {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Branch %s did not match the branch filter; nothing to do.\n", branch)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Reconciled %d findings: %d created, %d updated, %d unchanged, %d closed.\n",
				len(comments), result.Created, result.Updated, result.Unchanged, result.Closed)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Repository owner (defaults to github.owner from config)")
	cmd.Flags().StringVar(&repo, "repo", "", "Repository name (defaults to github.repo from config)")
	cmd.Flags().StringVar(&branch, "branch", "", "Pushed branch (detected from the working copy when omitted)")
	cmd.Flags().StringVar(&defaultBranch, "default-branch", "", "Repository default branch (resolved from origin/HEAD when omitted)")
	cmd.Flags().StringVar(&sha, "sha", "", "Pushed commit SHA (detected from the working copy when omitted)")
	cmd.Flags().StringVar(&previousSHA, "previous-sha", "", "Previous head SHA, used to detect committers")
	cmd.Flags().StringVar(&source, "source", "", "Inspection source identifier, e.g. tslint")
	cmd.Flags().StringVar(&findingsPath, "findings", "", "Path to a JSON file of inspection findings")
	cmd.Flags().StringSliceVar(&committers, "committer", []string{}, "GitHub logins to assign to new issues")
	cmd.Flags().StringVar(&projectDir, "project-dir", ".", "Project directory holding the legacy baseline")
	cmd.Flags().BoolVar(&noBaselineFilter, "no-baseline-filter", false, "Report all findings, including those in the legacy baseline")

	return cmd
}

// readFindings parses a JSON array of review comments.
func readFindings(path string) ([]domain.ReviewComment, error) {
	if path == "" {
		return nil, fmt.Errorf("--findings is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read findings %s: %w", path, err)
	}
	var comments []domain.ReviewComment
	if err := json.Unmarshal(data, &comments); err != nil {
		return nil, fmt.Errorf("parse findings %s: %w", path, err)
	}
	return comments, nil
}
