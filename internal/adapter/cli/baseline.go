package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bkyoung/inspection-sync/internal/domain"
	"github.com/bkyoung/inspection-sync/internal/usecase/baseline"
)

func baselineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage the legacy-findings baseline",
	}
	cmd.AddCommand(baselineCreateCommand())
	cmd.AddCommand(baselineDeleteCommand())
	return cmd
}

func baselineCreateCommand() *cobra.Command {
	var projectDir string
	var source string
	var findingsPath string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Snapshot current findings as the legacy baseline",
		RunE: func(cmd *cobra.Command, args []string) error {
			if findingsPath == "" {
				return fmt.Errorf("--findings is required")
			}

			step := baseline.Step{
				Reviewers: []baseline.Reviewer{fileReviewer{name: source, path: findingsPath}},
				Name:      source,
			}
			created, err := step.Ensure(cmd.Context(), baseline.Project{Dir: projectDir})
			if err != nil {
				return err
			}

			path := baseline.FilePath(baseline.Project{Dir: projectDir}, source)
			if created {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Baseline written to %s.\n", path)
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Baseline %s already exists; delete it first to re-baseline.\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&projectDir, "project-dir", ".", "Project directory to baseline")
	cmd.Flags().StringVar(&source, "source", "", "Inspection source to scope the baseline to (empty for combined)")
	cmd.Flags().StringVar(&findingsPath, "findings", "", "Path to a JSON file of inspection findings")

	return cmd
}

func baselineDeleteCommand() *cobra.Command {
	var projectDir string
	var source string
	var all bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the legacy baseline so the next run re-baselines",
		RunE: func(cmd *cobra.Command, args []string) error {
			project := baseline.Project{Dir: projectDir}
			if all {
				if err := baseline.DeleteAll(project); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "All baselines deleted.")
				return nil
			}
			if err := baseline.Delete(project, source); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Baseline %s deleted.\n", baseline.FilePath(project, source))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectDir, "project-dir", ".", "Project directory holding the baseline")
	cmd.Flags().StringVar(&source, "source", "", "Inspection source whose baseline to delete (empty for combined)")
	cmd.Flags().BoolVar(&all, "all", false, "Delete the combined and every per-source baseline")

	return cmd
}

// fileReviewer satisfies baseline.Reviewer by reading findings from a file
// instead of running an inspection.
type fileReviewer struct {
	name string
	path string
}

func (r fileReviewer) Name() string {
	return r.name
}

func (r fileReviewer) Review(ctx context.Context, project baseline.Project) ([]domain.ReviewComment, error) {
	return readFindings(r.path)
}
