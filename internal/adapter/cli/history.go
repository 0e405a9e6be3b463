package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func historyCommand(history HistoryStore) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past reconciliation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if history == nil {
				return fmt.Errorf("history is unavailable; enable store.enabled in config")
			}
			ctx := cmd.Context()
			caser := cases.Title(language.English)

			if runID != "" {
				actions, err := history.GetActionsByRun(ctx, runID)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					caser.String("issue"), caser.String("action"), caser.String("commit"), caser.String("title"))
				for _, a := range actions {
					_, _ = fmt.Fprintf(w, "#%d\t%s\t%s\t%s\n", a.IssueNumber, a.Action, shortCommit(a.SHA), a.IssueTitle)
				}
				return w.Flush()
			}

			runs, err := history.ListRuns(ctx, limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				caser.String("run"), caser.String("time"), caser.String("repository"), caser.String("branch"), caser.String("source"))
			for _, r := range runs {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s/%s\t%s\t%s\n",
					r.RunID, r.Timestamp.UTC().Format(time.RFC3339), r.Owner, r.Repo, r.Branch, r.Source)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "Show the issue actions of one run instead of listing runs")

	return cmd
}

func shortCommit(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
