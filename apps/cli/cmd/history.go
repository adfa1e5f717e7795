package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/testlang/packages/history"
)

var (
	historyFileFlag  string
	historyLimitFlag int
	historyRunFlag   string
)

var historyCmd = &cobra.Command{
	Use:   "history <database>",
	Short: "Show runs recorded with run --history",
	Long: `Show test runs recorded in a history database, newest first.

Examples:
  testlangc history .testlang/history.db
  testlangc history .testlang/history.db --file api.tl --limit 5
  testlangc history .testlang/history.db --run 3f9c...`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: historyCommand,
}

func init() {
	historyCmd.Flags().StringVar(&historyFileFlag, "file", "", "Only show runs of this source file")
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", history.DefaultLimit, "Maximum number of runs to show")
	historyCmd.Flags().StringVar(&historyRunFlag, "run", "", "Show the test results of one run")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	store, err := history.Open(args[0])
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}
	defer store.Close()

	w := cmd.OutOrStdout()

	if historyRunFlag != "" {
		tests, err := store.Tests(cmd.Context(), historyRunFlag)
		if err != nil {
			return err
		}
		if len(tests) == 0 {
			return fmt.Errorf("no results recorded for run %s", historyRunFlag)
		}
		for _, t := range tests {
			fmt.Fprintf(w, "  %s %s %s\n", statusLabel(t.Status), t.Name, render(countStyle, fmt.Sprintf("(%dms)", t.Duration.Milliseconds())))
			if t.Message != "" && t.Status != history.StatusPassed {
				fmt.Fprintf(w, "      %s\n", t.Message)
			}
		}
		return nil
	}

	runs, err := store.Runs(cmd.Context(), historyFileFlag, historyLimitFlag)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	for _, r := range runs {
		status := render(passStyle, "PASS")
		if r.Failed > 0 {
			status = render(failStyle, "FAIL")
		}
		fmt.Fprintf(w, "%s  %s  %s  %s  %d passed, %d failed, %d skipped  %s\n",
			status,
			render(countStyle, r.ID),
			r.StartedAt.Local().Format(time.DateTime),
			render(fileStyle, r.File),
			r.Passed, r.Failed, r.Skipped,
			render(countStyle, fmt.Sprintf("%dms p95 %s", r.Duration.Milliseconds(), r.P95)))
	}
	return nil
}

func statusLabel(status string) string {
	switch status {
	case history.StatusPassed:
		return render(passStyle, "✓")
	case history.StatusSkipped:
		return render(skipStyle, "-")
	}
	return render(failStyle, "✗")
}
