package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/ffind/internal/history"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded search runs or replay one run's matches",
		Long: `Without arguments, list the most recent recorded runs.
With a run id, print the matched paths recorded for that run.

Runs are recorded by "ffind search --save" (or history.enabled in the
config file).

Examples:
  ffind history
  ffind history --limit 50
  ffind history 3f1c9a2e-8b7d-4c5e-9f0a-1b2c3d4e5f6a`,
		Args: cobra.MaximumNArgs(1),
		RunE: historyCommand,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .ffind/config.yaml)")
	cmd.Flags().String("history-db", "", "Path to the history database")
	cmd.Flags().Int("limit", 0, "Maximum number of runs to list (0 = config default)")

	return cmd
}

// historyCommand implements the history command logic
func historyCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadMergedConfig(cmd)
	if err != nil {
		return err
	}

	store, err := history.Open(cfg.History.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()

	if len(args) == 1 {
		run, err := store.GetRun(args[0])
		if err != nil {
			return err
		}
		paths, err := store.RunMatches(run.ID)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Run %s\n", run.ID)
		fmt.Fprintf(out, "  Root:     %s\n", run.Root)
		fmt.Fprintf(out, "  Pattern:  %s%s\n", run.Pattern, modeSuffix(run.Substring))
		fmt.Fprintf(out, "  Workers:  %d\n", run.Workers)
		fmt.Fprintf(out, "  Started:  %s\n", run.StartedAt.Local().Format(time.RFC3339))
		fmt.Fprintf(out, "  Duration: %s\n", run.Duration.Round(time.Millisecond))
		fmt.Fprintf(out, "  Matches:  %d (%d warnings)\n\n", run.Matches, run.Warnings)
		for _, p := range paths {
			fmt.Fprintln(out, p)
		}
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.History.KeepRuns
	}

	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No recorded runs.")
		return nil
	}

	for _, run := range runs {
		fmt.Fprintf(out, "%s  %s  %-20s  %6d matches  %s\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Pattern+modeSuffix(run.Substring),
			run.Matches,
			run.Root,
		)
	}
	return nil
}

// modeSuffix labels substring-mode runs in listings.
func modeSuffix(substring bool) string {
	if substring {
		return " (substring)"
	}
	return ""
}
