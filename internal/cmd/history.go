package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mooselabs/unitymcp/internal/history"
	"github.com/mooselabs/unitymcp/internal/term"
)

var (
	flagHistoryLimit int
	flagHistoryPrune bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded test runs",
	Long: `List recorded play mode test runs, most recent first.

Runs are recorded by the bridge when history is enabled in the
configuration. With --prune, runs past the configured retention window
are deleted first.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "maximum runs to list")
	historyCmd.Flags().BoolVar(&flagHistoryPrune, "prune", false, "delete runs past the retention window first")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := history.Open(cfg.History.File)
	if err != nil {
		return err
	}
	defer store.Close()

	if flagHistoryPrune && cfg.History.Retention != "" {
		d, err := time.ParseDuration(cfg.History.Retention)
		if err != nil {
			return fmt.Errorf("parse history retention: %w", err)
		}
		n, err := store.Prune(cmd.Context(), d)
		if err != nil {
			return err
		}
		term.Printf("Pruned %d runs\n", n)
	}

	runs, err := store.Recent(cmd.Context(), flagHistoryLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		term.Println("No recorded runs")
		return nil
	}

	for _, r := range runs {
		term.Printf("%s  %-12s %-6s %s\n",
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Status, r.Result, describeRunScope(r))
		if r.Ended && r.Total > 0 {
			term.Printf("%21s total %d, passed %d, failed %d, not run %d\n",
				"", r.Total, r.Passed, r.Failed, r.NotRun)
		}
	}
	return nil
}

// describeRunScope renders the scope a run was asked for.
func describeRunScope(r history.Run) string {
	switch {
	case r.Method != "":
		return fmt.Sprintf("%s.%s", r.Class, r.Method)
	case r.Class != "":
		return r.Class
	case r.Assembly != "":
		return r.Assembly
	}
	return "(unknown scope)"
}
