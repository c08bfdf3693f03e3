package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/changekit/changekit/internal/errors"
	"github.com/changekit/changekit/internal/history"
)

var (
	historyPackageFlag string
	historyLimitFlag   int
	historyClearFlag   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View past releases",
	Long:  `View the releases cut in this workspace: timestamp, package, version transition, bump size, and the number of consumed change records.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistory(cmd)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVarP(&historyPackageFlag, "package", "p", "", "Filter by package path")
	historyCmd.Flags().IntVarP(&historyLimitFlag, "limit", "n", 0, "Limit to last N entries (most recent)")
	historyCmd.Flags().BoolVarP(&historyClearFlag, "clear", "c", false, "Clear all history")
}

func runHistory(cmd *cobra.Command) error {
	if historyLimitFlag < 0 {
		return errors.NewArgumentError(fmt.Sprintf("limit must be positive, got %d", historyLimitFlag))
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	if historyClearFlag {
		if err := history.Clear(ws.store.Root()); err != nil {
			return errors.Wrap(err, errors.Runtime)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	}

	f, err := history.Load(ws.store.Root())
	if err != nil {
		return errors.Wrap(err, errors.Runtime)
	}

	entries := filterHistoryEntries(f.Entries, historyPackageFlag, historyLimitFlag)
	if len(entries) == 0 {
		if historyPackageFlag != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "No releases recorded for %s.\n", historyPackageFlag)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "No releases recorded.")
		}
		return nil
	}

	displayHistoryEntries(cmd, entries, ws.cfg.Plain)
	return nil
}

// filterHistoryEntries filters by package and limits to the most recent.
func filterHistoryEntries(entries []history.Entry, pkg string, limit int) []history.Entry {
	var result []history.Entry
	for _, entry := range entries {
		if pkg == "" || entry.Package == pkg {
			result = append(result, entry)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result
}

func displayHistoryEntries(cmd *cobra.Command, entries []history.Entry, plain bool) {
	out := cmd.OutOrStdout()
	cyan := color.New(color.FgCyan).SprintFunc()

	for _, entry := range entries {
		pkg := entry.Package
		if !plain {
			pkg = cyan(pkg)
		}
		fmt.Fprintf(out, "%s  %s  %s -> %s  (%s, %d record(s))\n",
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			pkg, entry.From, entry.To, entry.Bump, entry.Records)
	}
}
