package cli

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/changekit/changekit/internal/errors"
	"github.com/changekit/changekit/internal/gitx"
	"github.com/changekit/changekit/internal/progress"
	"github.com/changekit/changekit/internal/verify"
)

var verifyBaseFlag string

var verifyCmd = &cobra.Command{
	Use:   "verify [base-branch]",
	Short: "Check that changed packages carry pending change records",
	Long: `Compare the working tree against the base branch and require a pending
change record for every package whose files changed.

Intended as a CI gate: exits 1 when a changed package has no pending
record, so a pull request cannot merge without declaring its changes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base := verifyBaseFlag
		if len(args) > 0 {
			base = args[0]
		}
		return runVerify(cmd, base)
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyBaseFlag, "base", "", "Base branch to diff against (defaults to configured base branch)")
}

func runVerify(cmd *cobra.Command, base string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	if !gitx.IsRepository(ws.repoRoot) {
		return errors.NewPrerequisiteError(
			"verify requires a git repository",
			"Run changekit verify from inside a git checkout.")
	}

	if base == "" {
		base = ws.cfg.BaseBranch
	}

	sp := progress.Start(fmt.Sprintf("Comparing against %s...", base))
	changed, err := gitx.ChangedFiles(ws.repoRoot, base)
	sp.Stop()
	if err != nil {
		return errors.WrapWithMessage(err, errors.Runtime,
			fmt.Sprintf("failed to diff against %s", base))
	}

	report, err := verify.Run(ws.store, changed)
	if err != nil {
		return errors.Wrap(err, errors.Runtime)
	}

	out := cmd.OutOrStdout()
	if report.OK() {
		if len(report.Changed) == 0 {
			fmt.Fprintln(out, "No package changes detected.")
		} else {
			ok := "OK"
			if !ws.cfg.Plain {
				ok = color.GreenString("OK")
			}
			fmt.Fprintf(out, "%s: all %d changed package(s) have pending change records.\n", ok, len(report.Changed))
		}
		return nil
	}

	sort.Strings(report.Missing)
	fmt.Fprintf(out, "%d changed package(s) have no pending change record:\n\n", len(report.Missing))
	for _, pkg := range report.Missing {
		files := report.Changed[pkg]
		fmt.Fprintf(out, "  %s (%d changed file(s))\n", pkg, len(files))
		for i, f := range files {
			if i == 3 {
				fmt.Fprintf(out, "      ... and %d more\n", len(files)-i)
				break
			}
			fmt.Fprintf(out, "      %s\n", f)
		}
	}
	fmt.Fprintln(out, "\nAdd a record with 'changekit add' to describe these changes.")

	return NewExitError(ExitFailure)
}
