package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/changekit/changekit/internal/errors"
	"github.com/changekit/changekit/internal/render"
	"github.com/changekit/changekit/internal/resolve"
	"github.com/changekit/changekit/internal/semver"
)

var changelogPendingFlag bool

var changelogCmd = &cobra.Command{
	Use:   "changelog <package>",
	Short: "Show a package changelog",
	Long: `Print the package's CHANGELOG.md.

With --pending, render what the next release section would look like
from the pending change records instead, without writing anything.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChangelog(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(changelogCmd)

	changelogCmd.Flags().BoolVar(&changelogPendingFlag, "pending", false, "Render the pending records as a release preview")
}

func runChangelog(cmd *cobra.Command, pkg string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	if changelogPendingFlag {
		return printPendingNote(cmd, ws, pkg)
	}

	path := filepath.Join(ws.repoRoot, filepath.FromSlash(pkg), ws.cfg.ChangelogName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewPrerequisiteError(
				fmt.Sprintf("no changelog found for %s", pkg),
				fmt.Sprintf("Expected %s. Cut a release first with 'changekit release %s'.", path, pkg))
		}
		return errors.Wrap(err, errors.Runtime)
	}

	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

// printPendingNote renders the records that the next release would
// consume, at the version the pending bump implies.
func printPendingNote(cmd *cobra.Command, ws *workspace, pkg string) error {
	state, err := ws.store.LoadPackage(pkg)
	if err != nil {
		return errors.WrapWithMessage(err, errors.Prerequisite,
			fmt.Sprintf("package %s is not registered", pkg),
			"Register it with 'changekit init --package <path>@<version>'.")
	}
	current, err := state.CurrentVersion()
	if err != nil {
		return errors.Wrap(err, errors.Runtime)
	}

	pending, err := ws.store.ListPending(pkg)
	if err != nil {
		return errors.Wrap(err, errors.Runtime)
	}

	bump := resolve.Bump(pending)
	if bump == semver.BumpNone {
		fmt.Fprintf(cmd.OutOrStdout(), "No pending changes for %s.\n", pkg)
		return nil
	}

	note, err := render.Build(pkg, current.Apply(bump), "Unreleased", pending)
	if err != nil {
		return errors.Wrap(err, errors.Runtime)
	}

	return render.FormatTerminal(note, cmd.OutOrStdout(), render.FormatOptions{Plain: ws.cfg.Plain})
}
