package cli

import (
	stderrors "errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/changekit/changekit/internal/errors"
	"github.com/changekit/changekit/internal/output"
	"github.com/changekit/changekit/internal/progress"
	"github.com/changekit/changekit/internal/store"
)

var (
	releaseAllFlag    bool
	releaseDryRunFlag bool
)

var releaseCmd = &cobra.Command{
	Use:   "release [package...]",
	Short: "Cut releases for packages with pending change records",
	Long: `Resolve the pending version bump for each named package, write the new
version, render the consumed records into the package changelog, and
mark those records as released.

A package with no pending records is skipped, not failed. With --all,
every registered package is considered. With --dry-run, the resolved
versions and rendered notes are printed without writing anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRelease(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(releaseCmd)

	releaseCmd.Flags().BoolVar(&releaseAllFlag, "all", false, "Release every registered package")
	releaseCmd.Flags().BoolVar(&releaseDryRunFlag, "dry-run", false, "Resolve and render without writing")
}

func runRelease(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !releaseAllFlag {
		return errors.NewArgumentError(
			"no packages given",
			"Name one or more packages, or pass --all.")
	}
	if len(args) > 0 && releaseAllFlag {
		return errors.NewArgumentError("--all cannot be combined with package arguments")
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	packages := args
	if releaseAllFlag {
		packages, err = ws.store.ListPackages()
		if err != nil {
			return errors.Wrap(err, errors.Runtime)
		}
		if len(packages) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No packages registered.")
			return nil
		}
	}

	orch := ws.orchestrator(releaseDryRunFlag)

	sp := progress.Start(fmt.Sprintf("Releasing %d package(s)...", len(packages)))
	results, failures := orch.ReleaseAll(packages)
	sp.Stop()

	out := cmd.OutOrStdout()
	sort.Strings(packages)
	for _, pkg := range packages {
		if err, ok := failures[pkg]; ok {
			err = releaseFailure(err)
			output.PrintFailure(out, fmt.Sprintf("%s: %v", pkg, err))
			if cliErr := errors.AsCLIError(err); cliErr != nil {
				for _, step := range cliErr.Remediation {
					fmt.Fprintf(out, "    %s\n", step)
				}
			}
			continue
		}
		res := results[pkg]
		if res.Skipped {
			output.PrintSkipped(out, fmt.Sprintf("%s: no pending changes", pkg))
			continue
		}
		verb := "released"
		if releaseDryRunFlag {
			verb = "would release"
		}
		entries := 0
		for _, s := range res.Note.Sections {
			entries += len(s.Entries)
		}
		output.PrintSuccess(out, fmt.Sprintf("%s: %s %s -> %s (%d record(s))",
			pkg, verb, res.OldVersion, res.NewVersion, entries))
		if releaseDryRunFlag {
			fmt.Fprintln(out)
			fmt.Fprint(out, res.Section)
		}
	}

	if len(failures) > 0 {
		return NewExitError(ExitFailure)
	}
	return nil
}

// releaseFailure maps concurrent-release conflicts to structured
// conflict errors with remediation, leaving other failures untouched.
func releaseFailure(err error) error {
	var conflict *store.ReleaseConflictError
	if stderrors.As(err, &conflict) {
		return errors.NewConflictError(err.Error(),
			"another release advanced the version; re-run 'changekit release' against the new state")
	}
	return err
}
