// Package cli implements the changekit command-line interface.
package cli

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/changekit/changekit/internal/build"
	"github.com/changekit/changekit/internal/errors"
)

var (
	configFlag string
	plainFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "changekit",
	Short: "Change-record tracking and release automation for monorepos",
	Long: `changekit tracks per-change metadata records across a multi-package
repository, verifies that modified packages carry a change record, and
cuts releases: it resolves the pending records of a package into a
semantic version bump and renders the changelog section.

Typical workflow:
  changekit init --package sdk/core@1.0.0   # once per repository
  changekit add                             # once per change
  changekit verify                          # in CI, gates the merge
  changekit status                          # what would be released
  changekit release --all                   # at release time`,
	Version:       build.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to project config file (default: .changekit/config.yml)")
	rootCmd.PersistentFlags().BoolVar(&plainFlag, "plain", false, "Plain output (no colors/icons)")
}

// Execute runs the root command. Structured CLI errors print with their
// remediation guidance; ExitError terminates with its specific code.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if stderrors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}

	if cliErr := errors.AsCLIError(err); cliErr != nil {
		errors.PrintError(cliErr)
		os.Exit(exitCodeFor(cliErr.Category))
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return err
}

// exitCodeFor maps an error category to the process exit code.
func exitCodeFor(category errors.ErrorCategory) int {
	switch category {
	case errors.Argument:
		return ExitInvalidArguments
	case errors.Prerequisite:
		return ExitMissingPrerequisites
	default:
		return ExitFailure
	}
}
