package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/changekit/changekit/internal/config"
	"github.com/changekit/changekit/internal/errors"
	"github.com/changekit/changekit/internal/health"
	"github.com/changekit/changekit/internal/output"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check workspace health",
	Long: `Run diagnostics against the changekit workspace: the state directory
layout, change record files, package state, and leftover release locks.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDoctor(cmd)
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command) error {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return errors.Wrap(err, errors.Configuration)
	}

	root, err := findRepoRoot()
	if err != nil {
		return errors.Wrap(err, errors.Runtime)
	}

	report := health.RunChecks(root, filepath.Join(root, cfg.WorkspaceDir))

	out := cmd.OutOrStdout()
	for _, check := range report.Checks {
		line := check.Name
		if check.Message != "" {
			line = fmt.Sprintf("%s: %s", check.Name, check.Message)
		}
		if check.Passed {
			output.PrintSuccess(out, line)
		} else {
			output.PrintFailure(out, line)
		}
	}

	if !report.Passed {
		return NewExitError(ExitMissingPrerequisites)
	}
	fmt.Fprintln(out, "\nAll checks passed.")
	return nil
}
