package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/changekit/changekit/internal/config"
	"github.com/changekit/changekit/internal/errors"
	"github.com/changekit/changekit/internal/output"
	"github.com/changekit/changekit/internal/semver"
	"github.com/changekit/changekit/internal/store"
)

var initPackagesFlag []string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the changekit workspace in the current repository",
	Long: `Create the .changekit workspace directory and register packages.

Packages are registered with their current version using --package,
which can be repeated:

  changekit init --package sdk/core@1.2.3 --package sdk/storage@0.5.0

Registering more packages later is also done through init; existing
registrations are left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringArrayVar(&initPackagesFlag, "package", nil, "Package to register, as path@version (repeatable)")
}

func runInit(cmd *cobra.Command) error {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return errors.Wrap(err, errors.Configuration)
	}

	root, err := findRepoRoot()
	if err != nil {
		return errors.Wrap(err, errors.Runtime)
	}

	s, err := store.Init(filepath.Join(root, cfg.WorkspaceDir))
	if err != nil {
		return errors.Wrap(err, errors.Runtime)
	}
	output.PrintSuccess(cmd.OutOrStdout(), "workspace ready at "+filepath.Join(root, cfg.WorkspaceDir))

	for _, spec := range initPackagesFlag {
		pkg, version, err := parsePackageSpec(spec)
		if err != nil {
			return err
		}
		if err := s.RegisterPackage(pkg, version); err != nil {
			return errors.Wrap(err, errors.Argument)
		}
		output.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("registered %s at %s", pkg, version))
	}

	return nil
}

// parsePackageSpec splits a path@version registration argument.
func parsePackageSpec(spec string) (string, semver.Version, error) {
	pkg, versionStr, found := strings.Cut(spec, "@")
	if !found || strings.TrimSpace(pkg) == "" {
		return "", semver.Version{}, errors.NewArgumentError(
			fmt.Sprintf("invalid package spec %q", spec),
			"use the form path@version, e.g. sdk/core@1.2.3",
		)
	}

	version, err := semver.Parse(versionStr)
	if err != nil {
		return "", semver.Version{}, errors.Wrap(err, errors.Argument,
			"use the form path@version, e.g. sdk/core@1.2.3")
	}
	return strings.Trim(pkg, "/"), version, nil
}
