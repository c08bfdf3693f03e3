package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/changekit/changekit/internal/errors"
	"github.com/changekit/changekit/internal/resolve"
	"github.com/changekit/changekit/internal/semver"
)

var statusWatchFlag bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the pending version bump per package",
	Long: `Show each registered package with its current version, the number of
pending change records, and the version bump those records imply.

Read-only: status never mutates records or versions.

With --watch, the table refreshes whenever change records are added.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cmd)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusWatchFlag, "watch", false, "Refresh when change records are added")
}

func runStatus(cmd *cobra.Command) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	if !statusWatchFlag {
		return printStatus(cmd, ws)
	}
	return watchStatus(cmd, ws)
}

// printStatus renders the package table once.
func printStatus(cmd *cobra.Command, ws *workspace) error {
	packages, err := ws.store.ListPackages()
	if err != nil {
		return errors.Wrap(err, errors.Runtime)
	}
	if len(packages) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No packages registered. Run 'changekit init --package <path>@<version>'.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PACKAGE\tVERSION\tPENDING\tBUMP\tNEXT")

	for _, pkg := range packages {
		state, err := ws.store.LoadPackage(pkg)
		if err != nil {
			return errors.Wrap(err, errors.Runtime)
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
		next := "-"
		if bump != semver.BumpNone {
			next = current.Apply(bump).String()
		}

		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", pkg, current, len(pending), formatBump(bump, ws.cfg.Plain), next)
	}

	return w.Flush()
}

// formatBump colors the bump label by severity.
func formatBump(bump semver.Bump, plain bool) string {
	if plain {
		return bump.String()
	}
	switch bump {
	case semver.BumpMajor:
		return color.New(color.FgRed, color.Bold).Sprint(bump.String())
	case semver.BumpMinor:
		return color.New(color.FgGreen).Sprint(bump.String())
	case semver.BumpPatch:
		return color.New(color.FgYellow).Sprint(bump.String())
	default:
		return color.New(color.Faint).Sprint(bump.String())
	}
}

// watchStatus re-renders the table whenever the changes directory
// mutates, until interrupted.
func watchStatus(cmd *cobra.Command, ws *workspace) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.Runtime)
	}
	defer watcher.Close()

	if err := watcher.Add(ws.store.ChangesDir()); err != nil {
		return errors.Wrap(err, errors.Runtime)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := printStatus(cmd, ws); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "\nWatching for changes (Ctrl+C to stop)...")

	// Debounce bursts of events from a single record write.
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				pending = time.After(200 * time.Millisecond)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
		case <-pending:
			pending = nil
			fmt.Fprintln(cmd.OutOrStdout())
			if err := printStatus(cmd, ws); err != nil {
				return err
			}
		}
	}
}
