// Package release implements the release orchestrator: it resolves a
// package's pending records into a version bump, renders the changelog
// section, and commits the new version together with the consumed record
// ids as one transactional state update.
package release

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/changekit/changekit/internal/history"
	"github.com/changekit/changekit/internal/render"
	"github.com/changekit/changekit/internal/resolve"
	"github.com/changekit/changekit/internal/semver"
	"github.com/changekit/changekit/internal/store"
)

// ReleaseFetchError reports that the authoritative package state could
// not be read after bounded retries.
type ReleaseFetchError struct {
	Path     string
	Attempts int
	Err      error
}

func (e *ReleaseFetchError) Error() string {
	return fmt.Sprintf("fetching state for %s failed after %d attempts: %v", e.Path, e.Attempts, e.Err)
}

func (e *ReleaseFetchError) Unwrap() error {
	return e.Err
}

// Options configures the orchestrator.
type Options struct {
	// RepoRoot is the repository root; package changelog files live at
	// <RepoRoot>/<package>/<ChangelogName>.
	RepoRoot string
	// ChangelogName is the per-package changelog filename (CHANGELOG.md).
	ChangelogName string
	// FetchAttempts bounds retries when reading package state.
	FetchAttempts int
	// FetchDelay is the pause between fetch attempts.
	FetchDelay time.Duration
	// DryRun computes and renders without mutating any state.
	DryRun bool
	// Now supplies the release date; defaults to time.Now.
	Now func() time.Time
}

// Orchestrator cuts releases against a store.
type Orchestrator struct {
	store   *store.Store
	opts    Options
	history *history.Writer

	mu       sync.Mutex
	inFlight map[string]bool
}

// historyLimit caps the release ledger length.
const historyLimit = 500

// New creates an orchestrator. Zero option fields get defaults:
// ChangelogName "CHANGELOG.md", 3 fetch attempts, 100ms delay.
func New(s *store.Store, opts Options) *Orchestrator {
	if opts.ChangelogName == "" {
		opts.ChangelogName = "CHANGELOG.md"
	}
	if opts.FetchAttempts <= 0 {
		opts.FetchAttempts = 3
	}
	if opts.FetchDelay <= 0 {
		opts.FetchDelay = 100 * time.Millisecond
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		store:    s,
		opts:     opts,
		history:  history.NewWriter(s.Root(), historyLimit),
		inFlight: make(map[string]bool),
	}
}

// Result reports the outcome of cutting a release for one package.
type Result struct {
	Package    string
	Skipped    bool
	OldVersion semver.Version
	NewVersion semver.Version
	Bump       semver.Bump
	Note       *render.ReleaseNote
	// Section is the rendered markdown appended to the changelog.
	Section string
}

// CutRelease consumes the pending records for a package: resolve the
// bump, apply it, render the changelog section, and commit version plus
// archival atomically. A package with no effective bump (no pending
// records, or only "internal" changes) is skipped with no mutation.
// Calling it again with no new records returns a skipped result.
func (o *Orchestrator) CutRelease(pkg string) (*Result, error) {
	if err := o.begin(pkg); err != nil {
		return nil, err
	}
	defer o.end(pkg)

	if !o.opts.DryRun {
		if err := acquireLock(o.store.LocksDir(), pkg); err != nil {
			return nil, err
		}
		defer releaseLock(o.store.LocksDir(), pkg)
	}

	state, err := o.fetchState(pkg)
	if err != nil {
		return nil, err
	}

	current, err := state.CurrentVersion()
	if err != nil {
		return nil, err
	}

	pending, err := o.store.ListPending(pkg)
	if err != nil {
		return nil, err
	}

	bump := resolve.Bump(pending)
	if bump == semver.BumpNone {
		return &Result{Package: pkg, Skipped: true, OldVersion: current, NewVersion: current}, nil
	}

	newVersion := current.Apply(bump)
	date := o.opts.Now().UTC().Format("2006-01-02")

	note, err := render.Build(pkg, newVersion, date, pending)
	if err != nil {
		return nil, err
	}

	section, err := render.MarkdownString(note)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Package:    pkg,
		OldVersion: current,
		NewVersion: newVersion,
		Bump:       bump,
		Note:       note,
		Section:    section,
	}

	if o.opts.DryRun {
		return result, nil
	}

	ids := make([]string, len(pending))
	for i, r := range pending {
		ids[i] = r.ID
	}

	if err := o.store.CommitRelease(pkg, current, newVersion, ids); err != nil {
		return nil, err
	}

	if err := o.appendChangelog(pkg, section); err != nil {
		return nil, fmt.Errorf("release committed for %s at %s, but updating changelog failed: %w", pkg, newVersion, err)
	}

	o.history.LogRelease(history.Entry{
		Timestamp: o.opts.Now().UTC(),
		Package:   pkg,
		From:      current.String(),
		To:        newVersion.String(),
		Bump:      bump.String(),
		Records:   len(ids),
	})

	return result, nil
}

// ReleaseAll cuts releases for the given packages. Distinct packages run
// fully in parallel; a failure for one package does not block the others.
// Results arrive keyed by package path alongside a map of per-package
// errors (empty when everything succeeded).
func (o *Orchestrator) ReleaseAll(pkgs []string) (map[string]*Result, map[string]error) {
	results := make(map[string]*Result, len(pkgs))
	errs := make(map[string]error)

	var mu sync.Mutex
	var g errgroup.Group
	for _, pkg := range pkgs {
		g.Go(func() error {
			result, err := o.CutRelease(pkg)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[pkg] = err
				return nil
			}
			results[pkg] = result
			return nil
		})
	}
	g.Wait()

	return results, errs
}

// begin marks a package release in flight, failing if one already is.
func (o *Orchestrator) begin(pkg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight[pkg] {
		return &LockHeldError{Package: pkg, PID: os.Getpid()}
	}
	o.inFlight[pkg] = true
	return nil
}

func (o *Orchestrator) end(pkg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, pkg)
}

// fetchState reads the authoritative package state with bounded retries.
// Unregistered packages fail immediately; transient read failures retry
// up to FetchAttempts before surfacing ReleaseFetchError.
func (o *Orchestrator) fetchState(pkg string) (*store.PackageState, error) {
	var lastErr error
	for attempt := 1; attempt <= o.opts.FetchAttempts; attempt++ {
		state, err := o.store.LoadPackage(pkg)
		if err == nil {
			return state, nil
		}

		var notFound *store.PackageNotFoundError
		if errors.As(err, &notFound) {
			return nil, err
		}

		lastErr = err
		if attempt < o.opts.FetchAttempts {
			time.Sleep(o.opts.FetchDelay)
		}
	}
	return nil, &ReleaseFetchError{Path: pkg, Attempts: o.opts.FetchAttempts, Err: lastErr}
}

// appendChangelog merges the rendered section into the package changelog.
func (o *Orchestrator) appendChangelog(pkg, section string) error {
	dir := filepath.Join(o.opts.RepoRoot, filepath.FromSlash(pkg))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating package directory: %w", err)
	}

	path := filepath.Join(dir, o.opts.ChangelogName)
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading changelog: %w", err)
	}

	merged := render.MergeIntoChangelog(string(existing), pkg, section)
	if err := os.WriteFile(path, []byte(merged), 0o644); err != nil {
		return fmt.Errorf("writing changelog: %w", err)
	}
	return nil
}
