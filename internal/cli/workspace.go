package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/changekit/changekit/internal/config"
	"github.com/changekit/changekit/internal/errors"
	"github.com/changekit/changekit/internal/gitx"
	"github.com/changekit/changekit/internal/release"
	"github.com/changekit/changekit/internal/store"
)

// workspace bundles the loaded configuration, the opened store, and the
// repository root for a command invocation.
type workspace struct {
	cfg      *config.Configuration
	store    *store.Store
	repoRoot string
}

// findRepoRoot finds the enclosing repository root, falling back to the
// working directory outside a git repository.
func findRepoRoot() (string, error) {
	if root, err := gitx.RepositoryRoot(""); err == nil {
		return root, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return cwd, nil
}

// openWorkspace loads config and opens the store, translating a missing
// workspace into a prerequisite error with remediation.
func openWorkspace() (*workspace, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, errors.Wrap(err, errors.Configuration,
			"check .changekit/config.yml for syntax or value errors")
	}
	if plainFlag {
		cfg.Plain = true
	}

	root, err := findRepoRoot()
	if err != nil {
		return nil, errors.Wrap(err, errors.Runtime)
	}

	s, err := store.Open(filepath.Join(root, cfg.WorkspaceDir))
	if err != nil {
		return nil, errors.NewPrerequisiteError(
			"changekit workspace not found at "+filepath.Join(root, cfg.WorkspaceDir),
			"run 'changekit init' to create it",
		)
	}

	return &workspace{cfg: cfg, store: s, repoRoot: root}, nil
}

// orchestrator builds a release orchestrator from workspace settings.
func (w *workspace) orchestrator(dryRun bool) *release.Orchestrator {
	return release.New(w.store, release.Options{
		RepoRoot:      w.repoRoot,
		ChangelogName: w.cfg.ChangelogName,
		FetchAttempts: w.cfg.FetchAttempts,
		FetchDelay:    time.Duration(w.cfg.FetchDelayMS) * time.Millisecond,
		DryRun:        dryRun,
	})
}
