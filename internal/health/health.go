// Package health validates a changekit workspace: the state directory
// layout, record and package state files, and leftover release locks.
// The results back the 'changekit doctor' command.
package health

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/changekit/changekit/internal/gitx"
	"github.com/changekit/changekit/internal/store"
)

// CheckResult represents the result of a single health check.
type CheckResult struct {
	Name    string
	Passed  bool
	Message string
}

// Report contains all health check results.
type Report struct {
	Checks []CheckResult
	Passed bool
}

func (r *Report) add(check CheckResult) {
	r.Checks = append(r.Checks, check)
	if !check.Passed {
		r.Passed = false
	}
}

// RunChecks validates the workspace rooted at stateDir inside repoRoot.
func RunChecks(repoRoot, stateDir string) *Report {
	report := &Report{Passed: true}

	report.add(checkGitRepository(repoRoot))

	s, workspaceCheck := checkWorkspace(stateDir)
	report.add(workspaceCheck)
	if s == nil {
		return report
	}

	report.add(checkRecords(s))
	report.add(checkPackages(s))
	report.add(checkLocks(s))

	return report
}

// checkGitRepository verifies the repository root is a git checkout.
// changekit works without git, but verify needs it.
func checkGitRepository(repoRoot string) CheckResult {
	if !gitx.IsRepository(repoRoot) {
		return CheckResult{
			Name:    "Git repository",
			Passed:  false,
			Message: "not a git repository; 'changekit verify' will not work here",
		}
	}
	return CheckResult{Name: "Git repository", Passed: true, Message: "detected"}
}

// checkWorkspace opens the store, returning it for the remaining checks.
func checkWorkspace(stateDir string) (*store.Store, CheckResult) {
	s, err := store.Open(stateDir)
	if err != nil {
		return nil, CheckResult{
			Name:    "Workspace",
			Passed:  false,
			Message: fmt.Sprintf("%s not usable: %v (run 'changekit init')", stateDir, err),
		}
	}
	return s, CheckResult{Name: "Workspace", Passed: true, Message: stateDir}
}

// checkRecords parses every change record file.
func checkRecords(s *store.Store) CheckResult {
	records, err := s.AllRecords()
	if err != nil {
		return CheckResult{
			Name:    "Change records",
			Passed:  false,
			Message: err.Error(),
		}
	}

	var invalid []string
	for _, r := range records {
		if err := r.Validate(); err != nil {
			invalid = append(invalid, fmt.Sprintf("%s: %v", r.ID, err))
		}
	}
	if len(invalid) > 0 {
		return CheckResult{
			Name:    "Change records",
			Passed:  false,
			Message: strings.Join(invalid, "; "),
		}
	}
	return CheckResult{Name: "Change records", Passed: true, Message: fmt.Sprintf("%d record(s) valid", len(records))}
}

// checkPackages loads every registered package state.
func checkPackages(s *store.Store) CheckResult {
	packages, err := s.ListPackages()
	if err != nil {
		return CheckResult{Name: "Package state", Passed: false, Message: err.Error()}
	}

	var broken []string
	for _, pkg := range packages {
		state, err := s.LoadPackage(pkg)
		if err != nil {
			broken = append(broken, fmt.Sprintf("%s: %v", pkg, err))
			continue
		}
		if _, err := state.CurrentVersion(); err != nil {
			broken = append(broken, fmt.Sprintf("%s: %v", pkg, err))
		}
	}
	if len(broken) > 0 {
		return CheckResult{Name: "Package state", Passed: false, Message: strings.Join(broken, "; ")}
	}
	return CheckResult{Name: "Package state", Passed: true, Message: fmt.Sprintf("%d package(s) registered", len(packages))}
}

// checkLocks reports leftover lock files from interrupted releases.
func checkLocks(s *store.Store) CheckResult {
	entries, err := os.ReadDir(s.LocksDir())
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{Name: "Release locks", Passed: true, Message: "none"}
		}
		return CheckResult{Name: "Release locks", Passed: false, Message: err.Error()}
	}

	var locks []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".lock" {
			locks = append(locks, entry.Name())
		}
	}
	if len(locks) > 0 {
		return CheckResult{
			Name:    "Release locks",
			Passed:  false,
			Message: fmt.Sprintf("leftover lock file(s): %s (stale locks are reclaimed on the next release)", strings.Join(locks, ", ")),
		}
	}
	return CheckResult{Name: "Release locks", Passed: true, Message: "none"}
}
