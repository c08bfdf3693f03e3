// Package verify implements the CI coverage gate: every package modified
// on a branch must have at least one pending change record.
package verify

import (
	"sort"
	"strings"

	"github.com/changekit/changekit/internal/store"
)

// Report is the outcome of a verification run.
type Report struct {
	// Changed maps each modified package to the changed files inside it.
	Changed map[string][]string
	// Missing lists modified packages with no pending change record,
	// sorted. Empty means the gate passes.
	Missing []string
}

// OK returns true if no modified package lacks a change record.
func (r *Report) OK() bool {
	return len(r.Missing) == 0
}

// Run checks the changed files against the store's registered packages.
// A file belongs to the registered package with the longest matching
// path prefix; files outside any registered package are ignored.
func Run(s *store.Store, changedFiles []string) (*Report, error) {
	packages, err := s.ListPackages()
	if err != nil {
		return nil, err
	}

	report := &Report{Changed: make(map[string][]string)}
	for _, file := range changedFiles {
		pkg := owningPackage(file, packages)
		if pkg == "" {
			continue
		}
		report.Changed[pkg] = append(report.Changed[pkg], file)
	}

	for pkg := range report.Changed {
		pending, err := s.ListPending(pkg)
		if err != nil {
			return nil, err
		}
		if len(pending) == 0 {
			report.Missing = append(report.Missing, pkg)
		}
	}

	sort.Strings(report.Missing)
	return report, nil
}

// owningPackage returns the registered package containing the file, by
// longest path-prefix match. Empty string if no package owns it.
func owningPackage(file string, packages []string) string {
	best := ""
	for _, pkg := range packages {
		if !isWithin(file, pkg) {
			continue
		}
		if len(pkg) > len(best) {
			best = pkg
		}
	}
	return best
}

// isWithin reports whether file is under the package directory.
func isWithin(file, pkg string) bool {
	pkg = strings.Trim(pkg, "/")
	return file == pkg || strings.HasPrefix(file, pkg+"/")
}
