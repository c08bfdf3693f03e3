package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/changekit/changekit/internal/semver"
)

// PackageState is the authoritative release state for one package: its
// current version and the ledger of record ids consumed by past
// releases. The state file is the single transactional unit for a
// release, so a version bump and its archival land together or not at
// all.
type PackageState struct {
	// Path is the package path relative to the repository root.
	Path string `yaml:"path"`
	// Version is the current released version (X.Y.Z).
	Version string `yaml:"version"`
	// Consumed lists record ids already released for this package.
	Consumed []string `yaml:"consumed,omitempty"`
}

// CurrentVersion parses the state's version string.
func (p *PackageState) CurrentVersion() (semver.Version, error) {
	v, err := semver.Parse(p.Version)
	if err != nil {
		return semver.Version{}, fmt.Errorf("package %s: %w", p.Path, err)
	}
	return v, nil
}

// consume appends ids to the consumed ledger, skipping duplicates.
func (p *PackageState) consume(ids []string) {
	seen := make(map[string]bool, len(p.Consumed))
	for _, id := range p.Consumed {
		seen[id] = true
	}
	for _, id := range ids {
		if !seen[id] {
			p.Consumed = append(p.Consumed, id)
			seen[id] = true
		}
	}
}

// Slug converts a package path to a filename-safe identifier.
// Path separators become double dashes: "sdk/core" -> "sdk--core".
func Slug(pkg string) string {
	return strings.ReplaceAll(strings.Trim(pkg, "/"), "/", "--")
}

// statePath returns the state file path for a package.
func (s *Store) statePath(pkg string) string {
	return filepath.Join(s.root, packagesDirName, Slug(pkg)+".yaml")
}

// PackageNotFoundError reports an unregistered package path.
type PackageNotFoundError struct {
	Path string
}

func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("package %q is not registered (run 'changekit init --package %s@<version>')", e.Path, e.Path)
}

// RegisterPackage creates state for a new package at the given version.
// Fails if the package is already registered.
func (s *Store) RegisterPackage(pkg string, version semver.Version) error {
	lock := s.packageLock(pkg)
	lock.Lock()
	defer lock.Unlock()

	if _, err := os.Stat(s.statePath(pkg)); err == nil {
		return fmt.Errorf("package %q is already registered", pkg)
	}

	state := &PackageState{Path: pkg, Version: version.String()}
	return s.savePackage(state)
}

// LoadPackage reads the state for a package. Returns
// PackageNotFoundError if the package has never been registered.
func (s *Store) LoadPackage(pkg string) (*PackageState, error) {
	data, err := os.ReadFile(s.statePath(pkg))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &PackageNotFoundError{Path: pkg}
		}
		return nil, fmt.Errorf("reading package state for %s: %w", pkg, err)
	}

	var state PackageState
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing package state for %s: %w", pkg, err)
	}
	return &state, nil
}

// ListPackages returns the paths of all registered packages, sorted.
func (s *Store) ListPackages() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, packagesDirName))
	if err != nil {
		return nil, fmt.Errorf("listing packages: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.root, packagesDirName, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading package state %s: %w", entry.Name(), err)
		}
		var state PackageState
		if err := yaml.Unmarshal(data, &state); err != nil {
			return nil, fmt.Errorf("parsing package state %s: %w", entry.Name(), err)
		}
		paths = append(paths, state.Path)
	}

	sort.Strings(paths)
	return paths, nil
}

// savePackage writes package state atomically: the new content lands in
// a temp file in the same directory and replaces the old file by rename.
func (s *Store) savePackage(state *PackageState) error {
	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding package state for %s: %w", state.Path, err)
	}

	dir := filepath.Join(s.root, packagesDirName)
	tmp, err := os.CreateTemp(dir, "."+Slug(state.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp state file for %s: %w", state.Path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing package state for %s: %w", state.Path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp state file for %s: %w", state.Path, err)
	}

	if err := os.Rename(tmpName, s.statePath(state.Path)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing package state for %s: %w", state.Path, err)
	}
	return nil
}

// CommitRelease performs the transactional release step for a package:
// verify the current version still matches the snapshot the bump was
// computed from, then write the new version and the consumed ids in a
// single atomic state replace. A version mismatch means another release
// advanced the package concurrently and yields ReleaseConflictError
// with no mutation.
func (s *Store) CommitRelease(pkg string, fromVersion, newVersion semver.Version, consumedIDs []string) error {
	lock := s.packageLock(pkg)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.LoadPackage(pkg)
	if err != nil {
		return err
	}

	current, err := state.CurrentVersion()
	if err != nil {
		return err
	}
	if current.Compare(fromVersion) != 0 {
		return &ReleaseConflictError{
			Path:     pkg,
			Expected: fromVersion,
			Actual:   current,
		}
	}

	state.Version = newVersion.String()
	state.consume(consumedIDs)
	return s.savePackage(state)
}
