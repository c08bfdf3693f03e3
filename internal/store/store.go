// Package store persists change records and per-package release state
// under the .changekit workspace directory.
//
// Records live as individual YAML files in changes/ and are append-only:
// a file is written once at creation and never rewritten. Per-package
// state (current version plus the ledger of consumed record ids) lives
// in packages/<slug>.yaml and is replaced atomically via temp-and-rename,
// so a version bump and the archival of the records that produced it are
// a single filesystem transaction.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/changekit/changekit/internal/record"
)

const (
	changesDirName  = "changes"
	packagesDirName = "packages"
	locksDirName    = "locks"
)

// Store provides access to change records and package state rooted at a
// .changekit workspace directory.
type Store struct {
	root string

	mu       sync.Mutex
	pkgLocks map[string]*sync.Mutex
}

// Open returns a Store rooted at the given workspace directory
// (typically <repo>/.changekit). The directory must already exist;
// use Init to create a fresh workspace.
func Open(root string) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("opening workspace %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace path %s is not a directory", root)
	}
	return &Store{root: root, pkgLocks: make(map[string]*sync.Mutex)}, nil
}

// Init creates a new workspace directory structure and returns a Store
// for it. Safe to call on an existing workspace.
func Init(root string) (*Store, error) {
	for _, dir := range []string{root, filepath.Join(root, changesDirName), filepath.Join(root, packagesDirName), filepath.Join(root, locksDirName)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating workspace directory %s: %w", dir, err)
		}
	}
	return &Store{root: root, pkgLocks: make(map[string]*sync.Mutex)}, nil
}

// Root returns the workspace root directory.
func (s *Store) Root() string {
	return s.root
}

// LocksDir returns the directory holding release lock files.
func (s *Store) LocksDir() string {
	return filepath.Join(s.root, locksDirName)
}

// ChangesDir returns the directory holding change record files.
func (s *Store) ChangesDir() string {
	return filepath.Join(s.root, changesDirName)
}

// recordPath returns the file path for a record id.
func (s *Store) recordPath(id string) string {
	return filepath.Join(s.root, changesDirName, id+".yaml")
}

// packageLock returns the mutex serializing writes for a package path.
func (s *Store) packageLock(pkg string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.pkgLocks[pkg]
	if !ok {
		lock = &sync.Mutex{}
		s.pkgLocks[pkg] = lock
	}
	return lock
}

// lockPackages acquires the per-package mutexes for all given paths in
// sorted order and returns an unlock function. Sorted acquisition keeps
// multi-package records from deadlocking against each other.
func (s *Store) lockPackages(pkgs []string) func() {
	sorted := append([]string(nil), pkgs...)
	sort.Strings(sorted)

	locks := make([]*sync.Mutex, 0, len(sorted))
	for i, pkg := range sorted {
		if i > 0 && pkg == sorted[i-1] {
			continue
		}
		lock := s.packageLock(pkg)
		lock.Lock()
		locks = append(locks, lock)
	}

	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

// Add persists a new change record. It fails with InvalidKindError or
// EmptyPackageSetError if the record is structurally invalid, and with
// DuplicateIDError if a record with the same id already exists. The
// record file is created exclusively, so concurrent adds of the same id
// cannot both succeed.
func (s *Store) Add(r record.ChangeRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}

	unlock := s.lockPackages(r.Packages)
	defer unlock()

	data, err := yaml.Marshal(&r)
	if err != nil {
		return fmt.Errorf("encoding change record %s: %w", r.ID, err)
	}

	f, err := os.OpenFile(s.recordPath(r.ID), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return &DuplicateIDError{ID: r.ID}
		}
		return fmt.Errorf("creating change record %s: %w", r.ID, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(s.recordPath(r.ID))
		return fmt.Errorf("writing change record %s: %w", r.ID, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing change record %s: %w", r.ID, err)
	}

	return nil
}

// Get loads a single change record by id.
func (s *Store) Get(id string) (*record.ChangeRecord, error) {
	data, err := os.ReadFile(s.recordPath(id))
	if err != nil {
		return nil, fmt.Errorf("reading change record %s: %w", id, err)
	}

	var r record.ChangeRecord
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing change record %s: %w", id, err)
	}
	return &r, nil
}

// AllRecords loads every change record in the workspace, sorted by
// creation order.
func (s *Store) AllRecords() ([]record.ChangeRecord, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, changesDirName))
	if err != nil {
		return nil, fmt.Errorf("listing change records: %w", err)
	}

	var records []record.ChangeRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".yaml")
		r, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}

	record.SortByCreation(records)
	return records, nil
}

// ListPending returns the records pending for a package in creation
// order: records that affect the package and have not been consumed by
// one of its releases. Each call re-reads from disk and returns a fresh
// slice, so the sequence is restartable.
func (s *Store) ListPending(pkg string) ([]record.ChangeRecord, error) {
	state, err := s.LoadPackage(pkg)
	if err != nil {
		return nil, err
	}
	return s.listPendingFor(state)
}

// listPendingFor filters all records against a loaded package state.
func (s *Store) listPendingFor(state *PackageState) ([]record.ChangeRecord, error) {
	all, err := s.AllRecords()
	if err != nil {
		return nil, err
	}

	consumed := make(map[string]bool, len(state.Consumed))
	for _, id := range state.Consumed {
		consumed[id] = true
	}

	var pending []record.ChangeRecord
	for _, r := range all {
		if r.Affects(state.Path) && !consumed[r.ID] {
			pending = append(pending, r)
		}
	}
	return pending, nil
}

// Archive marks the given record ids consumed for a package. Idempotent:
// ids already archived are skipped. Records themselves are never touched.
func (s *Store) Archive(pkg string, ids []string) error {
	lock := s.packageLock(pkg)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.LoadPackage(pkg)
	if err != nil {
		return err
	}

	state.consume(ids)
	return s.savePackage(state)
}
