package release

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/changekit/changekit/internal/store"
)

// Lock is a per-package lock file preventing concurrent releases of the
// same package across processes.
type Lock struct {
	// Package is the package path the lock covers.
	Package string `yaml:"package"`
	// PID is the process ID holding the lock.
	PID int `yaml:"pid"`
	// Acquired is when the lock was taken.
	Acquired time.Time `yaml:"acquired"`
}

// LockHeldError reports a release already in progress for a package.
type LockHeldError struct {
	Package string
	PID     int
}

func (e *LockHeldError) Error() string {
	return fmt.Sprintf("release already in progress for %s (held by pid %d)", e.Package, e.PID)
}

// lockPath returns the lock file path for a package.
func lockPath(locksDir, pkg string) string {
	return filepath.Join(locksDir, store.Slug(pkg)+".lock")
}

// acquireLock takes the release lock for a package. Stale locks (holder
// process no longer running) are reclaimed. Returns LockHeldError if a
// live process holds the lock.
func acquireLock(locksDir, pkg string) error {
	existing, err := loadLock(locksDir, pkg)
	if err != nil {
		return err
	}
	if existing != nil {
		if !isLockStale(existing) {
			return &LockHeldError{Package: pkg, PID: existing.PID}
		}
		if err := releaseLock(locksDir, pkg); err != nil {
			return err
		}
	}

	lock := &Lock{Package: pkg, PID: os.Getpid(), Acquired: time.Now()}
	data, err := yaml.Marshal(lock)
	if err != nil {
		return fmt.Errorf("encoding lock for %s: %w", pkg, err)
	}

	f, err := os.OpenFile(lockPath(locksDir, pkg), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return &LockHeldError{Package: pkg}
		}
		return fmt.Errorf("creating lock file for %s: %w", pkg, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		os.Remove(lockPath(locksDir, pkg))
		return fmt.Errorf("writing lock file for %s: %w", pkg, err)
	}
	return nil
}

// releaseLock removes the lock file for a package. Missing files are not
// an error.
func releaseLock(locksDir, pkg string) error {
	if err := os.Remove(lockPath(locksDir, pkg)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing lock file for %s: %w", pkg, err)
	}
	return nil
}

// loadLock reads a lock file. Returns nil with no error if absent.
func loadLock(locksDir, pkg string) (*Lock, error) {
	data, err := os.ReadFile(lockPath(locksDir, pkg))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading lock file for %s: %w", pkg, err)
	}

	var lock Lock
	if err := yaml.Unmarshal(data, &lock); err != nil {
		return nil, fmt.Errorf("parsing lock file for %s: %w", pkg, err)
	}
	return &lock, nil
}

// isLockStale reports whether the lock's holder process is gone.
func isLockStale(lock *Lock) bool {
	if lock == nil || lock.PID <= 0 {
		return true
	}
	return !isProcessRunning(lock.PID)
}

// isProcessRunning checks for a live process via signal 0.
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	return err == nil || err == syscall.EPERM
}
