package store

import (
	"fmt"

	"github.com/changekit/changekit/internal/semver"
)

// DuplicateIDError reports an attempt to add a record whose id already
// exists. The original record is retained unchanged.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("change record %q already exists", e.ID)
}

// ReleaseConflictError reports that a package's version advanced between
// the release computation and its commit. The release is aborted with no
// partial mutation; the caller should re-run against the new state.
type ReleaseConflictError struct {
	Path     string
	Expected semver.Version
	Actual   semver.Version
}

func (e *ReleaseConflictError) Error() string {
	return fmt.Sprintf("release conflict for %s: version is %s, expected %s (concurrent release already advanced it)",
		e.Path, e.Actual, e.Expected)
}
