package record

import (
	"fmt"
	"strings"
)

// InvalidKindError reports a change kind outside the closed enumeration.
type InvalidKindError struct {
	Kind string
}

func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("invalid change kind %q (valid: %s)", e.Kind, strings.Join(KindNames(), ", "))
}

// EmptyPackageSetError reports a change record with no affected packages.
type EmptyPackageSetError struct {
	ID string
}

func (e *EmptyPackageSetError) Error() string {
	return fmt.Sprintf("change record %s: at least one affected package is required", e.ID)
}

// UnroutableKindError reports a kind with no changelog section mapping.
// This is unreachable for records admitted through Validate and exists
// to surface invariant violations rather than silently dropping entries.
type UnroutableKindError struct {
	Kind string
}

func (e *UnroutableKindError) Error() string {
	return fmt.Sprintf("change kind %q has no changelog section", e.Kind)
}
