// Package record defines the change record model: the per-change metadata
// contributors supply, the closed set of change kinds, and the mappings
// from kind to version bump and changelog section.
package record

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/changekit/changekit/internal/semver"
)

// Kind classifies a change's user impact.
type Kind string

// The closed enumeration of change kinds. Adding a kind requires
// updating Bump, Section, and Kinds together.
const (
	KindBreaking     Kind = "breaking"
	KindFeature      Kind = "feature"
	KindDeprecation  Kind = "deprecation"
	KindFix          Kind = "fix"
	KindDependencies Kind = "dependencies"
	KindInternal     Kind = "internal"
)

// Kinds returns all valid change kinds in documentation order.
func Kinds() []Kind {
	return []Kind{
		KindBreaking,
		KindFeature,
		KindDeprecation,
		KindFix,
		KindDependencies,
		KindInternal,
	}
}

// KindNames returns the string names of all valid kinds.
func KindNames() []string {
	kinds := Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}

// IsValid returns true if k is a member of the closed kind enumeration.
func (k Kind) IsValid() bool {
	switch k {
	case KindBreaking, KindFeature, KindDeprecation, KindFix, KindDependencies, KindInternal:
		return true
	}
	return false
}

// Bump returns the version bump implied by this kind.
func (k Kind) Bump() semver.Bump {
	switch k {
	case KindBreaking:
		return semver.BumpMajor
	case KindFeature, KindDeprecation:
		return semver.BumpMinor
	case KindFix, KindDependencies:
		return semver.BumpPatch
	case KindInternal:
		return semver.BumpNone
	}
	return semver.BumpNone
}

// ParseKind parses a kind name, returning InvalidKindError for any value
// outside the closed enumeration.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", &InvalidKindError{Kind: s}
	}
	return k, nil
}

// ChangeRecord is a single contributor-supplied change entry. Records are
// immutable once created: the store persists them append-only and a
// release consumes them without rewriting the record itself.
type ChangeRecord struct {
	// ID uniquely identifies the record across the workspace.
	ID string `yaml:"id"`
	// Kind is the change classification (member of the closed enum).
	Kind Kind `yaml:"kind"`
	// Packages lists the package paths this change affects. Never empty.
	Packages []string `yaml:"packages"`
	// Description is the changelog text for this change.
	Description string `yaml:"description"`
	// Created orders records within a package's pending set.
	Created time.Time `yaml:"created"`
}

// Validate checks the record's structural invariants: non-empty id,
// valid kind, and at least one affected package.
func (r *ChangeRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("change record id is required")
	}
	if !r.Kind.IsValid() {
		return &InvalidKindError{Kind: string(r.Kind)}
	}
	if len(r.Packages) == 0 {
		return &EmptyPackageSetError{ID: r.ID}
	}
	for _, pkg := range r.Packages {
		if strings.TrimSpace(pkg) == "" {
			return fmt.Errorf("change record %s: package path cannot be empty", r.ID)
		}
	}
	return nil
}

// Affects returns true if the record lists the given package path.
func (r *ChangeRecord) Affects(pkg string) bool {
	for _, p := range r.Packages {
		if p == pkg {
			return true
		}
	}
	return false
}

// SortByCreation orders records by creation time, breaking ties by id so
// the order is deterministic across filesystem enumeration.
func SortByCreation(records []ChangeRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Created.Equal(records[j].Created) {
			return records[i].ID < records[j].ID
		}
		return records[i].Created.Before(records[j].Created)
	})
}
