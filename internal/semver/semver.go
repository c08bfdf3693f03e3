// Package semver provides the semantic version triple and bump arithmetic
// used by the release workflow. Versions are plain X.Y.Z triples; a "v"
// prefix is accepted on input and never emitted.
package semver

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a semantic version triple.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse parses a version string in X.Y.Z form.
// Accepts an optional "v" or "V" prefix (normalized away).
func Parse(s string) (Version, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "v"), "V")

	parts := strings.Split(trimmed, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version %q (expected: X.Y.Z)", s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		// ParseUint rejects signs, so "+2" and "-0" are invalid.
		n, err := strconv.ParseUint(p, 10, 31)
		if err != nil || (len(p) > 1 && p[0] == '0') {
			return Version{}, fmt.Errorf("invalid version %q: component %q is not a valid number", s, p)
		}
		nums[i] = int(n)
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String returns the bare X.Y.Z form.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0, or 1 if v is less than, equal to, or greater
// than other.
func (v Version) Compare(other Version) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	return compareInt(v.Patch, other.Patch)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Apply returns the version produced by applying the bump to v.
// A major bump resets minor and patch to zero; a minor bump resets
// patch to zero; a patch bump increments only the patch component.
// BumpNone returns v unchanged.
func (v Version) Apply(b Bump) Version {
	switch b {
	case BumpMajor:
		return Version{Major: v.Major + 1}
	case BumpMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	case BumpPatch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	case BumpNone:
		return v
	}
	return v
}
