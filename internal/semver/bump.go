package semver

import "fmt"

// Bump is the size of a version increment implied by a set of changes.
type Bump int

// Bump values are ordered by severity so they can be compared directly:
// BumpNone < BumpPatch < BumpMinor < BumpMajor.
const (
	BumpNone Bump = iota
	BumpPatch
	BumpMinor
	BumpMajor
)

// String returns the lowercase name of the bump.
func (b Bump) String() string {
	switch b {
	case BumpNone:
		return "none"
	case BumpPatch:
		return "patch"
	case BumpMinor:
		return "minor"
	case BumpMajor:
		return "major"
	}
	return fmt.Sprintf("Bump(%d)", int(b))
}

// Max returns the higher-severity of the two bumps.
func (b Bump) Max(other Bump) Bump {
	if other > b {
		return other
	}
	return b
}

// ParseBump parses a bump name ("none", "patch", "minor", "major").
func ParseBump(s string) (Bump, error) {
	switch s {
	case "none":
		return BumpNone, nil
	case "patch":
		return BumpPatch, nil
	case "minor":
		return BumpMinor, nil
	case "major":
		return BumpMajor, nil
	}
	return BumpNone, fmt.Errorf("invalid bump %q: valid options are none, patch, minor, major", s)
}
