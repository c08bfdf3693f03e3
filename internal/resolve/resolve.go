// Package resolve computes the semantic version bump implied by a set of
// pending change records.
package resolve

import (
	"github.com/changekit/changekit/internal/record"
	"github.com/changekit/changekit/internal/semver"
)

// Bump returns the version bump for a package's pending records: the
// single highest-severity bump across all record kinds. An empty record
// set yields BumpNone, which the release step treats as "skip".
func Bump(records []record.ChangeRecord) semver.Bump {
	result := semver.BumpNone
	for _, r := range records {
		result = result.Max(r.Kind.Bump())
	}
	return result
}
