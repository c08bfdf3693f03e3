package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/changekit/changekit/internal/record"
	"github.com/changekit/changekit/internal/semver"
)

// recordsOf builds minimal records with the given kinds.
func recordsOf(kinds ...record.Kind) []record.ChangeRecord {
	records := make([]record.ChangeRecord, len(kinds))
	for i, k := range kinds {
		records[i] = record.ChangeRecord{ID: string(k), Kind: k, Packages: []string{"pkg/a"}}
	}
	return records
}

func TestBump(t *testing.T) {
	tests := map[string]struct {
		kinds []record.Kind
		want  semver.Bump
	}{
		"empty set yields none": {
			kinds: nil,
			want:  semver.BumpNone,
		},
		"single internal yields none": {
			kinds: []record.Kind{record.KindInternal},
			want:  semver.BumpNone,
		},
		"single fix yields patch": {
			kinds: []record.Kind{record.KindFix},
			want:  semver.BumpPatch,
		},
		"dependencies yields patch": {
			kinds: []record.Kind{record.KindDependencies},
			want:  semver.BumpPatch,
		},
		"feature yields minor": {
			kinds: []record.Kind{record.KindFeature},
			want:  semver.BumpMinor,
		},
		"deprecation yields minor": {
			kinds: []record.Kind{record.KindDeprecation},
			want:  semver.BumpMinor,
		},
		"breaking yields major": {
			kinds: []record.Kind{record.KindBreaking},
			want:  semver.BumpMajor,
		},
		"fix plus feature plus internal yields minor": {
			kinds: []record.Kind{record.KindFix, record.KindFeature, record.KindInternal},
			want:  semver.BumpMinor,
		},
		"breaking dominates everything": {
			kinds: []record.Kind{record.KindInternal, record.KindFix, record.KindFeature, record.KindBreaking},
			want:  semver.BumpMajor,
		},
		"many patches stay patch not aggregate": {
			kinds: []record.Kind{record.KindFix, record.KindFix, record.KindFix, record.KindDependencies},
			want:  semver.BumpPatch,
		},
		"order does not matter": {
			kinds: []record.Kind{record.KindBreaking, record.KindInternal},
			want:  semver.BumpMajor,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, Bump(recordsOf(tc.kinds...)))
		})
	}
}
