package record

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/changekit/changekit/internal/semver"
)

func TestParseKind(t *testing.T) {
	tests := map[string]struct {
		input   string
		want    Kind
		wantErr bool
	}{
		"breaking":             {input: "breaking", want: KindBreaking},
		"feature":              {input: "feature", want: KindFeature},
		"deprecation":          {input: "deprecation", want: KindDeprecation},
		"fix":                  {input: "fix", want: KindFix},
		"dependencies":         {input: "dependencies", want: KindDependencies},
		"internal":             {input: "internal", want: KindInternal},
		"uppercase normalized": {input: "Feature", want: KindFeature},
		"whitespace trimmed":   {input: "  fix  ", want: KindFix},
		"unknown kind":         {input: "urgent", wantErr: true},
		"empty":                {input: "", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseKind(tc.input)
			if tc.wantErr {
				var invalidKind *InvalidKindError
				require.ErrorAs(t, err, &invalidKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestKindBump(t *testing.T) {
	tests := map[Kind]semver.Bump{
		KindBreaking:     semver.BumpMajor,
		KindFeature:      semver.BumpMinor,
		KindDeprecation:  semver.BumpMinor,
		KindFix:          semver.BumpPatch,
		KindDependencies: semver.BumpPatch,
		KindInternal:     semver.BumpNone,
	}

	for kind, want := range tests {
		assert.Equal(t, want, kind.Bump(), "kind %s", kind)
	}
}

func TestKindSection(t *testing.T) {
	tests := map[Kind]Section{
		KindBreaking:     SectionBreaking,
		KindFeature:      SectionFeatures,
		KindFix:          SectionFixes,
		KindDeprecation:  SectionOther,
		KindDependencies: SectionOther,
		KindInternal:     SectionOther,
	}

	for kind, want := range tests {
		section, err := kind.Section()
		require.NoError(t, err)
		assert.Equal(t, want, section, "kind %s", kind)
	}
}

func TestKindSectionUnroutable(t *testing.T) {
	_, err := Kind("urgent").Section()

	var unroutable *UnroutableKindError
	require.ErrorAs(t, err, &unroutable)
	assert.Equal(t, "urgent", unroutable.Kind)
}

func TestValidate(t *testing.T) {
	valid := ChangeRecord{
		ID:          "add-retry-flag",
		Kind:        KindFeature,
		Packages:    []string{"pkg/a"},
		Description: "Added a retry flag",
		Created:     time.Now(),
	}

	tests := map[string]struct {
		mutate  func(r *ChangeRecord)
		wantErr error
	}{
		"valid record": {
			mutate: func(r *ChangeRecord) {},
		},
		"missing id": {
			mutate:  func(r *ChangeRecord) { r.ID = "  " },
			wantErr: errors.New("change record id is required"),
		},
		"invalid kind": {
			mutate:  func(r *ChangeRecord) { r.Kind = "urgent" },
			wantErr: &InvalidKindError{},
		},
		"empty package set": {
			mutate:  func(r *ChangeRecord) { r.Packages = nil },
			wantErr: &EmptyPackageSetError{},
		},
		"blank package path": {
			mutate:  func(r *ChangeRecord) { r.Packages = []string{"pkg/a", ""} },
			wantErr: errors.New("package path cannot be empty"),
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := valid
			r.Packages = append([]string(nil), valid.Packages...)
			tc.mutate(&r)

			err := r.Validate()
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)

			switch tc.wantErr.(type) {
			case *InvalidKindError:
				var target *InvalidKindError
				assert.ErrorAs(t, err, &target)
			case *EmptyPackageSetError:
				var target *EmptyPackageSetError
				assert.ErrorAs(t, err, &target)
			}
		})
	}
}

func TestAffects(t *testing.T) {
	r := ChangeRecord{Packages: []string{"pkg/a", "pkg/b"}}

	assert.True(t, r.Affects("pkg/a"))
	assert.True(t, r.Affects("pkg/b"))
	assert.False(t, r.Affects("pkg/c"))
	assert.False(t, r.Affects("pkg"))
}

func TestSortByCreation(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []ChangeRecord{
		{ID: "c", Created: base.Add(2 * time.Minute)},
		{ID: "b", Created: base},
		{ID: "a", Created: base},
	}

	SortByCreation(records)

	ids := []string{records[0].ID, records[1].ID, records[2].ID}
	assert.Equal(t, []string{"a", "b", "c"}, ids, "ties break by id")
}

func TestSectionsOrder(t *testing.T) {
	assert.Equal(t, []Section{SectionBreaking, SectionFeatures, SectionFixes, SectionOther}, Sections())
}
