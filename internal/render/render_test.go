package render

import (
	"regexp"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/changekit/changekit/internal/record"
	"github.com/changekit/changekit/internal/semver"
)

func rec(id string, kind record.Kind, desc string) record.ChangeRecord {
	return record.ChangeRecord{
		ID:          id,
		Kind:        kind,
		Packages:    []string{"pkg/a"},
		Description: desc,
		Created:     time.Now(),
	}
}

func TestBuild(t *testing.T) {
	tests := map[string]struct {
		records      []record.ChangeRecord
		wantSections []record.Section
		wantErr      bool
	}{
		"empty records yield no sections": {
			records:      nil,
			wantSections: nil,
		},
		"single feature": {
			records:      []record.ChangeRecord{rec("r1", record.KindFeature, "Added thing")},
			wantSections: []record.Section{record.SectionFeatures},
		},
		"empty sections omitted": {
			records: []record.ChangeRecord{
				rec("r1", record.KindFix, "Fixed bug"),
				rec("r2", record.KindFeature, "Added thing"),
			},
			wantSections: []record.Section{record.SectionFeatures, record.SectionFixes},
		},
		"all sections in fixed order regardless of input order": {
			records: []record.ChangeRecord{
				rec("r1", record.KindInternal, "Refactored"),
				rec("r2", record.KindFix, "Fixed bug"),
				rec("r3", record.KindBreaking, "Removed API"),
				rec("r4", record.KindFeature, "Added thing"),
			},
			wantSections: []record.Section{
				record.SectionBreaking,
				record.SectionFeatures,
				record.SectionFixes,
				record.SectionOther,
			},
		},
		"unroutable kind surfaces invariant violation": {
			records: []record.ChangeRecord{
				{ID: "r1", Kind: "urgent", Packages: []string{"pkg/a"}, Description: "?"},
			},
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			note, err := Build("pkg/a", semver.Version{Major: 1}, "2026-08-30", tc.records)
			if tc.wantErr {
				var unroutable *record.UnroutableKindError
				require.ErrorAs(t, err, &unroutable)
				return
			}
			require.NoError(t, err)

			var got []record.Section
			for _, s := range note.Sections {
				got = append(got, s.Name)
			}
			assert.Equal(t, tc.wantSections, got)
		})
	}
}

func TestBuildPreservesCreationOrderWithinSection(t *testing.T) {
	// deprecation and dependencies both land in Other Changes; entries
	// interleave in creation order without per-kind sub-grouping.
	records := []record.ChangeRecord{
		rec("r1", record.KindDeprecation, "Deprecated old client"),
		rec("r2", record.KindDependencies, "Bumped yaml to v3"),
		rec("r3", record.KindDeprecation, "Deprecated legacy auth"),
	}

	note, err := Build("pkg/a", semver.Version{Major: 1}, "", records)
	require.NoError(t, err)

	require.Len(t, note.Sections, 1)
	assert.Equal(t, record.SectionOther, note.Sections[0].Name)
	assert.Equal(t, []string{
		"Deprecated old client",
		"Bumped yaml to v3",
		"Deprecated legacy auth",
	}, note.Sections[0].Entries)
}

// sectionHeadings extracts the "### " headings from rendered markdown.
func sectionHeadings(markdown string) []string {
	var headings []string
	for _, m := range regexp.MustCompile(`(?m)^### (.+)$`).FindAllStringSubmatch(markdown, -1) {
		headings = append(headings, m[1])
	}
	return headings
}

func TestMarkdown(t *testing.T) {
	records := []record.ChangeRecord{
		rec("r1", record.KindFix, "Fixed retry loop"),
		rec("r2", record.KindBreaking, "Renamed Client"),
		rec("r3", record.KindFeature, "Added streaming"),
	}

	note, err := Build("sdk/core", semver.Version{Major: 2}, "2026-08-30", records)
	require.NoError(t, err)

	out, err := MarkdownString(note)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "## 2.0.0 (2026-08-30)\n"))
	assert.Contains(t, out, "- Fixed retry loop\n")

	// Round-trip: re-parsing the heading order always recovers the fixed
	// section ordering, whatever order the records arrived in.
	assert.Equal(t, []string{"Breaking Changes", "Features Added", "Bugs Fixed"}, sectionHeadings(out))
}

func TestMarkdownNoDate(t *testing.T) {
	note, err := Build("pkg/a", semver.Version{Major: 1, Minor: 1}, "", []record.ChangeRecord{
		rec("r1", record.KindFeature, "Added thing"),
	})
	require.NoError(t, err)

	out, err := MarkdownString(note)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "## 1.1.0\n"))
}

func TestMergeIntoChangelog(t *testing.T) {
	section := "## 1.1.0 (2026-08-30)\n\n### Features Added\n\n- Added thing\n"

	t.Run("empty file gets header plus section", func(t *testing.T) {
		out := MergeIntoChangelog("", "sdk/core", section)

		assert.True(t, strings.HasPrefix(out, "# Release History\n"))
		assert.Contains(t, out, "## 1.1.0 (2026-08-30)")
	})

	t.Run("new section lands before earlier releases", func(t *testing.T) {
		existing := "# Release History\n\nAll notable changes to sdk/core are documented in this file.\n\n## 1.0.0 (2026-01-01)\n\n### Bugs Fixed\n\n- Old fix\n"

		out := MergeIntoChangelog(existing, "sdk/core", section)

		newIdx := strings.Index(out, "## 1.1.0")
		oldIdx := strings.Index(out, "## 1.0.0")
		require.NotEqual(t, -1, newIdx)
		require.NotEqual(t, -1, oldIdx)
		assert.Less(t, newIdx, oldIdx, "newest release first")
		assert.Contains(t, out, "- Old fix", "earlier content preserved")
	})
}

func TestFormatTerminalPlain(t *testing.T) {
	note, err := Build("pkg/a", semver.Version{Major: 1, Minor: 3}, "2026-08-30", []record.ChangeRecord{
		rec("r1", record.KindFeature, "Added streaming"),
		rec("r2", record.KindFix, "Fixed retry loop"),
	})
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, FormatTerminal(note, &b, FormatOptions{Plain: true, MaxWidth: 100}))

	out := b.String()
	assert.Contains(t, out, "pkg/a 1.3.0 (2026-08-30)")
	assert.Contains(t, out, "Features Added")
	assert.Contains(t, out, "  - Added streaming")
	assert.Contains(t, out, "Bugs Fixed")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 80))
	assert.Equal(t, "a ver...", truncate("a very long entry", 8))
	assert.Equal(t, "untouched below min width", truncate("untouched below min width", 3))

	// Multi-byte runes are never split mid-sequence.
	got := truncate("對客戶端進行了重大更改以支持新的傳輸層", 10)
	assert.Equal(t, "對客戶端進行了...", got)
	assert.True(t, utf8.ValidString(got))
}
