// Package render turns a package's pending change records into a release
// note and formats it as markdown or styled terminal output.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/changekit/changekit/internal/record"
	"github.com/changekit/changekit/internal/semver"
)

// ReleaseNote is the rendered changelog content for one package release.
// Sections appear in the fixed order Breaking Changes, Features Added,
// Bugs Fixed, Other Changes; sections with no entries are omitted.
type ReleaseNote struct {
	Package  string
	Version  semver.Version
	Date     string
	Sections []NoteSection
}

// NoteSection is one changelog section with its ordered entries.
type NoteSection struct {
	Name    record.Section
	Entries []string
}

// Build groups records into a ReleaseNote for the given package and
// target version. Records keep their creation order within each section;
// callers pass records already in creation order (as ListPending
// returns them). Returns UnroutableKindError if a record carries a kind
// with no section mapping, which indicates a store invariant violation.
func Build(pkg string, version semver.Version, date string, records []record.ChangeRecord) (*ReleaseNote, error) {
	grouped := make(map[record.Section][]string)
	for _, r := range records {
		section, err := r.Kind.Section()
		if err != nil {
			return nil, err
		}
		grouped[section] = append(grouped[section], r.Description)
	}

	note := &ReleaseNote{Package: pkg, Version: version, Date: date}
	for _, section := range record.Sections() {
		if entries := grouped[section]; len(entries) > 0 {
			note.Sections = append(note.Sections, NoteSection{Name: section, Entries: entries})
		}
	}
	return note, nil
}

// Markdown renders the release note as a changelog section.
func Markdown(note *ReleaseNote, w io.Writer) error {
	header := fmt.Sprintf("## %s", note.Version)
	if note.Date != "" {
		header = fmt.Sprintf("%s (%s)", header, note.Date)
	}
	if _, err := fmt.Fprintf(w, "%s\n", header); err != nil {
		return err
	}

	for _, section := range note.Sections {
		if _, err := fmt.Fprintf(w, "\n### %s\n\n", section.Name); err != nil {
			return err
		}
		for _, entry := range section.Entries {
			if _, err := fmt.Fprintf(w, "- %s\n", entry); err != nil {
				return err
			}
		}
	}
	return nil
}

// MarkdownString renders the release note section to a string.
func MarkdownString(note *ReleaseNote) (string, error) {
	var b strings.Builder
	if err := Markdown(note, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// changelogHeader is the document header written to a fresh CHANGELOG.md.
func changelogHeader(pkg string) string {
	return fmt.Sprintf("# Release History\n\nAll notable changes to %s are documented in this file.\n", pkg)
}

// MergeIntoChangelog inserts a rendered section into existing changelog
// content, newest release first. An empty existing document gets the
// standard header; otherwise the new section lands directly after the
// document header, before earlier releases.
func MergeIntoChangelog(existing, pkg, section string) string {
	section = strings.TrimRight(section, "\n") + "\n"

	if strings.TrimSpace(existing) == "" {
		return changelogHeader(pkg) + "\n" + section
	}

	lines := strings.SplitAfter(existing, "\n")
	insertAt := 0
	for i, line := range lines {
		if strings.HasPrefix(line, "## ") {
			insertAt = i
			break
		}
		insertAt = i + 1
	}

	var b strings.Builder
	for _, line := range lines[:insertAt] {
		b.WriteString(line)
	}
	if insertAt > 0 && !strings.HasSuffix(b.String(), "\n\n") {
		b.WriteString("\n")
	}
	b.WriteString(section)
	if insertAt < len(lines) {
		b.WriteString("\n")
		for _, line := range lines[insertAt:] {
			b.WriteString(line)
		}
	}
	return b.String()
}
