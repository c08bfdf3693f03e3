package render

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/changekit/changekit/internal/record"
)

// SectionStyle defines the color and icon for a changelog section.
type SectionStyle struct {
	Color *color.Color
	Icon  string
}

// sectionStyles maps sections to their terminal styling.
var sectionStyles = map[record.Section]SectionStyle{
	record.SectionBreaking: {Color: color.New(color.FgRed), Icon: "⚠"},
	record.SectionFeatures: {Color: color.New(color.FgGreen), Icon: "✓"},
	record.SectionFixes:    {Color: color.New(color.FgYellow), Icon: "⚡"},
	record.SectionOther:    {Color: color.New(color.FgBlue), Icon: "~"},
}

// FormatOptions controls terminal output formatting.
type FormatOptions struct {
	Plain    bool // Disable colors and icons
	MaxWidth int  // Maximum line width (0 = auto-detect)
}

// resolveWidth returns the effective line width.
func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// FormatTerminal writes a release note to the writer with terminal
// styling: a bold version header and color-coded section headings.
func FormatTerminal(note *ReleaseNote, w io.Writer, opts FormatOptions) error {
	width := resolveWidth(opts.MaxWidth)

	header := fmt.Sprintf("%s %s", note.Package, note.Version)
	if note.Date != "" {
		header = fmt.Sprintf("%s (%s)", header, note.Date)
	}
	if !opts.Plain {
		header = color.New(color.Bold).Sprint(header)
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	for _, section := range note.Sections {
		if err := formatSection(section, w, opts, width); err != nil {
			return fmt.Errorf("formatting section %s: %w", section.Name, err)
		}
	}
	return nil
}

// formatSection writes one section heading and its entries.
func formatSection(section NoteSection, w io.Writer, opts FormatOptions, width int) error {
	heading := string(section.Name)
	if !opts.Plain {
		if style, ok := sectionStyles[section.Name]; ok {
			heading = style.Color.Sprintf("%s %s", style.Icon, heading)
		}
	}
	if _, err := fmt.Fprintf(w, "\n%s\n", heading); err != nil {
		return err
	}

	for _, entry := range section.Entries {
		if _, err := fmt.Fprintf(w, "  - %s\n", truncate(entry, width-4)); err != nil {
			return err
		}
	}
	return nil
}

// truncate shortens an entry to fit the terminal width, cutting on rune
// boundaries.
func truncate(s string, width int) string {
	if width <= 3 || utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}
