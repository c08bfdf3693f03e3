// Package progress provides spinner-based progress indication for
// longer-running commands, degrading gracefully on non-interactive
// terminals.
package progress

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// TerminalCapabilities describes what the attached terminal supports.
type TerminalCapabilities struct {
	IsTTY           bool
	SupportsColor   bool
	SupportsUnicode bool
	Width           int
}

// DetectTerminalCapabilities detects terminal features.
// Checks: stdout isatty, NO_COLOR env, CHANGEKIT_ASCII env, width.
func DetectTerminalCapabilities() TerminalCapabilities {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))

	noColor := os.Getenv("NO_COLOR") != ""
	forceASCII := os.Getenv("CHANGEKIT_ASCII") == "1"

	width := 0
	if isTTY {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
		}
	}

	return TerminalCapabilities{
		IsTTY:           isTTY,
		SupportsColor:   isTTY && !noColor,
		SupportsUnicode: isTTY && !forceASCII,
		Width:           width,
	}
}

// spinnerSet selects the charset: Unicode braille dots when supported,
// ASCII bars otherwise.
func spinnerSet(caps TerminalCapabilities) int {
	if caps.SupportsUnicode {
		return 14
	}
	return 9
}

// Spinner wraps a terminal spinner that becomes a no-op when stdout is
// not a TTY, so CI logs stay clean.
type Spinner struct {
	inner *spinner.Spinner
}

// Start creates and starts a spinner with the given suffix message.
// Returns a no-op spinner on non-interactive terminals.
func Start(message string) *Spinner {
	caps := DetectTerminalCapabilities()
	if !caps.IsTTY {
		return &Spinner{}
	}

	s := spinner.New(spinner.CharSets[spinnerSet(caps)], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Start()
	return &Spinner{inner: s}
}

// Stop halts the spinner and clears its line.
func (s *Spinner) Stop() {
	if s.inner != nil {
		s.inner.Stop()
	}
}
