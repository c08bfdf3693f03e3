// Package output provides terminal output formatting utilities for the
// changekit CLI. This package is designed to have minimal dependencies
// to avoid import cycles.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// GetTerminalWidth returns the terminal width, defaulting to 80 if
// unavailable.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// PrintSuccess prints a green checkmark followed by the message.
func PrintSuccess(out io.Writer, message string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", green("✓"), message)
}

// PrintSkipped prints a dim marker for a skipped package.
func PrintSkipped(out io.Writer, message string) {
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", dim("-"), dim(message))
}

// PrintFailure prints a red cross followed by the message.
func PrintFailure(out io.Writer, message string) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", red("✗"), message)
}
