package history

import (
	"fmt"
	"os"
	"sync"
)

// Writer appends release entries with automatic pruning. Appends are
// serialized within the process.
type Writer struct {
	// StateDir is the directory containing the history file.
	StateDir string
	// MaxEntries is the maximum number of entries to retain.
	MaxEntries int

	mu sync.Mutex
}

// NewWriter creates a history writer.
func NewWriter(stateDir string, maxEntries int) *Writer {
	return &Writer{StateDir: stateDir, MaxEntries: maxEntries}
}

// LogRelease adds a release entry to the ledger.
// Errors are non-fatal: the release itself already succeeded, so a
// failed ledger write is reported on stderr and otherwise ignored.
func (w *Writer) LogRelease(entry Entry) {
	if err := w.logRelease(entry); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record release history: %v\n", err)
	}
}

func (w *Writer) logRelease(entry Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := Load(w.StateDir)
	if err != nil {
		return err
	}

	f.Entries = append(f.Entries, entry)

	if w.MaxEntries > 0 && len(f.Entries) > w.MaxEntries {
		excess := len(f.Entries) - w.MaxEntries
		f.Entries = f.Entries[excess:]
	}

	return Save(w.StateDir, f)
}
