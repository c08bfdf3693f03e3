// Package history records cut releases in a workspace-local ledger so
// past releases can be inspected without walking changelog files.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const historyFileName = "history.yaml"

// Entry describes one cut release.
type Entry struct {
	Timestamp time.Time `yaml:"timestamp"`
	Package   string    `yaml:"package"`
	From      string    `yaml:"from"`
	To        string    `yaml:"to"`
	Bump      string    `yaml:"bump"`
	// Records is the number of change records the release consumed.
	Records int `yaml:"records"`
}

// File is the on-disk history ledger.
type File struct {
	Entries []Entry `yaml:"entries"`
}

func historyPath(stateDir string) string {
	return filepath.Join(stateDir, historyFileName)
}

// Load reads the ledger from stateDir. A missing file yields an empty
// ledger.
func Load(stateDir string) (*File, error) {
	data, err := os.ReadFile(historyPath(stateDir))
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("reading history: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing history: %w", err)
	}
	return &f, nil
}

// Save writes the ledger to stateDir atomically.
func Save(stateDir string, f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	tmp, err := os.CreateTemp(stateDir, historyFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp history file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing history file: %w", err)
	}
	if err := os.Rename(tmpName, historyPath(stateDir)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing history file: %w", err)
	}
	return nil
}

// Clear removes the ledger. Missing files are not an error.
func Clear(stateDir string) error {
	err := os.Remove(historyPath(stateDir))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}
