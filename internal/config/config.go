// Package config provides hierarchical configuration for changekit using
// koanf. Values load with priority: environment variables (CHANGEKIT_*)
// > project config (.changekit/config.yml) > user config
// (~/.config/changekit/config.yml) > defaults. Legacy JSON project
// configs are still read, with a migration warning.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Configuration holds the changekit settings.
type Configuration struct {
	// WorkspaceDir is the state directory relative to the repo root.
	WorkspaceDir string `koanf:"workspace_dir"`

	// BaseBranch is the branch verify diffs against.
	// Can be set via CHANGEKIT_BASE_BRANCH.
	BaseBranch string `koanf:"base_branch"`

	// ChangelogName is the per-package changelog filename.
	ChangelogName string `koanf:"changelog_name"`

	// FetchAttempts bounds retries when reading package state during a
	// release. Can be set via CHANGEKIT_FETCH_ATTEMPTS.
	FetchAttempts int `koanf:"fetch_attempts"`

	// FetchDelayMS is the pause between fetch attempts in milliseconds.
	FetchDelayMS int `koanf:"fetch_delay_ms"`

	// Plain disables colors and icons in terminal output.
	// Can also be set via NO_COLOR or CHANGEKIT_PLAIN.
	Plain bool `koanf:"plain"`
}

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (for testing).
	ProjectConfigPath string
	// WarningWriter receives migration warnings (default: os.Stderr).
	WarningWriter io.Writer
	// SkipWarnings suppresses migration warnings.
	SkipWarnings bool
}

// Load loads configuration from user, project, and environment sources.
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options.
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	warningWriter := opts.WarningWriter
	if warningWriter == nil {
		warningWriter = os.Stderr
	}

	for key, value := range Defaults() {
		k.Set(key, value)
	}

	if err := loadUserConfig(k); err != nil {
		return nil, err
	}

	if err := loadProjectConfig(k, opts.ProjectConfigPath, warningWriter, opts.SkipWarnings); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider("CHANGEKIT_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if os.Getenv("NO_COLOR") != "" {
		cfg.Plain = true
	}

	return &cfg, nil
}

// loadUserConfig loads the XDG user config if present.
func loadUserConfig(k *koanf.Koanf) error {
	path, err := UserConfigPath()
	if err != nil || !fileExists(path) {
		return nil
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("loading user config %s: %w", path, err)
	}
	return nil
}

// loadProjectConfig loads the project config, preferring YAML and
// falling back to legacy JSON with a warning.
func loadProjectConfig(k *koanf.Koanf, customPath string, warningWriter io.Writer, skipWarnings bool) error {
	yamlPath := ProjectConfigPath()
	if customPath != "" {
		yamlPath = customPath
	}
	legacyPath := LegacyProjectConfigPath()

	if fileExists(yamlPath) {
		if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading project config %s: %w", yamlPath, err)
		}
		return nil
	}

	if fileExists(legacyPath) {
		if err := k.Load(file.Provider(legacyPath), json.Parser()); err != nil {
			return fmt.Errorf("loading legacy project config %s: %w", legacyPath, err)
		}
		if !skipWarnings {
			fmt.Fprintf(warningWriter, "Warning: Using deprecated JSON config at %s\n", legacyPath)
			fmt.Fprintf(warningWriter, "  Rename it to %s in YAML format.\n\n", ProjectConfigPath())
		}
	}
	return nil
}

// envTransform converts environment variable names to config keys.
// Example: CHANGEKIT_BASE_BRANCH -> base_branch
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, "CHANGEKIT_"))
}

// fileExists returns true if the file exists and is readable.
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
