package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the XDG-compliant user config path
// (~/.config/changekit/config.yml).
func UserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "changekit", "config.yml"), nil
}

// ProjectConfigPath returns the project config path relative to the
// working directory (.changekit/config.yml).
func ProjectConfigPath() string {
	return filepath.Join(".changekit", "config.yml")
}

// LegacyProjectConfigPath returns the deprecated JSON project config
// path (.changekit/config.json).
func LegacyProjectConfigPath() string {
	return filepath.Join(".changekit", "config.json")
}
