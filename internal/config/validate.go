package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration values for consistency.
func Validate(cfg *Configuration) error {
	if strings.TrimSpace(cfg.WorkspaceDir) == "" {
		return fmt.Errorf("workspace_dir cannot be empty")
	}
	if strings.TrimSpace(cfg.BaseBranch) == "" {
		return fmt.Errorf("base_branch cannot be empty")
	}
	if strings.TrimSpace(cfg.ChangelogName) == "" {
		return fmt.Errorf("changelog_name cannot be empty")
	}
	if cfg.FetchAttempts < 1 {
		return fmt.Errorf("fetch_attempts must be at least 1, got %d", cfg.FetchAttempts)
	}
	if cfg.FetchDelayMS < 0 {
		return fmt.Errorf("fetch_delay_ms cannot be negative, got %d", cfg.FetchDelayMS)
	}
	return nil
}
