package config

// Defaults returns the default configuration values.
func Defaults() map[string]any {
	return map[string]any{
		"workspace_dir":  ".changekit",
		"base_branch":    "main",
		"changelog_name": "CHANGELOG.md",
		"fetch_attempts": 3,
		"fetch_delay_ms": 100,
		"plain":          false,
	}
}
