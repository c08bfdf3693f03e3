package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/changekit/changekit/internal/errors"
	"github.com/changekit/changekit/internal/record"
	"github.com/changekit/changekit/internal/semver"
)

func resetChangelogFlags(t *testing.T) {
	t.Helper()
	old := changelogPendingFlag
	t.Cleanup(func() { changelogPendingFlag = old })
	changelogPendingFlag = false
}

func TestChangelogCmdRegistration(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Use == "changelog <package>" {
			found = true
			break
		}
	}
	assert.True(t, found, "changelog command should be registered")
}

func TestChangelogCmdArgs(t *testing.T) {
	assert.Error(t, changelogCmd.Args(changelogCmd, []string{}))
	assert.NoError(t, changelogCmd.Args(changelogCmd, []string{"sdk/core"}))
	assert.Error(t, changelogCmd.Args(changelogCmd, []string{"sdk/core", "extra"}))
}

func TestRunChangelogPrintsFile(t *testing.T) {
	tmp := testWorkspace(t)
	resetChangelogFlags(t)
	seedStore(t, tmp, "sdk/core", semver.Version{Major: 1})

	dir := filepath.Join(tmp, "sdk", "core")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := "# Release History\n\n## 1.0.0 (2026-08-01)\n\n### Features Added\n\n- initial release\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CHANGELOG.md"), []byte(content), 0o644))

	cmd, out := newTestCmd()
	require.NoError(t, runChangelog(cmd, "sdk/core"))
	assert.Equal(t, content, out.String())
}

func TestRunChangelogMissingFile(t *testing.T) {
	tmp := testWorkspace(t)
	resetChangelogFlags(t)
	seedStore(t, tmp, "sdk/core", semver.Version{Major: 1})

	cmd, _ := newTestCmd()
	err := runChangelog(cmd, "sdk/core")
	require.Error(t, err)
	cliErr := errors.AsCLIError(err)
	require.NotNil(t, cliErr)
	assert.Equal(t, errors.Prerequisite, cliErr.Category)
}

func TestRunChangelogPendingPreview(t *testing.T) {
	tmp := testWorkspace(t)
	resetChangelogFlags(t)
	changelogPendingFlag = true

	seedStore(t, tmp, "sdk/core", semver.Version{Major: 1},
		record.ChangeRecord{
			ID:          "drop-legacy-api",
			Kind:        record.KindBreaking,
			Packages:    []string{"sdk/core"},
			Description: "remove the deprecated v1 client",
			Created:     time.Now().UTC(),
		})

	cmd, out := newTestCmd()
	require.NoError(t, runChangelog(cmd, "sdk/core"))

	got := out.String()
	assert.Contains(t, got, "sdk/core 2.0.0")
	assert.Contains(t, got, "Breaking Changes")
	assert.Contains(t, got, "remove the deprecated v1 client")
}

func TestRunChangelogPendingEmpty(t *testing.T) {
	tmp := testWorkspace(t)
	resetChangelogFlags(t)
	changelogPendingFlag = true

	seedStore(t, tmp, "sdk/core", semver.Version{Major: 1})

	cmd, out := newTestCmd()
	require.NoError(t, runChangelog(cmd, "sdk/core"))
	assert.Contains(t, out.String(), "No pending changes")
}
