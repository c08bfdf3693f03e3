package health

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/changekit/changekit/internal/record"
	"github.com/changekit/changekit/internal/semver"
	"github.com/changekit/changekit/internal/store"
)

func checkByName(t *testing.T, report *Report, name string) CheckResult {
	t.Helper()
	for _, check := range report.Checks {
		if check.Name == name {
			return check
		}
	}
	t.Fatalf("no check named %q in report", name)
	return CheckResult{}
}

func TestRunChecksMissingWorkspace(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	report := RunChecks(tmp, filepath.Join(tmp, ".changekit"))

	assert.False(t, report.Passed)
	assert.False(t, checkByName(t, report, "Workspace").Passed)
	// Without a workspace the store checks are skipped.
	assert.Len(t, report.Checks, 2)
}

func TestRunChecksHealthyWorkspace(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	s, err := store.Init(filepath.Join(tmp, ".changekit"))
	require.NoError(t, err)
	require.NoError(t, s.RegisterPackage("sdk/core", semver.Version{Major: 1}))
	require.NoError(t, s.Add(record.ChangeRecord{
		ID:          "fix-a",
		Kind:        record.KindFix,
		Packages:    []string{"sdk/core"},
		Description: "fix a",
		Created:     time.Now().UTC(),
	}))

	report := RunChecks(tmp, filepath.Join(tmp, ".changekit"))

	for _, name := range []string{"Workspace", "Change records", "Package state", "Release locks"} {
		assert.True(t, checkByName(t, report, name).Passed, "%s should pass", name)
	}
	// Only the git check fails in a bare temp directory.
	assert.False(t, checkByName(t, report, "Git repository").Passed)
}

func TestRunChecksCorruptRecord(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	s, err := store.Init(filepath.Join(tmp, ".changekit"))
	require.NoError(t, err)

	path := filepath.Join(s.ChangesDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("id: broken\nkind: [not\n"), 0o644))

	report := RunChecks(tmp, filepath.Join(tmp, ".changekit"))
	assert.False(t, checkByName(t, report, "Change records").Passed)
}

func TestRunChecksLeftoverLock(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	s, err := store.Init(filepath.Join(tmp, ".changekit"))
	require.NoError(t, err)

	lockPath := filepath.Join(s.LocksDir(), "sdk--core.lock")
	require.NoError(t, os.WriteFile(lockPath, []byte("package: sdk/core\npid: 999999\n"), 0o644))

	report := RunChecks(tmp, filepath.Join(tmp, ".changekit"))
	check := checkByName(t, report, "Release locks")
	assert.False(t, check.Passed)
	assert.Contains(t, check.Message, "sdk--core.lock")
}
