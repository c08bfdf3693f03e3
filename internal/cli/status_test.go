package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/changekit/changekit/internal/record"
	"github.com/changekit/changekit/internal/semver"
	"github.com/changekit/changekit/internal/store"
)

// seedStore initializes a workspace store in dir with one registered
// package and the given pending records.
func seedStore(t *testing.T, dir, pkg string, version semver.Version, records ...record.ChangeRecord) *store.Store {
	t.Helper()
	s, err := store.Init(filepath.Join(dir, ".changekit"))
	require.NoError(t, err)
	require.NoError(t, s.RegisterPackage(pkg, version))
	for _, r := range records {
		require.NoError(t, s.Add(r))
	}
	return s
}

func TestStatusCmdRegistration(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Use == "status" {
			found = true
			break
		}
	}
	assert.True(t, found, "status command should be registered")
}

func TestStatusCmdFlags(t *testing.T) {
	f := statusCmd.Flags().Lookup("watch")
	require.NotNil(t, f)
	assert.Equal(t, "false", f.DefValue)
}

func TestRunStatusNoPackages(t *testing.T) {
	tmp := testWorkspace(t)
	_, err := store.Init(filepath.Join(tmp, ".changekit"))
	require.NoError(t, err)

	cmd, out := newTestCmd()
	ws, err := openWorkspace()
	require.NoError(t, err)
	require.NoError(t, printStatus(cmd, ws))
	assert.Contains(t, out.String(), "No packages registered")
}

func TestRunStatusTable(t *testing.T) {
	tmp := testWorkspace(t)
	seedStore(t, tmp, "sdk/core", semver.Version{Major: 1},
		record.ChangeRecord{
			ID:          "add-retry",
			Kind:        record.KindFeature,
			Packages:    []string{"sdk/core"},
			Description: "add retry policy",
			Created:     time.Now().UTC(),
		})

	cmd, out := newTestCmd()
	ws, err := openWorkspace()
	require.NoError(t, err)
	require.NoError(t, printStatus(cmd, ws))

	got := out.String()
	assert.Contains(t, got, "PACKAGE")
	assert.Contains(t, got, "sdk/core")
	assert.Contains(t, got, "1.0.0")
	assert.Contains(t, got, "minor")
	assert.Contains(t, got, "1.1.0")
}

func TestRunStatusInternalOnly(t *testing.T) {
	tmp := testWorkspace(t)
	seedStore(t, tmp, "sdk/core", semver.Version{Major: 2},
		record.ChangeRecord{
			ID:          "ci-tweak",
			Kind:        record.KindInternal,
			Packages:    []string{"sdk/core"},
			Description: "tune CI cache",
			Created:     time.Now().UTC(),
		})

	cmd, out := newTestCmd()
	ws, err := openWorkspace()
	require.NoError(t, err)
	require.NoError(t, printStatus(cmd, ws))

	// Internal changes yield no bump and no next version.
	assert.Contains(t, out.String(), "none")
	assert.NotContains(t, out.String(), "2.0.1")
}
