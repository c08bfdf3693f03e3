package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/changekit/changekit/internal/errors"
)

func TestRootCmdMetadata(t *testing.T) {
	assert.Equal(t, "changekit", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
	assert.True(t, rootCmd.SilenceErrors)
}

func TestRootCmdPersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "plain"} {
		f := rootCmd.PersistentFlags().Lookup(name)
		require.NotNil(t, f, "persistent flag %s should exist", name)
	}
}

func TestRootCmdSubcommands(t *testing.T) {
	want := map[string]bool{
		"init":    false,
		"add":     false,
		"status":  false,
		"verify":  false,
		"version": false,
	}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		assert.True(t, found, "%s command should be registered", name)
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := map[string]struct {
		category errors.ErrorCategory
		want     int
	}{
		"argument errors":      {errors.Argument, ExitInvalidArguments},
		"prerequisite errors":  {errors.Prerequisite, ExitMissingPrerequisites},
		"configuration errors": {errors.Configuration, ExitFailure},
		"conflict errors":      {errors.Conflict, ExitFailure},
		"runtime errors":       {errors.Runtime, ExitFailure},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCodeFor(tt.category))
		})
	}
}
