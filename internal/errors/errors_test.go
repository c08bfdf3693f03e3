package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryString(t *testing.T) {
	tests := map[ErrorCategory]string{
		Argument:      "Argument Error",
		Configuration: "Configuration Error",
		Prerequisite:  "Prerequisite Error",
		Conflict:      "Conflict Error",
		Runtime:       "Runtime Error",
	}

	for category, want := range tests {
		assert.Equal(t, want, category.String())
	}
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, Runtime))

	wrapped := Wrap(fmt.Errorf("disk full"), Runtime, "free some space")
	require.NotNil(t, wrapped)
	assert.Equal(t, "disk full", wrapped.Error())
	assert.Equal(t, Runtime, wrapped.Category)
	assert.Equal(t, []string{"free some space"}, wrapped.Remediation)
}

func TestWrapWithMessage(t *testing.T) {
	wrapped := WrapWithMessage(fmt.Errorf("ENOENT"), Prerequisite, "reading workspace")
	require.NotNil(t, wrapped)
	assert.Equal(t, "reading workspace: ENOENT", wrapped.Message)
}

func TestAsCLIError(t *testing.T) {
	cliErr := NewArgumentError("bad flag")
	assert.Equal(t, cliErr, AsCLIError(cliErr))
	assert.Nil(t, AsCLIError(fmt.Errorf("plain")))
}

func TestFormatErrorPlain(t *testing.T) {
	err := &CLIError{
		Category:    Argument,
		Message:     "invalid change kind \"urgent\"",
		Usage:       "changekit add --kind <kind> --package <path> --message <text>",
		Remediation: []string{"use one of: breaking, feature, deprecation, fix, dependencies, internal"},
	}

	out := FormatErrorPlain(err)

	assert.Contains(t, out, "Error [Argument Error]: invalid change kind")
	assert.Contains(t, out, "Usage: changekit add")
	assert.Contains(t, out, "To fix this:")
	assert.Contains(t, out, "  • use one of:")
}

func TestFormatErrorNil(t *testing.T) {
	assert.Empty(t, FormatError(nil))
	assert.Empty(t, FormatErrorPlain(nil))
}
