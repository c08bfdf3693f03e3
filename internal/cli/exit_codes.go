package cli

import "fmt"

// Exit codes for the changekit CLI.
// These codes support programmatic composition and CI/CD integration.
const (
	// ExitSuccess indicates successful command execution.
	ExitSuccess = 0

	// ExitFailure indicates a verification gate failure or a failed
	// release (conflict, fetch exhaustion).
	ExitFailure = 1

	// ExitInvalidArguments indicates invalid command arguments.
	ExitInvalidArguments = 3

	// ExitMissingPrerequisites indicates the repository or workspace is
	// not in a usable state.
	ExitMissingPrerequisites = 4
)

// ExitError carries a specific process exit code through cobra's error
// return path. The message, if any, has already been printed.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// NewExitError creates an ExitError with the given code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}
