package cli

import (
	"errors"
	"fmt"
)

// Process exit codes. Usage errors are distinguished from general failures
// so scripts can tell a typo from a failed call.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// UsageError reports bad or missing command-line arguments. Path is the full
// invocation path of the command that rejected the input.
type UsageError struct {
	Path  string
	Err   error
	Usage string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// ExitCode maps an Execute error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var usage *UsageError
	if errors.As(err, &usage) {
		return ExitUsage
	}
	return ExitError
}
