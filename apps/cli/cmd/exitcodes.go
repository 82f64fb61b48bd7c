package cmd

import "fmt"

// Exit codes for httpcall CLI
const (
	// ExitSuccess indicates all requests passed
	ExitSuccess = 0

	// ExitTestFailure indicates one or more responses failed their checks
	ExitTestFailure = 1

	// ExitParseError indicates a job file could not be loaded or validated
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// ExitError carries a process exit code out of a command. A nil Err exits
// silently, for failures the command already reported.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func exitWith(code int, err error) error {
	return &ExitError{Code: code, Err: err}
}
