package cmd

// Exit codes for resptag CLI
const (
	// ExitSuccess indicates the command succeeded
	ExitSuccess = 0

	// ExitExtractError indicates an extraction failed
	ExitExtractError = 1

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitStoreError indicates the request store could not be used
	ExitStoreError = 5

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// ExitError carries the exit code for a failed command. Reported is set when
// the error was already printed.
type ExitError struct {
	Code     int
	Err      error
	Reported bool
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
