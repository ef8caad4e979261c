package cli

import (
	"errors"

	"github.com/axondata/go-lars"
)

// ExitCode is the process exit status for a command
type ExitCode int

// Exit codes. Individual mutating commands exit non-zero on any
// reported error; bulk commands exit non-zero only when every targeted
// service failed.
const (
	ExitSuccess           ExitCode = 0
	ExitGeneralError      ExitCode = 1
	ExitUsageError        ExitCode = 2
	ExitNotFound          ExitCode = 10
	ExitDuplicateName     ExitCode = 11
	ExitRunnerUnavailable ExitCode = 20
	ExitStartFailed       ExitCode = 21
	ExitStopFailed        ExitCode = 22
	ExitConfigError       ExitCode = 30
)

// exitError carries an explicit exit code through cobra's error return
type exitError struct {
	code ExitCode
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return "exit"
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// withCode wraps err so Execute exits with the given code
func withCode(code ExitCode, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// codeFor maps an error to its exit code
func codeFor(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	switch {
	case errors.Is(err, lars.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, lars.ErrDuplicateName), errors.Is(err, lars.ErrImportCollision):
		return ExitDuplicateName
	case errors.Is(err, lars.ErrBackendUnavailable):
		return ExitRunnerUnavailable
	case errors.Is(err, lars.ErrLaunchFailed), errors.Is(err, lars.ErrStopTimeout):
		return ExitStartFailed
	case errors.Is(err, lars.ErrInvalidName), errors.Is(err, lars.ErrUnknownRunner), errors.Is(err, lars.ErrUnknownShutdown):
		return ExitUsageError
	default:
		return ExitGeneralError
	}
}
