package lars

import (
	"errors"
	"fmt"
)

// Common errors returned by service operations
var (
	// ErrNotFound indicates no service with the given name is registered
	ErrNotFound = errors.New("lars: service not found")

	// ErrDuplicateName indicates an add or rename collides with an
	// existing service name
	ErrDuplicateName = errors.New("lars: service name already exists")

	// ErrBackendUnavailable indicates the backend tooling is missing or
	// cannot be queried (e.g. tmux is not installed)
	ErrBackendUnavailable = errors.New("lars: backend unavailable")

	// ErrLaunchFailed indicates the backend accepted the call but the
	// underlying command could not be launched
	ErrLaunchFailed = errors.New("lars: launch failed")

	// ErrStopTimeout indicates a service did not stop within the
	// configured restart timeout
	ErrStopTimeout = errors.New("lars: timeout waiting for service to stop")

	// ErrSourceEnded signals that a log follow terminated because the
	// backend session ended. It is a stream terminator, not a failure.
	ErrSourceEnded = errors.New("lars: log source ended")

	// ErrAttachUnsupported indicates the runner has no interactive session
	ErrAttachUnsupported = errors.New("lars: runner does not support attach")

	// ErrInvalidName indicates a service name failed validation
	ErrInvalidName = errors.New("lars: invalid service name")

	// ErrUnknownRunner indicates an unrecognized backend kind string
	ErrUnknownRunner = errors.New("lars: unknown runner kind")

	// ErrUnknownShutdown indicates an unrecognized shutdown behavior string
	ErrUnknownShutdown = errors.New("lars: unknown shutdown behavior")

	// ErrImportCollision indicates an import would collide with existing
	// service names and no overwrite was requested
	ErrImportCollision = errors.New("lars: import collides with existing services")
)

// Op identifies the lifecycle operation an error originated from
type Op int

const (
	// OpUnknown represents an unidentified operation
	OpUnknown Op = iota
	// OpStart starts a service
	OpStart
	// OpStop stops a service
	OpStop
	// OpRestart restarts a service
	OpRestart
	// OpStatus queries backend liveness
	OpStatus
	// OpAttach attaches the terminal to a session
	OpAttach
	// OpLogs reads or follows a service's log sink
	OpLogs
	// OpStore loads or saves the registry document
	OpStore
)

const (
	opUnknownStr = "unknown"
	opStartStr   = "start"
	opStopStr    = "stop"
	opRestartStr = "restart"
	opStatusStr  = "status"
	opAttachStr  = "attach"
	opLogsStr    = "logs"
	opStoreStr   = "store"
)

// String returns the string representation of an Op
func (op Op) String() string {
	switch op {
	case OpStart:
		return opStartStr
	case OpStop:
		return opStopStr
	case OpRestart:
		return opRestartStr
	case OpStatus:
		return opStatusStr
	case OpAttach:
		return opAttachStr
	case OpLogs:
		return opLogsStr
	case OpStore:
		return opStoreStr
	default:
		return opUnknownStr
	}
}

// OpError represents an error from a service operation
type OpError struct {
	// Op is the operation that failed
	Op Op
	// Name is the service name (or input string) involved
	Name string
	// Err is the underlying error
	Err error
}

// Error returns a formatted error message
func (e *OpError) Error() string {
	return fmt.Sprintf("lars %s %q: %v", e.Op.String(), e.Name, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *OpError) Unwrap() error {
	return e.Err
}

// MultiError aggregates multiple errors from bulk operations
type MultiError struct {
	// Errors contains all accumulated errors
	Errors []error
}

// Error returns a summary of the accumulated errors
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors occurred", len(m.Errors))
}

// Add appends an error to the collection if it's not nil
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// Err returns nil if no errors occurred, otherwise returns the MultiError itself
func (m *MultiError) Err() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}

// Unwrap exposes the accumulated errors to errors.Is / errors.As
func (m *MultiError) Unwrap() []error {
	return m.Errors
}
