package lars

import "time"

// Session and file naming constants
const (
	// SessionPrefix is prepended to a service's ID to form its backend
	// session name. The ID is immutable, so renaming a service never
	// changes the session it is bound to.
	SessionPrefix = "lars-"

	// ConfigFileName is the name of the registry document on disk
	ConfigFileName = "config.json"

	// LockFileName is the advisory lock taken around registry mutation
	LockFileName = "lars.lock"

	// LogFileExt is the extension of per-service log sinks
	LogFileExt = ".log"

	// MarkerFileExt is the extension of per-service started markers
	MarkerFileExt = ".started"

	// PIDFileExt is the extension of raw-process pidfiles
	PIDFileExt = ".pid"
)

// Defaults for runner and streaming behavior
const (
	// DefaultExecTimeout is the timeout for a single backend invocation
	DefaultExecTimeout = 5 * time.Second

	// DefaultStopPoll is the interval between liveness checks while
	// waiting for a stopped service's session to disappear
	DefaultStopPoll = 100 * time.Millisecond

	// DefaultRestartTimeoutSecs is how long restart waits for the old
	// session to be gone before giving up
	DefaultRestartTimeoutSecs = 10

	// DefaultLivenessPoll is the interval at which follow-mode log
	// streaming re-checks that the backend session still exists
	DefaultLivenessPoll = 2 * time.Second

	// DefaultFollowDebounce coalesces rapid log writes into one read
	DefaultFollowDebounce = 10 * time.Millisecond

	// DefaultTailLines is the number of lines a one-shot log dump returns
	DefaultTailLines = 50
)

// File modes
const (
	// DirMode is the default mode for created directories
	DirMode = 0o755

	// FileMode is the default mode for created files
	FileMode = 0o644
)

// RunnerKind selects which execution backend manages a service.
// It is fixed at creation time; changing it requires stop + recreate.
type RunnerKind int

const (
	// RunnerUnknown represents an unrecognized backend kind
	RunnerUnknown RunnerKind = iota
	// RunnerTmux manages the service inside a named tmux session
	RunnerTmux
	// RunnerProcess manages the service as a directly spawned process
	RunnerProcess
)

const (
	runnerUnknownStr = "unknown"
	runnerTmuxStr    = "tmux"
	runnerProcessStr = "process"
)

// String returns the string representation of a RunnerKind
func (k RunnerKind) String() string {
	switch k {
	case RunnerTmux:
		return runnerTmuxStr
	case RunnerProcess:
		return runnerProcessStr
	default:
		return runnerUnknownStr
	}
}

// MarshalText implements encoding.TextMarshaler for JSON documents
func (k RunnerKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *RunnerKind) UnmarshalText(text []byte) error {
	parsed, err := ParseRunnerKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseRunnerKind parses a backend kind from its string form
func ParseRunnerKind(s string) (RunnerKind, error) {
	switch s {
	case runnerTmuxStr, "":
		return RunnerTmux, nil
	case runnerProcessStr:
		return RunnerProcess, nil
	default:
		return RunnerUnknown, &OpError{Op: OpUnknown, Name: s, Err: ErrUnknownRunner}
	}
}

// State is the observed status of a service, derived by reconciliation.
// It is never persisted; the backend's live query is the sole source of
// truth for "running".
type State int

const (
	// StateUnknown means the backend could not be queried
	StateUnknown State = iota
	// StateStopped means the service is not running and no start was recorded
	StateStopped
	// StateRunning means the backend session/process is alive
	StateRunning
	// StateCrashed means a start was recorded but the backend is gone
	StateCrashed
)

const (
	stateUnknownStr = "unknown"
	stateStoppedStr = "stopped"
	stateRunningStr = "running"
	stateCrashedStr = "crashed"
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case StateStopped:
		return stateStoppedStr
	case StateRunning:
		return stateRunningStr
	case StateCrashed:
		return stateCrashedStr
	default:
		return stateUnknownStr
	}
}

// MarshalText implements encoding.TextMarshaler
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ShutdownBehavior controls what happens to running services when the
// controlling application exits.
type ShutdownBehavior int

const (
	// ShutdownStopAll stops every running service on exit
	ShutdownStopAll ShutdownBehavior = iota
	// ShutdownLeaveRunning leaves backend sessions alive on exit
	ShutdownLeaveRunning
)

const (
	shutdownStopAllStr      = "stop_all"
	shutdownLeaveRunningStr = "leave_running"
)

// String returns the string representation of a ShutdownBehavior
func (b ShutdownBehavior) String() string {
	switch b {
	case ShutdownLeaveRunning:
		return shutdownLeaveRunningStr
	default:
		return shutdownStopAllStr
	}
}

// MarshalText implements encoding.TextMarshaler
func (b ShutdownBehavior) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (b *ShutdownBehavior) UnmarshalText(text []byte) error {
	parsed, err := ParseShutdownBehavior(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// ParseShutdownBehavior parses a shutdown behavior from its string form.
// Hyphenated spellings are accepted for CLI convenience.
func ParseShutdownBehavior(s string) (ShutdownBehavior, error) {
	switch s {
	case shutdownStopAllStr, "stop-all", "":
		return ShutdownStopAll, nil
	case shutdownLeaveRunningStr, "leave-running":
		return ShutdownLeaveRunning, nil
	default:
		return ShutdownStopAll, &OpError{Op: OpUnknown, Name: s, Err: ErrUnknownShutdown}
	}
}
