package lars

import "context"

// Runner is the capability set every execution backend implements. Start
// is idempotent: starting an already-alive service reports success
// without creating a second session. Stop of an absent session is a
// no-op. IsAlive queries the backend directly and is the sole source of
// truth for "running", independent of registry bookkeeping.
type Runner interface {
	// Start launches the service and records a started marker
	Start(ctx context.Context, svc *Service) error
	// Stop terminates the service's backend session if present
	Stop(ctx context.Context, svc *Service) error
	// IsAlive reports whether the backend session currently exists
	IsAlive(ctx context.Context, svc *Service) (bool, error)
	// PID returns the service's process ID, or 0 if unknown
	PID(ctx context.Context, svc *Service) (int, error)
	// AttachArgv returns the argv for terminal takeover, or
	// ErrAttachUnsupported for backends without interactive sessions
	AttachArgv(svc *Service) ([]string, error)
	// Kind identifies the backend variant
	Kind() RunnerKind
}

// NewRunner creates the Runner for the given backend kind
func NewRunner(kind RunnerKind, paths *Paths) (Runner, error) {
	switch kind {
	case RunnerTmux:
		return NewTmuxRunner(paths), nil
	case RunnerProcess:
		return NewProcessRunner(paths), nil
	default:
		return nil, &OpError{Op: OpUnknown, Name: kind.String(), Err: ErrUnknownRunner}
	}
}

// Runners builds one Runner per production backend kind, sharing paths.
// The map shape lets tests substitute recording runners.
func Runners(paths *Paths) map[RunnerKind]Runner {
	return map[RunnerKind]Runner{
		RunnerTmux:    NewTmuxRunner(paths),
		RunnerProcess: NewProcessRunner(paths),
	}
}
