//go:build !linux && !darwin

package lars

import "context"

// ProcessRunner stub for platforms without detached-session spawning
type ProcessRunner struct {
	Paths *Paths
}

// ProcessOption configures a ProcessRunner
type ProcessOption func(*ProcessRunner)

// NewProcessRunner creates a stub ProcessRunner
func NewProcessRunner(paths *Paths, _ ...ProcessOption) *ProcessRunner {
	return &ProcessRunner{Paths: paths}
}

// Kind identifies the backend variant
func (r *ProcessRunner) Kind() RunnerKind {
	return RunnerProcess
}

// Start is unsupported on this platform
func (r *ProcessRunner) Start(_ context.Context, svc *Service) error {
	return &OpError{Op: OpStart, Name: svc.Name, Err: ErrBackendUnavailable}
}

// Stop is unsupported on this platform
func (r *ProcessRunner) Stop(_ context.Context, svc *Service) error {
	return &OpError{Op: OpStop, Name: svc.Name, Err: ErrBackendUnavailable}
}

// IsAlive is unsupported on this platform
func (r *ProcessRunner) IsAlive(_ context.Context, svc *Service) (bool, error) {
	return false, &OpError{Op: OpStatus, Name: svc.Name, Err: ErrBackendUnavailable}
}

// PID is unsupported on this platform
func (r *ProcessRunner) PID(_ context.Context, _ *Service) (int, error) {
	return 0, nil
}

// AttachArgv is unsupported
func (r *ProcessRunner) AttachArgv(svc *Service) ([]string, error) {
	return nil, &OpError{Op: OpAttach, Name: svc.Name, Err: ErrAttachUnsupported}
}
