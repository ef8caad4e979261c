//go:build linux || darwin

package lars

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/renameio/v2"
)

// DefaultShellPath is the shell used to run raw-process commands
const DefaultShellPath = "/bin/sh"

// ProcessRunner is the raw-process fallback backend. It spawns the
// command detached in its own session, redirects both output streams to
// the service's log sink, and records the PID in a pidfile. Liveness is
// checked against the recorded PID directly; there is no multiplexer to
// query and no interactive attach.
type ProcessRunner struct {
	// Paths resolves log sinks, pidfiles, and started markers
	Paths *Paths

	// ShellPath is the shell that interprets service commands
	ShellPath string
}

// ProcessOption configures a ProcessRunner
type ProcessOption func(*ProcessRunner)

// WithShellPath sets the shell used to run commands
func WithShellPath(path string) ProcessOption {
	return func(r *ProcessRunner) {
		r.ShellPath = path
	}
}

// NewProcessRunner creates a ProcessRunner with default settings
func NewProcessRunner(paths *Paths, opts ...ProcessOption) *ProcessRunner {
	r := &ProcessRunner{
		Paths:     paths,
		ShellPath: DefaultShellPath,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Kind identifies the backend variant
func (r *ProcessRunner) Kind() RunnerKind {
	return RunnerProcess
}

// Start spawns the service command. Starting an alive service is a
// success and does not spawn a second process.
func (r *ProcessRunner) Start(_ context.Context, svc *Service) error {
	alive, err := r.IsAlive(context.Background(), svc)
	if err != nil {
		return err
	}
	if alive {
		return nil
	}

	if err := r.Paths.Ensure(); err != nil {
		return err
	}

	logPath := r.Paths.LogPath(svc.ID)
	sink, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, FileMode)
	if err != nil {
		return &OpError{Op: OpStart, Name: svc.Name, Err: err}
	}
	defer func() { _ = sink.Close() }()

	// No CommandContext here: the child must outlive this invocation.
	cmd := exec.Command(r.ShellPath, "-c", svc.Command)
	cmd.Dir = svc.Dir
	cmd.Env = mergedEnv(svc.Env)
	cmd.Stdout = sink
	cmd.Stderr = sink
	cmd.Stdin = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	// Record the attempt before launching so a failed launch reconciles
	// as crashed, not stopped.
	if err := renameio.WriteFile(r.Paths.MarkerPath(svc.ID), []byte(svc.SessionName()+"\n"), FileMode); err != nil {
		return &OpError{Op: OpStart, Name: svc.Name, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return &OpError{Op: OpStart, Name: svc.Name, Err: fmt.Errorf("%w: %v", ErrLaunchFailed, err)}
	}

	pid := cmd.Process.Pid
	if err := renameio.WriteFile(r.Paths.PIDPath(svc.ID), []byte(strconv.Itoa(pid)+"\n"), FileMode); err != nil {
		return &OpError{Op: OpStart, Name: svc.Name, Err: err}
	}

	// Reap in the background so the child never zombifies while the
	// invoking process is still around.
	go func() { _ = cmd.Wait() }()

	return nil
}

// Stop terminates the service's process group. A dead or missing
// process is not an error.
func (r *ProcessRunner) Stop(_ context.Context, svc *Service) error {
	defer func() {
		_ = os.Remove(r.Paths.PIDPath(svc.ID))
		_ = os.Remove(r.Paths.MarkerPath(svc.ID))
	}()

	pid, ok := r.readPID(svc)
	if !ok {
		return nil
	}

	// Negative PID targets the whole session created by Setsid
	if err := syscall.Kill(-pid, syscall.SIGTERM); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return nil
		}
		if err := syscall.Kill(pid, syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
			return &OpError{Op: OpStop, Name: svc.Name, Err: err}
		}
	}
	return nil
}

// IsAlive reports whether the recorded PID still names a live process
func (r *ProcessRunner) IsAlive(_ context.Context, svc *Service) (bool, error) {
	pid, ok := r.readPID(svc)
	if !ok {
		return false, nil
	}
	if err := syscall.Kill(pid, 0); err != nil {
		if errors.Is(err, syscall.EPERM) {
			return true, nil
		}
		return false, nil
	}
	return true, nil
}

// PID returns the recorded process ID, or 0 if unknown
func (r *ProcessRunner) PID(_ context.Context, svc *Service) (int, error) {
	pid, ok := r.readPID(svc)
	if !ok {
		return 0, nil
	}
	return pid, nil
}

// AttachArgv is unsupported: there is no session to take over
func (r *ProcessRunner) AttachArgv(svc *Service) ([]string, error) {
	return nil, &OpError{Op: OpAttach, Name: svc.Name, Err: ErrAttachUnsupported}
}

func (r *ProcessRunner) readPID(svc *Service) (int, bool) {
	contents, err := os.ReadFile(r.Paths.PIDPath(svc.ID))
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}
