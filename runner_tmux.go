package lars

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/renameio/v2"
)

// DefaultTmuxPath is the default path to the tmux binary
const DefaultTmuxPath = "tmux"

// TmuxRunner realizes service lifecycle through named tmux sessions.
// Each service runs in a detached session named from its immutable ID,
// with output redirected into the service's log sink. Session existence
// is queried live via has-session; nothing about "running" is cached.
type TmuxRunner struct {
	// Paths resolves log sinks and started markers
	Paths *Paths

	// TmuxPath is the tmux binary to invoke
	TmuxPath string

	// ExecTimeout bounds a single tmux invocation
	ExecTimeout time.Duration
}

// TmuxOption configures a TmuxRunner
type TmuxOption func(*TmuxRunner)

// WithTmuxPath sets the tmux binary path
func WithTmuxPath(path string) TmuxOption {
	return func(r *TmuxRunner) {
		r.TmuxPath = path
	}
}

// WithTmuxExecTimeout sets the timeout for a single tmux invocation
func WithTmuxExecTimeout(d time.Duration) TmuxOption {
	return func(r *TmuxRunner) {
		r.ExecTimeout = d
	}
}

// NewTmuxRunner creates a TmuxRunner with default settings
func NewTmuxRunner(paths *Paths, opts ...TmuxOption) *TmuxRunner {
	r := &TmuxRunner{
		Paths:       paths,
		TmuxPath:    DefaultTmuxPath,
		ExecTimeout: DefaultExecTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Kind identifies the backend variant
func (r *TmuxRunner) Kind() RunnerKind {
	return RunnerTmux
}

// Available reports whether the tmux binary can be found
func (r *TmuxRunner) Available() bool {
	_, err := exec.LookPath(r.TmuxPath)
	return err == nil
}

// Version returns the tmux version string, or "" when unavailable
func (r *TmuxRunner) Version(ctx context.Context) string {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	out, err := exec.CommandContext(ctx, r.TmuxPath, "-V").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func (r *TmuxRunner) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.ExecTimeout > 0 {
		return context.WithTimeout(ctx, r.ExecTimeout)
	}
	return context.WithCancel(ctx)
}

// startArgv builds the tmux invocation that launches a detached session
// running the service command through sh with its output sent to logPath.
func (r *TmuxRunner) startArgv(svc *Service, logPath string) []string {
	shellCmd := fmt.Sprintf("%s >> %s 2>&1", svc.Command, shellQuote(logPath))

	argv := []string{"new-session", "-d", "-s", svc.SessionName()}
	if svc.Dir != "" {
		argv = append(argv, "-c", svc.Dir)
	}
	argv = append(argv, "sh", "-c", shellCmd)
	return argv
}

// Start creates the service's session. Starting an alive service is a
// success and does not create a second session.
func (r *TmuxRunner) Start(ctx context.Context, svc *Service) error {
	if _, err := exec.LookPath(r.TmuxPath); err != nil {
		return &OpError{Op: OpStart, Name: svc.Name, Err: fmt.Errorf("%w: %v", ErrBackendUnavailable, err)}
	}

	alive, err := r.IsAlive(ctx, svc)
	if err != nil {
		return err
	}
	if alive {
		return nil
	}

	logPath := r.Paths.LogPath(svc.ID)
	if err := os.MkdirAll(filepath.Dir(logPath), DirMode); err != nil {
		return &OpError{Op: OpStart, Name: svc.Name, Err: err}
	}

	// Record the attempt before launching. A launch that fails leaves
	// the marker behind, so the service reconciles as crashed rather
	// than stopped.
	if err := r.writeMarker(svc); err != nil {
		return err
	}

	opCtx, cancel := r.opContext(ctx)
	defer cancel()

	cmd := exec.CommandContext(opCtx, r.TmuxPath, r.startArgv(svc, logPath)...)
	cmd.Env = mergedEnv(svc.Env)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		diag := strings.TrimSpace(stderr.String())
		if diag == "" {
			diag = err.Error()
		}
		return &OpError{Op: OpStart, Name: svc.Name, Err: fmt.Errorf("%w: %s", ErrLaunchFailed, diag)}
	}

	return nil
}

// Stop kills the service's session. A missing session is not an error.
func (r *TmuxRunner) Stop(ctx context.Context, svc *Service) error {
	defer r.clearMarker(svc)

	opCtx, cancel := r.opContext(ctx)
	defer cancel()

	cmd := exec.CommandContext(opCtx, r.TmuxPath, "kill-session", "-t", "="+svc.SessionName())
	if err := cmd.Run(); err != nil {
		alive, aliveErr := r.IsAlive(ctx, svc)
		if aliveErr != nil {
			return aliveErr
		}
		if alive {
			return &OpError{Op: OpStop, Name: svc.Name, Err: err}
		}
	}
	return nil
}

// IsAlive reports whether a session with the service's derived name
// exists. The "=" prefix forces exact-name matching.
func (r *TmuxRunner) IsAlive(ctx context.Context, svc *Service) (bool, error) {
	if _, err := exec.LookPath(r.TmuxPath); err != nil {
		return false, &OpError{Op: OpStatus, Name: svc.Name, Err: fmt.Errorf("%w: %v", ErrBackendUnavailable, err)}
	}

	opCtx, cancel := r.opContext(ctx)
	defer cancel()

	cmd := exec.CommandContext(opCtx, r.TmuxPath, "has-session", "-t", "="+svc.SessionName())
	cmd.Stdout = nil
	cmd.Stderr = nil

	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, &OpError{Op: OpStatus, Name: svc.Name, Err: fmt.Errorf("%w: %v", ErrBackendUnavailable, err)}
}

// PID returns the PID of the session's pane process, or 0 if unknown
func (r *TmuxRunner) PID(ctx context.Context, svc *Service) (int, error) {
	opCtx, cancel := r.opContext(ctx)
	defer cancel()

	out, err := exec.CommandContext(opCtx, r.TmuxPath,
		"list-panes", "-t", "="+svc.SessionName(), "-F", "#{pane_pid}").Output()
	if err != nil {
		return 0, nil
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0, nil
	}
	return pid, nil
}

// AttachArgv returns the argv that hands the terminal to the session
func (r *TmuxRunner) AttachArgv(svc *Service) ([]string, error) {
	return []string{r.TmuxPath, "attach-session", "-t", "=" + svc.SessionName()}, nil
}

func (r *TmuxRunner) writeMarker(svc *Service) error {
	markerPath := r.Paths.MarkerPath(svc.ID)
	if err := os.MkdirAll(filepath.Dir(markerPath), DirMode); err != nil {
		return &OpError{Op: OpStart, Name: svc.Name, Err: err}
	}
	if err := renameio.WriteFile(markerPath, []byte(svc.SessionName()+"\n"), FileMode); err != nil {
		return &OpError{Op: OpStart, Name: svc.Name, Err: err}
	}
	return nil
}

func (r *TmuxRunner) clearMarker(svc *Service) {
	_ = os.Remove(r.Paths.MarkerPath(svc.ID))
}

// mergedEnv layers service environment variables over the inherited
// environment. Later entries win in exec.Cmd, so overrides come last.
func mergedEnv(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	merged := os.Environ()
	for key, value := range env {
		merged = append(merged, key+"="+value)
	}
	return merged
}

// shellQuote escapes a string for safe use in shell commands
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !needsShellQuoting(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}

// needsShellQuoting checks if a string contains characters that require
// shell quoting
func needsShellQuoting(s string) bool {
	const specialChars = " \t\n'\"\\$`!*?[](){}<>|&;~"

	for _, r := range s {
		if strings.ContainsRune(specialChars, r) {
			return true
		}
	}
	return false
}
