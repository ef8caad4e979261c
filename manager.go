package lars

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// Outcome classifies one service's result inside a bulk operation
type Outcome int

const (
	// OutcomeFailed means the operation errored for this service
	OutcomeFailed Outcome = iota
	// OutcomeStarted means a new backend session was created
	OutcomeStarted
	// OutcomeStopped means the backend session was terminated
	OutcomeStopped
	// OutcomeAlreadyRunning means start found a live session (success)
	OutcomeAlreadyRunning
	// OutcomeAlreadyStopped means stop found no session (success)
	OutcomeAlreadyStopped
	// OutcomeRestarted means stop-then-start completed
	OutcomeRestarted
)

const (
	outcomeFailedStr         = "failed"
	outcomeStartedStr        = "started"
	outcomeStoppedStr        = "stopped"
	outcomeAlreadyRunningStr = "already_running"
	outcomeAlreadyStoppedStr = "already_stopped"
	outcomeRestartedStr      = "restarted"
)

// String returns the string representation of an Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeStarted:
		return outcomeStartedStr
	case OutcomeStopped:
		return outcomeStoppedStr
	case OutcomeAlreadyRunning:
		return outcomeAlreadyRunningStr
	case OutcomeAlreadyStopped:
		return outcomeAlreadyStoppedStr
	case OutcomeRestarted:
		return outcomeRestartedStr
	default:
		return outcomeFailedStr
	}
}

// MarshalText implements encoding.TextMarshaler
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// ServiceResult is one service's outcome within a bulk operation
type ServiceResult struct {
	// Name is the service name
	Name string `json:"name"`
	// Outcome classifies what happened
	Outcome Outcome `json:"outcome"`
	// Reason carries the failure message for OutcomeFailed
	Reason string `json:"reason,omitempty"`

	// Err is the underlying error, nil unless Outcome is OutcomeFailed
	Err error `json:"-"`
}

// BulkReport aggregates per-service results of one bulk operation.
// Results keep the order of the targeted snapshot.
type BulkReport struct {
	// Results holds one entry per targeted service
	Results []ServiceResult `json:"results"`
}

// Count returns how many results have the given outcome
func (r *BulkReport) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Failed returns how many services failed
func (r *BulkReport) Failed() int {
	return r.Count(OutcomeFailed)
}

// Failures returns the failed results only
func (r *BulkReport) Failures() []ServiceResult {
	var out []ServiceResult
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			out = append(out, res)
		}
	}
	return out
}

// AllFailed reports whether every targeted service failed. Bulk
// commands exit non-zero only in this case; partial success is
// reported but still succeeds.
func (r *BulkReport) AllFailed() bool {
	return len(r.Results) > 0 && r.Failed() == len(r.Results)
}

// Err returns an aggregate error over the failures, or nil
func (r *BulkReport) Err() error {
	merr := &MultiError{}
	for _, res := range r.Results {
		merr.Add(res.Err)
	}
	return merr.Err()
}

// Manager drives bulk lifecycle operations across many services with
// bounded concurrency. The backend tool is a shared external resource;
// the bound keeps it from being overwhelmed. The targeted set is a
// snapshot taken by the caller before any action begins.
type Manager struct {
	// Concurrency is the maximum number of concurrent backend calls
	Concurrency int
	// Timeout is the per-service operation timeout
	Timeout time.Duration
	// StopPoll is the interval between liveness checks during restart
	StopPoll time.Duration
	// RestartTimeout bounds the wait for a session to disappear during
	// restart before giving up
	RestartTimeout time.Duration

	runners map[RunnerKind]Runner
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithConcurrency sets the maximum number of concurrent backend calls
func WithConcurrency(n int) ManagerOption {
	return func(m *Manager) {
		m.Concurrency = n
	}
}

// WithTimeout sets the per-service operation timeout
func WithTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.Timeout = d
	}
}

// WithRestartTimeout sets the stop-confirmation timeout for restart
func WithRestartTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.RestartTimeout = d
	}
}

// NewManager creates a Manager over the given backends. The default
// concurrency bound is the number of available processing units.
func NewManager(runners map[RunnerKind]Runner, opts ...ManagerOption) *Manager {
	m := &Manager{
		Concurrency:    runtime.GOMAXPROCS(0),
		Timeout:        10 * time.Second,
		StopPoll:       DefaultStopPoll,
		RestartTimeout: DefaultRestartTimeoutSecs * time.Second,
		runners:        runners,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.Concurrency < 1 {
		m.Concurrency = 1
	}

	return m
}

// execute fans fn out over the snapshot with the concurrency bound.
// Each service's result lands at its snapshot index, so report order
// matches input order regardless of scheduling.
func (m *Manager) execute(ctx context.Context, svcs []*Service, fn func(context.Context, Runner, *Service) ServiceResult) *BulkReport {
	report := &BulkReport{Results: make([]ServiceResult, len(svcs))}
	if len(svcs) == 0 {
		return report
	}

	sem := make(chan struct{}, m.Concurrency)
	var wg sync.WaitGroup

	for i, svc := range svcs {
		wg.Add(1)
		go func(i int, svc *Service) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				report.Results[i] = failure(svc, ctx.Err())
				return
			}

			runner, ok := m.runners[svc.Runner]
			if !ok {
				report.Results[i] = failure(svc, &OpError{Op: OpUnknown, Name: svc.Name, Err: ErrUnknownRunner})
				return
			}

			opCtx := ctx
			if m.Timeout > 0 {
				var cancel context.CancelFunc
				opCtx, cancel = context.WithTimeout(ctx, m.Timeout)
				defer cancel()
			}

			report.Results[i] = fn(opCtx, runner, svc)
		}(i, svc)
	}

	wg.Wait()
	return report
}

// StartAll starts every service in the snapshot. Callers select the
// snapshot (typically the enabled services) before invoking. One
// service's failure does not abort the others.
func (m *Manager) StartAll(ctx context.Context, svcs []*Service) *BulkReport {
	return m.execute(ctx, svcs, func(ctx context.Context, runner Runner, svc *Service) ServiceResult {
		alive, err := runner.IsAlive(ctx, svc)
		if err != nil {
			return failure(svc, err)
		}
		if alive {
			return ServiceResult{Name: svc.Name, Outcome: OutcomeAlreadyRunning}
		}
		if err := runner.Start(ctx, svc); err != nil {
			return failure(svc, err)
		}
		return ServiceResult{Name: svc.Name, Outcome: OutcomeStarted}
	})
}

// StopAll stops every service in the snapshot
func (m *Manager) StopAll(ctx context.Context, svcs []*Service) *BulkReport {
	return m.execute(ctx, svcs, func(ctx context.Context, runner Runner, svc *Service) ServiceResult {
		alive, err := runner.IsAlive(ctx, svc)
		if err != nil {
			return failure(svc, err)
		}
		if !alive {
			return ServiceResult{Name: svc.Name, Outcome: OutcomeAlreadyStopped}
		}
		if err := runner.Stop(ctx, svc); err != nil {
			return failure(svc, err)
		}
		return ServiceResult{Name: svc.Name, Outcome: OutcomeStopped}
	})
}

// RestartAll restarts every service in the snapshot. Services restart
// in parallel with each other, but each service's stop observably
// completes before its start is attempted.
func (m *Manager) RestartAll(ctx context.Context, svcs []*Service) *BulkReport {
	return m.execute(ctx, svcs, func(ctx context.Context, runner Runner, svc *Service) ServiceResult {
		if err := m.restartOne(ctx, runner, svc); err != nil {
			return failure(svc, err)
		}
		return ServiceResult{Name: svc.Name, Outcome: OutcomeRestarted}
	})
}

// Restart stops the named service, waits for the backend to confirm
// the session is gone, then starts it again. The wait avoids a name
// collision between the dying session and its replacement.
func (m *Manager) Restart(ctx context.Context, svc *Service) error {
	runner, ok := m.runners[svc.Runner]
	if !ok {
		return &OpError{Op: OpRestart, Name: svc.Name, Err: ErrUnknownRunner}
	}
	return m.restartOne(ctx, runner, svc)
}

func (m *Manager) restartOne(ctx context.Context, runner Runner, svc *Service) error {
	alive, err := runner.IsAlive(ctx, svc)
	if err != nil {
		return err
	}

	if alive {
		if err := runner.Stop(ctx, svc); err != nil {
			return err
		}

		deadline := time.Now().Add(m.RestartTimeout)
		for {
			alive, err := runner.IsAlive(ctx, svc)
			if err != nil {
				return err
			}
			if !alive {
				break
			}
			if time.Now().After(deadline) {
				return &OpError{Op: OpRestart, Name: svc.Name, Err: ErrStopTimeout}
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(m.StopPoll):
			}
		}
	}

	return runner.Start(ctx, svc)
}

func failure(svc *Service, err error) ServiceResult {
	return ServiceResult{
		Name:    svc.Name,
		Outcome: OutcomeFailed,
		Reason:  fmt.Sprintf("%v", err),
		Err:     err,
	}
}
