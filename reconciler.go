package lars

import (
	"context"
	"os"
)

// ServiceStatus is the observed status of one service, derived by
// comparing declared intent against live backend state. It is computed
// on demand and never persisted.
type ServiceStatus struct {
	// Name is the service's registry name
	Name string `json:"name"`
	// State is the reconciled status
	State State `json:"state"`
	// PID is the backend process ID when known
	PID int `json:"pid,omitempty"`
	// Enabled mirrors the declared flag for listing convenience
	Enabled bool `json:"enabled"`
	// Runner is the backend kind managing the service
	Runner RunnerKind `json:"backend_kind"`
}

// Reconciler derives observed status from live backend queries. It is
// read-only: it never mutates the registry. A backend query failure
// marks that whole backend kind unavailable for the rest of the
// invocation, so the condition is surfaced once instead of once per
// service.
type Reconciler struct {
	runners     map[RunnerKind]Runner
	paths       *Paths
	unavailable map[RunnerKind]error
}

// NewReconciler creates a Reconciler over the given backends
func NewReconciler(runners map[RunnerKind]Runner, paths *Paths) *Reconciler {
	return &Reconciler{
		runners:     runners,
		paths:       paths,
		unavailable: make(map[RunnerKind]error),
	}
}

// Status reconciles a single service:
//
//	alive                      -> Running
//	not alive, start recorded  -> Crashed
//	not alive, no start record -> Stopped
//	backend query failed       -> Unknown
func (r *Reconciler) Status(ctx context.Context, svc *Service) ServiceStatus {
	status := ServiceStatus{
		Name:    svc.Name,
		Enabled: svc.Enabled,
		Runner:  svc.Runner,
		State:   StateUnknown,
	}

	if _, down := r.unavailable[svc.Runner]; down {
		return status
	}

	runner, ok := r.runners[svc.Runner]
	if !ok {
		r.unavailable[svc.Runner] = &OpError{Op: OpStatus, Name: svc.Name, Err: ErrUnknownRunner}
		return status
	}

	alive, err := runner.IsAlive(ctx, svc)
	if err != nil {
		r.unavailable[svc.Runner] = err
		return status
	}

	if alive {
		status.State = StateRunning
		if pid, err := runner.PID(ctx, svc); err == nil {
			status.PID = pid
		}
		return status
	}

	if r.startRecorded(svc) {
		status.State = StateCrashed
	} else {
		status.State = StateStopped
	}
	return status
}

// StatusAll reconciles a snapshot of services in order. The returned
// error aggregates at most one backend failure per kind.
func (r *Reconciler) StatusAll(ctx context.Context, svcs []*Service) ([]ServiceStatus, error) {
	seen := make(map[RunnerKind]bool, len(r.unavailable))
	for kind := range r.unavailable {
		seen[kind] = true
	}

	statuses := make([]ServiceStatus, len(svcs))
	merr := &MultiError{}
	for i, svc := range svcs {
		statuses[i] = r.Status(ctx, svc)
		if err, down := r.unavailable[svc.Runner]; down && !seen[svc.Runner] {
			seen[svc.Runner] = true
			merr.Add(err)
		}
	}
	return statuses, merr.Err()
}

// Unavailable returns backend kinds that failed during this invocation
func (r *Reconciler) Unavailable() map[RunnerKind]error {
	return r.unavailable
}

// startRecorded reports whether a start marker exists for the service
func (r *Reconciler) startRecorded(svc *Service) bool {
	_, err := os.Stat(r.paths.MarkerPath(svc.ID))
	return err == nil
}
