package lars

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"
)

// MockRunner is an in-memory backend for tests. It records calls,
// tracks how many Start invocations run simultaneously, and can be
// scripted to fail launches or report the backend as unavailable, so
// reconciliation and bulk logic can be exercised without tmux or real
// processes. Started markers are written through Paths like the real
// runners, which lets the Reconciler observe simulated crashes.
type MockRunner struct {
	mu sync.Mutex

	paths *Paths
	kind  RunnerKind

	alive    map[uuid.UUID]bool
	sessions map[uuid.UUID]int

	// FailStart scripts a launch failure for the named services
	FailStart map[string]error

	// Unavailable, when set, is returned from every backend query
	Unavailable error

	// StartDelay widens the concurrency window for in-flight counting
	StartDelay time.Duration

	inFlight    int
	maxInFlight int
	statusCalls int
}

// NewMockRunner creates a MockRunner writing markers under paths
func NewMockRunner(paths *Paths, kind RunnerKind) *MockRunner {
	return &MockRunner{
		paths:     paths,
		kind:      kind,
		alive:     make(map[uuid.UUID]bool),
		sessions:  make(map[uuid.UUID]int),
		FailStart: make(map[string]error),
	}
}

// Kind identifies the backend variant being mocked
func (m *MockRunner) Kind() RunnerKind {
	return m.kind
}

// Start records the call, honoring scripted failures and idempotence
func (m *MockRunner) Start(_ context.Context, svc *Service) error {
	m.mu.Lock()
	if m.Unavailable != nil {
		defer m.mu.Unlock()
		return &OpError{Op: OpStart, Name: svc.Name, Err: m.Unavailable}
	}
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	delay := m.StartDelay
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight--

	// Matches the real runners: the marker is written before the
	// launch attempt, so a scripted launch failure leaves it behind.
	if err := m.writeMarker(svc); err != nil {
		return err
	}
	if err, ok := m.FailStart[svc.Name]; ok {
		return &OpError{Op: OpStart, Name: svc.Name, Err: err}
	}
	if m.alive[svc.ID] {
		return nil
	}
	m.alive[svc.ID] = true
	m.sessions[svc.ID]++
	return nil
}

// Stop records the call; stopping an absent session is a no-op
func (m *MockRunner) Stop(_ context.Context, svc *Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Unavailable != nil {
		return &OpError{Op: OpStop, Name: svc.Name, Err: m.Unavailable}
	}
	delete(m.alive, svc.ID)
	_ = os.Remove(m.paths.MarkerPath(svc.ID))
	return nil
}

// IsAlive reports the mock's live set
func (m *MockRunner) IsAlive(_ context.Context, svc *Service) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCalls++
	if m.Unavailable != nil {
		return false, &OpError{Op: OpStatus, Name: svc.Name, Err: m.Unavailable}
	}
	return m.alive[svc.ID], nil
}

// PID returns a synthetic PID for alive services
func (m *MockRunner) PID(_ context.Context, svc *Service) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.alive[svc.ID] {
		return 4242, nil
	}
	return 0, nil
}

// AttachArgv returns a placeholder argv
func (m *MockRunner) AttachArgv(svc *Service) ([]string, error) {
	return []string{"true", svc.SessionName()}, nil
}

// Kill simulates an out-of-band crash: the backend session disappears
// but the started marker stays behind
func (m *MockRunner) Kill(svc *Service) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.alive, svc.ID)
}

// SessionCount returns how many times a session was created for svc
func (m *MockRunner) SessionCount(svc *Service) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[svc.ID]
}

// MaxInFlight returns the peak number of simultaneous Start calls
func (m *MockRunner) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}

// StatusCalls returns how many liveness queries were issued
func (m *MockRunner) StatusCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusCalls
}

func (m *MockRunner) writeMarker(svc *Service) error {
	markerPath := m.paths.MarkerPath(svc.ID)
	if err := os.MkdirAll(filepath.Dir(markerPath), DirMode); err != nil {
		return err
	}
	return renameio.WriteFile(markerPath, []byte(svc.SessionName()+"\n"), FileMode)
}
