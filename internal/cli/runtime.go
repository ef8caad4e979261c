package cli

import (
	"time"

	"github.com/axondata/go-lars"
	"github.com/axondata/go-lars/internal/iostreams"
)

// Runtime bundles the assembled collaborators every command needs.
// Tests construct one directly with mock runners and buffer streams;
// production assembly happens in the root command once flags are known.
type Runtime struct {
	Paths   *lars.Paths
	Store   *lars.Store
	Runners map[lars.RunnerKind]lars.Runner
	Streams *iostreams.IOStreams
	Printer *Printer
}

// settings loads global settings from the registry document
func (rt *Runtime) settings() lars.Settings {
	reg, err := rt.Store.Load()
	if err != nil {
		return lars.DefaultSettings()
	}
	return reg.Settings
}

// manager builds the bulk executor with the configured restart timeout
func (rt *Runtime) manager() *lars.Manager {
	settings := rt.settings()
	return lars.NewManager(rt.Runners,
		lars.WithRestartTimeout(time.Duration(settings.RestartTimeoutSecs)*time.Second),
	)
}

// reconciler builds a fresh reconciler for this invocation
func (rt *Runtime) reconciler() *lars.Reconciler {
	return lars.NewReconciler(rt.Runners, rt.Paths)
}

// streamer builds the log streamer
func (rt *Runtime) streamer() *lars.LogStreamer {
	return lars.NewLogStreamer(rt.Paths, rt.Runners)
}

// runnerFor returns the backend managing the given service
func (rt *Runtime) runnerFor(svc *lars.Service) (lars.Runner, error) {
	runner, ok := rt.Runners[svc.Runner]
	if !ok {
		return nil, lars.ErrUnknownRunner
	}
	return runner, nil
}
