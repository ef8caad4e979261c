// Package lars manages declared long-running local commands ("services")
// by delegating process persistence to a terminal multiplexer session per
// service, with a raw-process fallback.
//
// The registry holds desired state only: an ordered list of service
// definitions plus global settings, persisted as a JSON document under
// the user config directory. What is actually running is always queried
// live from the backend:
//
//	paths, err := lars.DefaultPaths()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := lars.NewStore(paths)
//
//	svc := lars.NewService("web", "npm start")
//	if err := store.Add(svc); err != nil {
//	    log.Fatal(err)
//	}
//
//	runner := lars.NewTmuxRunner(paths)
//	err = runner.Start(context.Background(), svc)
//
// # Reconciliation
//
// The Reconciler compares declared intent against observed backend
// reality. A service the registry believes started but whose session is
// gone reports Crashed; a backend that cannot be queried at all reports
// Unknown, surfaced once per backend kind rather than once per service:
//
//	rec := lars.NewReconciler(lars.Runners(paths), paths)
//	statuses, err := rec.StatusAll(ctx, services)
//
// # Bulk Operations
//
// The Manager fans lifecycle operations out over a snapshot of services
// with bounded concurrency, aggregating independent per-service results.
// One failure never aborts the others:
//
//	mgr := lars.NewManager(lars.Runners(paths),
//	    lars.WithConcurrency(4),
//	    lars.WithTimeout(10*time.Second),
//	)
//	report := mgr.StartAll(ctx, enabled)
//
// # Design Philosophy
//
// This package prioritizes:
//
//   - Live backend queries as the sole source of truth for "running"
//   - Desired state (enabled) kept strictly apart from observed state
//   - Exclusive-locked, atomic registry mutation across invocations
//   - Context-aware operations with proper timeouts
//   - Independent per-service outcomes in bulk operations
//
// The tmux and raw-process backends implement the same Runner interface;
// tests substitute an in-memory recording variant, keeping reconciliation
// and bulk logic decoupled from process-spawning concerns.
package lars
