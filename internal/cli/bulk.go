package cli

import (
	"github.com/axondata/go-lars"
	"github.com/spf13/cobra"
)

func newStartAllCmd(rt *Runtime) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "start-all",
		Short: "Start all enabled services",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svcs, err := bulkTargets(rt, all)
			if err != nil {
				return err
			}
			report := rt.manager().StartAll(cmd.Context(), svcs)
			return renderBulk(rt, report, "start-all", ExitStartFailed,
				report.Count(lars.OutcomeStarted), "started",
				report.Count(lars.OutcomeAlreadyRunning), "already running")
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include disabled services")
	return cmd
}

func newStopAllCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "stop-all",
		Short: "Stop all services",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Stop targets every running service, disabled or not: a
			// disabled service can still have a live session.
			svcs, err := bulkTargets(rt, true)
			if err != nil {
				return err
			}
			statuses, recErr := rt.reconciler().StatusAll(cmd.Context(), svcs)
			if recErr != nil {
				rt.Printer.Warn("%v", recErr)
			}
			var running []*lars.Service
			for i, status := range statuses {
				if status.State == lars.StateRunning {
					running = append(running, svcs[i])
				}
			}
			report := rt.manager().StopAll(cmd.Context(), running)
			return renderBulk(rt, report, "stop-all", ExitStopFailed,
				report.Count(lars.OutcomeStopped), "stopped",
				report.Count(lars.OutcomeAlreadyStopped), "already stopped")
		},
	}
}

func newRestartAllCmd(rt *Runtime) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "restart-all",
		Short: "Restart all enabled services",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svcs, err := bulkTargets(rt, all)
			if err != nil {
				return err
			}
			report := rt.manager().RestartAll(cmd.Context(), svcs)
			return renderBulk(rt, report, "restart-all", ExitStartFailed,
				report.Count(lars.OutcomeRestarted), "restarted",
				0, "skipped")
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include disabled services")
	return cmd
}

// bulkTargets snapshots the service set for one bulk operation.
func bulkTargets(rt *Runtime, includeDisabled bool) ([]*lars.Service, error) {
	if includeDisabled {
		return rt.Store.List()
	}
	reg, err := rt.Store.Load()
	if err != nil {
		return nil, err
	}
	return reg.Enabled(), nil
}

// renderBulk prints the summary and per-service failures, and maps the
// report to an exit code: non-zero only when every target failed.
func renderBulk(rt *Runtime, report *lars.BulkReport, op string, failCode ExitCode, done int, doneWord string, skipped int, skippedWord string) error {
	if rt.Printer.JSON {
		if err := rt.Printer.Document(report); err != nil {
			return err
		}
	} else {
		rt.Printer.Info("%s: %d %s, %d %s, %d failed", op, done, doneWord, skipped, skippedWord, report.Failed())
		for _, f := range report.Failures() {
			rt.Printer.Error("%s: %s", f.Name, f.Reason)
		}
	}
	if report.AllFailed() {
		return withCode(failCode, report.Err())
	}
	return nil
}
