package cli

import (
	"github.com/axondata/go-lars"
	"github.com/spf13/cobra"
)

func newStartCmd(rt *Runtime) *cobra.Command {
	var attach bool

	cmd := &cobra.Command{
		Use:   "start <name>",
		Short: "Start a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.Store.Get(args[0])
			if err != nil {
				return err
			}
			runner, err := rt.runnerFor(svc)
			if err != nil {
				return err
			}

			alive, err := runner.IsAlive(cmd.Context(), svc)
			if err != nil {
				return err
			}
			outcome := lars.OutcomeStarted
			if alive {
				outcome = lars.OutcomeAlreadyRunning
				rt.Printer.Info("Service %q is already running", svc.Name)
			} else {
				if err := runner.Start(cmd.Context(), svc); err != nil {
					return err
				}
				rt.Printer.Success("Started %q", svc.Name)
			}

			if rt.Printer.JSON {
				if err := rt.Printer.Document(map[string]string{"name": svc.Name, "outcome": outcome.String()}); err != nil {
					return err
				}
			}
			if attach {
				return attachTo(rt, cmd, svc)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&attach, "attach", false, "Attach to the service session after starting")
	return cmd
}
