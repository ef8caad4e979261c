package cli

import (
	"github.com/axondata/go-lars"
	"github.com/spf13/cobra"
)

func newStopCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <name>",
		Short: "Stop a service",
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
			outcome := lars.OutcomeStopped
			if !alive {
				outcome = lars.OutcomeAlreadyStopped
				rt.Printer.Info("Service %q is not running", svc.Name)
			} else {
				if err := runner.Stop(cmd.Context(), svc); err != nil {
					return err
				}
				rt.Printer.Success("Stopped %q", svc.Name)
			}

			if rt.Printer.JSON {
				return rt.Printer.Document(map[string]string{"name": svc.Name, "outcome": outcome.String()})
			}
			return nil
		},
	}
}
