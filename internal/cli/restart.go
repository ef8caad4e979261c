package cli

import (
	"github.com/spf13/cobra"
)

func newRestartCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "restart <name>",
		Short: "Restart a service",
		Long: `Restart stops the service, waits for the session to disappear,
and starts it again. A service that is not running is simply started.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.Store.Get(args[0])
			if err != nil {
				return err
			}
			if err := rt.manager().Restart(cmd.Context(), svc); err != nil {
				return err
			}
			rt.Printer.Success("Restarted %q", svc.Name)
			if rt.Printer.JSON {
				return rt.Printer.Document(map[string]string{"name": svc.Name, "outcome": "restarted"})
			}
			return nil
		},
	}
}
