package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCmd(rt *Runtime) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List services with their reconciled status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, err := rt.Store.List()
			if err != nil {
				return err
			}
			if !all {
				filtered := services[:0:0]
				for _, svc := range services {
					if svc.Enabled {
						filtered = append(filtered, svc)
					}
				}
				services = filtered
			}

			statuses, recErr := rt.reconciler().StatusAll(cmd.Context(), services)
			if recErr != nil {
				// Backend unavailability is reported once; listing
				// still proceeds with Unknown states.
				rt.Printer.Warn("%v", recErr)
			}

			if rt.Printer.JSON {
				return rt.Printer.Document(statuses)
			}

			if len(statuses) == 0 {
				rt.Printer.Info("No services configured")
				return nil
			}

			w := tabwriter.NewWriter(rt.Streams.Out, 2, 8, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSTATE\tENABLED\tBACKEND\tPID")
			for _, s := range statuses {
				pid := "-"
				if s.PID > 0 {
					pid = fmt.Sprintf("%d", s.PID)
				}
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\n", s.Name, s.State, s.Enabled, s.Runner, pid)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include disabled services")
	return cmd
}
