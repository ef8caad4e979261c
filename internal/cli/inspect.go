package cli

import (
	"fmt"
	"strings"

	"github.com/axondata/go-lars"
	"github.com/spf13/cobra"
)

func newInspectCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "inspect <name>",
		Aliases: []string{"status"},
		Short:   "Show a service's definition and reconciled status",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.Store.Get(args[0])
			if err != nil {
				return err
			}
			status := rt.reconciler().Status(cmd.Context(), svc)

			if rt.Printer.JSON {
				return rt.Printer.Document(struct {
					*lars.Service
					State lars.State `json:"state"`
					PID   int        `json:"pid,omitempty"`
				}{svc, status.State, status.PID})
			}

			out := rt.Streams.Out
			fmt.Fprintf(out, "Name:       %s\n", svc.Name)
			fmt.Fprintf(out, "State:      %s\n", status.State)
			fmt.Fprintf(out, "Command:    %s\n", svc.Command)
			if svc.Dir != "" {
				fmt.Fprintf(out, "Directory:  %s\n", svc.Dir)
			}
			if len(svc.Env) > 0 {
				pairs := make([]string, 0, len(svc.Env))
				for k, v := range svc.Env {
					pairs = append(pairs, k+"="+v)
				}
				fmt.Fprintf(out, "Environment: %s\n", strings.Join(pairs, " "))
			}
			fmt.Fprintf(out, "Enabled:    %t\n", svc.Enabled)
			fmt.Fprintf(out, "Backend:    %s\n", svc.Runner)
			fmt.Fprintf(out, "Session:    %s\n", svc.SessionName())
			if status.PID > 0 {
				fmt.Fprintf(out, "PID:        %d\n", status.PID)
			}
			fmt.Fprintf(out, "Log file:   %s\n", rt.Paths.LogPath(svc.ID))
			fmt.Fprintf(out, "Created:    %s\n", svc.CreatedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}
