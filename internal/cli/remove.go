package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRemoveCmd(rt *Runtime) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a service, stopping it first if running",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			svc, err := rt.Store.Get(name)
			if err != nil {
				return err
			}

			if !force && !rt.Printer.JSON {
				fmt.Fprintf(rt.Streams.Out, "Remove service %q? [y/N] ", name)
				reader := bufio.NewReader(rt.Streams.In)
				answer, _ := reader.ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					rt.Printer.Info("Aborted")
					return nil
				}
			}

			runner, err := rt.runnerFor(svc)
			if err != nil {
				return err
			}
			alive, aliveErr := runner.IsAlive(cmd.Context(), svc)
			if aliveErr == nil && alive {
				if err := runner.Stop(cmd.Context(), svc); err != nil {
					return err
				}
			}

			removed, err := rt.Store.Remove(name)
			if err != nil {
				return err
			}

			rt.Printer.Success("Removed service %q", removed.Name)
			return rt.Printer.Document(map[string]string{"status": "removed", "name": removed.Name})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")
	return cmd
}
