package cli

import (
	"github.com/spf13/cobra"
)

func newRenameCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name> <new-name>",
		Short: "Rename a service without disturbing its running session",
		Long: `Rename a service. Backend sessions are bound to the service's
immutable ID, not its name, so a running service keeps running and
stays addressable under the new name.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldName, newName := args[0], args[1]
			if err := rt.Store.Rename(oldName, newName); err != nil {
				return err
			}
			rt.Printer.Success("Renamed service %q to %q", oldName, newName)
			return rt.Printer.Document(map[string]string{
				"status":   "renamed",
				"old_name": oldName,
				"new_name": newName,
			})
		},
	}
}
