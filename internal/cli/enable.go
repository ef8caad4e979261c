package cli

import (
	"github.com/axondata/go-lars"
	"github.com/spf13/cobra"
)

func newEnableCmd(rt *Runtime, enable bool) *cobra.Command {
	use, short := "enable <name>", "Include a service in bulk start"
	if !enable {
		use, short = "disable <name>", "Exclude a service from bulk start"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			err := rt.Store.Update(name, func(svc *lars.Service) {
				svc.Enabled = enable
			})
			if err != nil {
				return err
			}
			if enable {
				rt.Printer.Success("Enabled service %q", name)
			} else {
				rt.Printer.Success("Disabled service %q", name)
			}
			return rt.Printer.Document(map[string]any{"name": name, "enabled": enable})
		},
	}
}
