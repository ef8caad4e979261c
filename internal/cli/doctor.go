package cli

import (
	"fmt"

	"github.com/axondata/go-lars"
	"github.com/spf13/cobra"
)

func newDoctorCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment for problems",
		RunE: func(cmd *cobra.Command, _ []string) error {
			checks := lars.RunChecks(cmd.Context(), rt.Paths, rt.settings())

			if rt.Printer.JSON {
				if err := rt.Printer.Document(checks); err != nil {
					return err
				}
			} else {
				for _, c := range checks {
					mark := "✓"
					if c.Status == lars.CheckFail {
						mark = "✗"
						if !c.Required {
							mark = "!"
						}
					}
					fmt.Fprintf(rt.Streams.Out, "%s %s: %s\n", mark, c.Name, c.Message)
				}
			}

			if !lars.AllRequiredPassed(checks) {
				return withCode(ExitRunnerUnavailable, fmt.Errorf("required checks failed"))
			}
			return nil
		},
	}
}
