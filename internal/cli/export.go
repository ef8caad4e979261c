package cli

import (
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd(rt *Runtime) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the registry document",
		Long: `Export writes the full registry document as indented JSON, suitable
for later import on another machine.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if output == "" || output == "-" {
				return rt.Store.Export(rt.Streams.Out)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := rt.Store.Export(f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			rt.Printer.Success("Exported to %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}
