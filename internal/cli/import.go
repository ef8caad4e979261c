package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newImportCmd(rt *Runtime) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import services from an exported document",
		Long: `Import merges services from an exported registry document, reading
from the given file or stdin. By default any name collision rejects
the whole import; --overwrite replaces colliding services instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var src io.Reader = rt.Streams.In
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				src = f
			}

			n, err := rt.Store.Import(src, overwrite)
			if err != nil {
				return err
			}
			rt.Printer.Success("Imported %d service(s)", n)
			if rt.Printer.JSON {
				return rt.Printer.Document(map[string]int{"imported": n})
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace services whose names collide")
	return cmd
}
