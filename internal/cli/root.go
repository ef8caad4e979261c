package cli

import (
	"context"
	"os"

	"github.com/axondata/go-lars"
	"github.com/axondata/go-lars/internal/iostreams"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const rootLong = `lars declares long-running local commands as named services and
controls their lifecycle. Each service runs inside its own tmux session
(or as a raw detached process), so it survives terminal disconnects and
can be re-attached at any time.

The registry lives under the user config directory; override the
location with the ` + lars.EnvConfigHome + ` environment variable.`

// NewRootCmd builds the command tree over the given runtime. Runtime
// fields left nil are assembled from the environment once flags are
// parsed, so tests can pre-populate mocks while production resolves
// real paths and runners.
func NewRootCmd(rt *Runtime) *cobra.Command {
	var (
		jsonOut   bool
		quiet     bool
		noColor   bool
		verbosity int
	)

	cmd := &cobra.Command{
		Use:           "lars",
		Short:         "Manage long-running local services in tmux sessions",
		Long:          rootLong,
		Version:       lars.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.Streams == nil {
				rt.Streams = iostreams.GetOSIOStreams()
			}
			setupLogging(rt.Streams.ErrOut, verbosity, quiet)

			if rt.Paths == nil {
				paths, err := lars.DefaultPaths()
				if err != nil {
					return withCode(ExitConfigError, err)
				}
				rt.Paths = paths
			}
			if rt.Store == nil {
				rt.Store = lars.NewStore(rt.Paths)
			}
			if rt.Runners == nil {
				rt.Runners = lars.Runners(rt.Paths)
			}
			if rt.Printer == nil {
				rt.Printer = &Printer{
					JSON:   jsonOut,
					Color:  colorEnabled(rt.Streams, noColor),
					Quiet:  quiet,
					Out:    rt.Streams.Out,
					ErrOut: rt.Streams.ErrOut,
				}
			}
			rt.Printer.JSON = rt.Printer.JSON || jsonOut
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Render results as JSON instead of formatted text")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase diagnostic verbosity (-v, -vv, -vvv)")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(
		newAddCmd(rt),
		newRemoveCmd(rt),
		newRenameCmd(rt),
		newEnableCmd(rt, true),
		newEnableCmd(rt, false),
		newListCmd(rt),
		newStartCmd(rt),
		newStopCmd(rt),
		newRestartCmd(rt),
		newStartAllCmd(rt),
		newStopAllCmd(rt),
		newRestartAllCmd(rt),
		newInspectCmd(rt),
		newLogsCmd(rt),
		newAttachCmd(rt),
		newConfigCmd(rt),
		newDoctorCmd(rt),
		newExportCmd(rt),
		newImportCmd(rt),
	)

	return cmd
}

// Execute runs the CLI and returns the process exit code
func Execute(ctx context.Context, streams *iostreams.IOStreams) ExitCode {
	rt := &Runtime{Streams: streams}
	root := NewRootCmd(rt)
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.ErrOut)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	if rt.Printer != nil {
		if rt.Printer.JSON {
			_ = rt.Printer.Document(map[string]string{"error": err.Error()})
		} else {
			rt.Printer.Error("%v", err)
		}
	}
	return codeFor(err)
}

// colorEnabled honors --no-color, NO_COLOR, and TTY detection
func colorEnabled(streams *iostreams.IOStreams, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := streams.Out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
