package cli

import (
	"errors"
	"fmt"

	"github.com/axondata/go-lars"
	"github.com/spf13/cobra"
)

func newLogsCmd(rt *Runtime) *cobra.Command {
	var (
		follow bool
		lines  int
	)

	cmd := &cobra.Command{
		Use:   "logs <name>",
		Short: "Show a service's captured output",
		Long: `Logs prints the last lines of the service's log file. With --follow
it keeps streaming new output until interrupted or until the service
stops.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.Store.Get(args[0])
			if err != nil {
				return err
			}

			if !follow {
				dumped, err := rt.streamer().Dump(svc, lines)
				if err != nil {
					return err
				}
				for _, line := range dumped {
					fmt.Fprintln(rt.Streams.Out, line)
				}
				return nil
			}

			events, cleanup, err := rt.streamer().Follow(cmd.Context(), svc, lines)
			if err != nil {
				return err
			}
			defer func() { _ = cleanup() }()

			for ev := range events {
				if ev.Err != nil {
					if errors.Is(ev.Err, lars.ErrSourceEnded) {
						rt.Printer.Info("Service %q stopped", svc.Name)
						return nil
					}
					return ev.Err
				}
				fmt.Fprintln(rt.Streams.Out, ev.Line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream new output as it arrives")
	cmd.Flags().IntVarP(&lines, "lines", "n", lars.DefaultTailLines, "Number of trailing lines to show")
	return cmd
}
