package cli

import (
	"fmt"
	"strconv"

	"github.com/axondata/go-lars"
	"github.com/spf13/cobra"
)

func newConfigCmd(rt *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change global settings",
	}
	cmd.AddCommand(newConfigShowCmd(rt))
	cmd.AddCommand(newConfigSetCmd(rt))
	return cmd
}

func newConfigShowCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show global settings",
		RunE: func(_ *cobra.Command, _ []string) error {
			reg, err := rt.Store.Load()
			if err != nil {
				return err
			}
			if rt.Printer.JSON {
				return rt.Printer.Document(reg.Settings)
			}
			out := rt.Streams.Out
			fmt.Fprintf(out, "default_runner:        %s\n", reg.Settings.DefaultRunner)
			fmt.Fprintf(out, "shutdown_behavior:     %s\n", reg.Settings.ShutdownBehavior)
			fmt.Fprintf(out, "restart_timeout_secs:  %d\n", reg.Settings.RestartTimeoutSecs)
			fmt.Fprintf(out, "config_file:           %s\n", rt.Paths.ConfigPath())
			return nil
		},
	}
}

func newConfigSetCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one global setting",
		Long: `Set updates a single setting. Keys: default_runner (tmux, process),
shutdown_behavior (stop_all, leave_running), restart_timeout_secs.`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			err := rt.Store.Mutate(func(reg *lars.Registry) error {
				return applySetting(&reg.Settings, key, value)
			})
			if err != nil {
				return err
			}
			rt.Printer.Success("Set %s to %s", key, value)
			if rt.Printer.JSON {
				return rt.Printer.Document(map[string]string{"key": key, "value": value})
			}
			return nil
		},
	}
}

func applySetting(settings *lars.Settings, key, value string) error {
	switch key {
	case "default_runner":
		kind, err := lars.ParseRunnerKind(value)
		if err != nil {
			return err
		}
		settings.DefaultRunner = kind
	case "shutdown_behavior":
		behavior, err := lars.ParseShutdownBehavior(value)
		if err != nil {
			return err
		}
		settings.ShutdownBehavior = behavior
	case "restart_timeout_secs":
		secs, err := strconv.Atoi(value)
		if err != nil || secs <= 0 {
			return fmt.Errorf("restart_timeout_secs must be a positive integer, got %q", value)
		}
		settings.RestartTimeoutSecs = secs
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}
