package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/axondata/go-lars"
	"github.com/spf13/cobra"
)

func newAddCmd(rt *Runtime) *cobra.Command {
	var (
		name     string
		workdir  string
		envPairs []string
		disabled bool
		runner   string
	)

	cmd := &cobra.Command{
		Use:   "add <command>",
		Short: "Declare a new service",
		Long: `Declare a new service running the given shell command. The name is
derived from the command unless --name is given. The working directory
defaults to the current directory at creation time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := args[0]
			if strings.TrimSpace(command) == "" {
				return withCode(ExitUsageError, fmt.Errorf("command must not be empty"))
			}

			env, err := parseEnvPairs(envPairs)
			if err != nil {
				return withCode(ExitUsageError, err)
			}

			settings := rt.settings()
			kind := settings.DefaultRunner
			if runner != "" {
				kind, err = lars.ParseRunnerKind(runner)
				if err != nil {
					return err
				}
			}

			svc := lars.NewService(name, command)
			svc.Env = env
			svc.Enabled = !disabled
			svc.Runner = kind

			if workdir != "" {
				svc.Dir = workdir
			} else if wd, err := os.Getwd(); err == nil {
				svc.Dir = wd
			}

			if svc.Name == "" {
				base := lars.GenerateName(command)
				err = rt.Store.Mutate(func(reg *lars.Registry) error {
					svc.Name = reg.UniqueName(base)
					return reg.Add(svc)
				})
			} else {
				if err = lars.ValidateName(svc.Name); err == nil {
					err = rt.Store.Add(svc)
				}
			}
			if err != nil {
				return err
			}

			rt.Printer.Success("Added service %q", svc.Name)
			return rt.Printer.Document(svc)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Service name (derived from the command if omitted)")
	cmd.Flags().StringVarP(&workdir, "workdir", "d", "", "Working directory for the command")
	cmd.Flags().StringArrayVarP(&envPairs, "env", "e", nil, "Environment variable (KEY=VALUE, repeatable)")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Add the service in disabled state")
	cmd.Flags().StringVarP(&runner, "runner", "r", "", "Backend kind: tmux or process (default from settings)")

	return cmd
}

// parseEnvPairs converts KEY=VALUE arguments into a map, rejecting
// malformed pairs and duplicate keys
func parseEnvPairs(pairs []string) (map[string]string, error) {
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid environment pair %q, expected KEY=VALUE", pair)
		}
		if _, dup := env[key]; dup {
			return nil, fmt.Errorf("duplicate environment key %q", key)
		}
		env[key] = value
	}
	return env, nil
}
