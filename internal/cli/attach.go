package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/axondata/go-lars"
	"github.com/spf13/cobra"
)

func newAttachCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "attach <name>",
		Short: "Attach the terminal to a service's session",
		Long: `Attach connects the current terminal to the backend session of a
running service. Detach with the backend's own detach binding (for
tmux, C-b d). Only session-based backends support attaching.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.Store.Get(args[0])
			if err != nil {
				return err
			}
			return attachTo(rt, cmd, svc)
		},
	}
}

// attachTo replaces the command's stdio with the backend's attach
// process and waits for it to exit.
func attachTo(rt *Runtime, cmd *cobra.Command, svc *lars.Service) error {
	runner, err := rt.runnerFor(svc)
	if err != nil {
		return err
	}
	argv, err := runner.AttachArgv(svc)
	if err != nil {
		return err
	}
	alive, err := runner.IsAlive(cmd.Context(), svc)
	if err != nil {
		return err
	}
	if !alive {
		return &lars.OpError{Op: lars.OpAttach, Name: svc.Name, Err: fmt.Errorf("service is not running")}
	}

	attach := exec.Command(argv[0], argv[1:]...)
	attach.Stdin = os.Stdin
	attach.Stdout = os.Stdout
	attach.Stderr = os.Stderr
	if err := attach.Run(); err != nil {
		return &lars.OpError{Op: lars.OpAttach, Name: svc.Name, Err: err}
	}
	return nil
}
