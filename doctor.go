package lars

import (
	"context"
	"fmt"
	"os"
)

// Check statuses
const (
	CheckPass = "pass"
	CheckFail = "fail"
)

// Check is one environment diagnostic result
type Check struct {
	// Name identifies the check
	Name string `json:"name"`
	// Status is CheckPass or CheckFail
	Status string `json:"status"`
	// Message is a human-readable detail
	Message string `json:"message"`
	// Required marks checks whose failure makes the tool unusable
	Required bool `json:"required"`
}

// RunChecks verifies the environment: backend tooling, directory
// writability, and the user's shell. tmux is required only as long as
// it is the default runner; the raw-process fallback needs no tooling.
func RunChecks(ctx context.Context, paths *Paths, settings Settings) []Check {
	var checks []Check

	tmux := NewTmuxRunner(paths)
	tmuxRequired := settings.DefaultRunner == RunnerTmux
	if tmux.Available() {
		msg := "installed"
		if v := tmux.Version(ctx); v != "" {
			msg = v
		}
		checks = append(checks, Check{Name: "tmux", Status: CheckPass, Message: msg, Required: tmuxRequired})
	} else {
		checks = append(checks, Check{Name: "tmux", Status: CheckFail, Message: "not found in PATH", Required: tmuxRequired})
	}

	checks = append(checks, dirCheck(paths, "config directory", paths.ConfigDir))
	checks = append(checks, dirCheck(paths, "log directory", paths.LogDir))
	checks = append(checks, dirCheck(paths, "state directory", paths.RunDir))

	if shell := os.Getenv("SHELL"); shell != "" {
		checks = append(checks, Check{Name: "shell", Status: CheckPass, Message: shell, Required: false})
	} else {
		checks = append(checks, Check{Name: "shell", Status: CheckFail, Message: "$SHELL is not set", Required: false})
	}

	return checks
}

func dirCheck(paths *Paths, name, dir string) Check {
	if paths.Writable(dir) {
		return Check{Name: name, Status: CheckPass, Message: fmt.Sprintf("%s is writable", dir), Required: true}
	}
	return Check{Name: name, Status: CheckFail, Message: fmt.Sprintf("%s is not writable", dir), Required: true}
}

// AllRequiredPassed reports whether every required check passed
func AllRequiredPassed(checks []Check) bool {
	for _, c := range checks {
		if c.Required && c.Status != CheckPass {
			return false
		}
	}
	return true
}
