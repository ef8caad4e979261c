package lars

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPaths returns a Paths layout rooted in a per-test temp dir
func testPaths(t *testing.T) *Paths {
	t.Helper()
	base := t.TempDir()
	p := &Paths{
		ConfigDir: base,
		LogDir:    filepath.Join(base, "logs"),
		RunDir:    filepath.Join(base, "run"),
	}
	require.NoError(t, p.Ensure())
	return p
}

func TestParseRunnerKind(t *testing.T) {
	tests := []struct {
		input   string
		want    RunnerKind
		wantErr bool
	}{
		{"tmux", RunnerTmux, false},
		{"process", RunnerProcess, false},
		{"", RunnerTmux, false},
		{"systemd", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseRunnerKind(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseShutdownBehavior(t *testing.T) {
	tests := []struct {
		input   string
		want    ShutdownBehavior
		wantErr bool
	}{
		{"stop_all", ShutdownStopAll, false},
		{"leave_running", ShutdownLeaveRunning, false},
		{"halt", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseShutdownBehavior(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "crashed", StateCrashed.String())
	assert.Equal(t, "unknown", StateUnknown.String())
}
