package cli

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/axondata/go-lars"
	"github.com/stretchr/testify/assert"
)

func TestCodeFor(t *testing.T) {
	tests := []struct {
		err  error
		want ExitCode
	}{
		{nil, ExitSuccess},
		{lars.ErrNotFound, ExitNotFound},
		{&lars.OpError{Op: lars.OpStore, Name: "web", Err: lars.ErrNotFound}, ExitNotFound},
		{lars.ErrDuplicateName, ExitDuplicateName},
		{lars.ErrImportCollision, ExitDuplicateName},
		{lars.ErrBackendUnavailable, ExitRunnerUnavailable},
		{lars.ErrLaunchFailed, ExitStartFailed},
		{lars.ErrStopTimeout, ExitStartFailed},
		{lars.ErrInvalidName, ExitUsageError},
		{lars.ErrUnknownRunner, ExitUsageError},
		{errors.New("anything else"), ExitGeneralError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, codeFor(tt.err), "error %v", tt.err)
	}
}

func TestWithCodeOverrides(t *testing.T) {
	err := withCode(ExitConfigError, errors.New("boom"))
	assert.Equal(t, ExitConfigError, codeFor(err))
	assert.Equal(t, "boom", err.Error())

	assert.NoError(t, withCode(ExitConfigError, nil))

	// The explicit code wins over sentinel mapping
	wrapped := withCode(ExitStopFailed, lars.ErrNotFound)
	assert.Equal(t, ExitStopFailed, codeFor(wrapped))
}

func TestParseEnvPairs(t *testing.T) {
	env, err := parseEnvPairs([]string{"A=1", "B=", "C=x=y"})
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "1", "B": "", "C": "x=y"}, env)

	_, err = parseEnvPairs([]string{"NOEQUALS"})
	assert.Error(t, err)

	_, err = parseEnvPairs([]string{"=value"})
	assert.Error(t, err)

	_, err = parseEnvPairs([]string{"A=1", "A=2"})
	assert.Error(t, err)
}

func TestLevelForVerbosity(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, levelForVerbosity(0))
	assert.Equal(t, slog.LevelInfo, levelForVerbosity(1))
	assert.Equal(t, slog.LevelDebug, levelForVerbosity(2))
	assert.Equal(t, LevelTrace, levelForVerbosity(3))
	assert.Equal(t, LevelTrace, levelForVerbosity(7))
}
