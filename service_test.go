package lars

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewService(t *testing.T) {
	svc := NewService("web", "python -m http.server")

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", svc.ID.String())
	assert.Equal(t, "web", svc.Name)
	assert.True(t, svc.Enabled)
	assert.Equal(t, RunnerTmux, svc.Runner)
	assert.False(t, svc.CreatedAt.IsZero())
	assert.Equal(t, svc.CreatedAt, svc.UpdatedAt)
}

func TestSessionNameSurvivesRename(t *testing.T) {
	svc := NewService("web", "true")
	before := svc.SessionName()

	require.True(t, strings.HasPrefix(before, SessionPrefix))

	svc.Name = "api"
	assert.Equal(t, before, svc.SessionName())
}

func TestValidateName(t *testing.T) {
	valid := []string{"web", "my-service", "svc_2", "A", strings.Repeat("x", MaxNameLength)}
	for _, name := range valid {
		assert.NoError(t, ValidateName(name), "name %q", name)
	}

	invalid := []string{"", "has space", "dot.name", "slash/name", "colon:name", strings.Repeat("x", MaxNameLength+1), "émigré"}
	for _, name := range invalid {
		err := ValidateName(name)
		require.Error(t, err, "name %q", name)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}

func TestGenerateName(t *testing.T) {
	tests := []struct {
		command string
		want    string
	}{
		{"python -m http.server", "python"},
		{"PORT=8080 node server.js", "node"},
		{"npx serve dist", "serve"},
		{"bunx http-server", "http-server"},
		{"npx @angular/cli@17 serve", "cli"},
		{"/usr/local/bin/redis-server", "redis-server"},
		{"./run.sh", "runsh"},
		{"FOO=1 BAR=2", "service"},
		{"", "service"},
	}

	for _, tt := range tests {
		got := GenerateName(tt.command)
		assert.Equal(t, tt.want, got, "command %q", tt.command)
		assert.NoError(t, ValidateName(got), "command %q", tt.command)
	}
}
