package lars

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLoadMissing(t *testing.T) {
	st := NewStore(testPaths(t))

	reg, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, CurrentConfigVersion, reg.Version)
	assert.Empty(t, reg.Services)
	assert.Equal(t, DefaultSettings(), reg.Settings)
}

func TestStoreRoundTrip(t *testing.T) {
	paths := testPaths(t)
	st := NewStore(paths)

	svc := NewService("web", "python -m http.server 8080")
	svc.Dir = "/srv/web"
	svc.Env = map[string]string{"PORT": "8080"}
	require.NoError(t, st.Add(svc))

	reloaded, err := st.Get("web")
	require.NoError(t, err)
	assert.Equal(t, svc.ID, reloaded.ID)
	assert.Equal(t, svc.Command, reloaded.Command)
	assert.Equal(t, svc.Dir, reloaded.Dir)
	assert.Equal(t, svc.Env, reloaded.Env)
	assert.Equal(t, RunnerTmux, reloaded.Runner)

	// The document on disk is valid indented JSON with the schema fields
	contents, err := os.ReadFile(paths.ConfigPath())
	require.NoError(t, err)
	assert.Contains(t, string(contents), `"config_version": 1`)
	assert.Contains(t, string(contents), `"working_directory": "/srv/web"`)
}

func TestStoreSaveLeavesNoTempFiles(t *testing.T) {
	paths := testPaths(t)
	st := NewStore(paths)
	require.NoError(t, st.Add(NewService("web", "true")))

	entries, err := os.ReadDir(paths.ConfigDir)
	require.NoError(t, err)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		assert.False(t, strings.HasPrefix(name, ".") && strings.Contains(name, "config"),
			"leftover temp file %q", name)
	}
}

func TestStoreLoadCorrupt(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, os.WriteFile(paths.ConfigPath(), []byte("{not json"), FileMode))

	_, err := NewStore(paths).Load()
	require.Error(t, err)

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, OpStore, opErr.Op)
}

func TestStoreUpdate(t *testing.T) {
	st := NewStore(testPaths(t))
	svc := NewService("web", "true")
	require.NoError(t, st.Add(svc))

	require.NoError(t, st.Update("web", func(s *Service) {
		s.Enabled = false
	}))

	reloaded, err := st.Get("web")
	require.NoError(t, err)
	assert.False(t, reloaded.Enabled)
	assert.True(t, reloaded.UpdatedAt.After(svc.CreatedAt) || reloaded.UpdatedAt.Equal(svc.CreatedAt))

	err = st.Update("missing", func(*Service) {})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreRenamePersists(t *testing.T) {
	st := NewStore(testPaths(t))
	svc := NewService("web", "true")
	require.NoError(t, st.Add(svc))

	require.NoError(t, st.Rename("web", "frontend"))

	reloaded, err := st.Get("frontend")
	require.NoError(t, err)
	assert.Equal(t, svc.ID, reloaded.ID)

	_, err = st.Get("web")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreExportImport(t *testing.T) {
	src := NewStore(testPaths(t))
	require.NoError(t, src.Add(NewService("web", "python -m http.server")))
	require.NoError(t, src.Add(NewService("api", "node server.js")))

	var buf bytes.Buffer
	require.NoError(t, src.Export(&buf))

	dst := NewStore(testPaths(t))
	n, err := dst.Import(bytes.NewReader(buf.Bytes()), false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	imported, err := dst.Get("web")
	require.NoError(t, err)

	original, err := src.Get("web")
	require.NoError(t, err)
	assert.NotEqual(t, original.ID, imported.ID, "imported services get fresh IDs")
	assert.Equal(t, original.Command, imported.Command)
}

func TestStoreImportCollision(t *testing.T) {
	src := NewStore(testPaths(t))
	require.NoError(t, src.Add(NewService("web", "python -m http.server")))

	var buf bytes.Buffer
	require.NoError(t, src.Export(&buf))
	exported := buf.Bytes()

	dst := NewStore(testPaths(t))
	require.NoError(t, dst.Add(NewService("web", "old command")))
	require.NoError(t, dst.Add(NewService("db", "postgres")))

	// Default: the whole import is rejected, nothing changes
	_, err := dst.Import(bytes.NewReader(exported), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImportCollision)

	kept, err := dst.Get("web")
	require.NoError(t, err)
	assert.Equal(t, "old command", kept.Command)

	// Overwrite: the colliding entry is replaced, others untouched
	n, err := dst.Import(bytes.NewReader(exported), true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	replaced, err := dst.Get("web")
	require.NoError(t, err)
	assert.Equal(t, "python -m http.server", replaced.Command)

	_, err = dst.Get("db")
	assert.NoError(t, err)
}

func TestStoreImportInvalidDocument(t *testing.T) {
	dst := NewStore(testPaths(t))
	_, err := dst.Import(strings.NewReader("not json"), false)
	require.Error(t, err)
}

func TestStoreImportSettingsUntouched(t *testing.T) {
	src := NewStore(testPaths(t))
	require.NoError(t, src.Mutate(func(reg *Registry) error {
		reg.Settings.RestartTimeoutSecs = 99
		return reg.Add(NewService("web", "true"))
	}))

	var buf bytes.Buffer
	require.NoError(t, src.Export(&buf))

	dst := NewStore(testPaths(t))
	_, err := dst.Import(&buf, false)
	require.NoError(t, err)

	reg, err := dst.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultRestartTimeoutSecs, reg.Settings.RestartTimeoutSecs)
}

func TestDefaultPathsEnvOverride(t *testing.T) {
	base := t.TempDir()
	t.Setenv(EnvConfigHome, base)

	paths, err := DefaultPaths()
	require.NoError(t, err)
	assert.Equal(t, base, paths.ConfigDir)
	assert.Equal(t, filepath.Join(base, "logs"), paths.LogDir)
	assert.Equal(t, filepath.Join(base, "run"), paths.RunDir)
	assert.Equal(t, filepath.Join(base, ConfigFileName), paths.ConfigPath())
}

func TestStoreMutateAbandonsOnError(t *testing.T) {
	st := NewStore(testPaths(t))
	require.NoError(t, st.Add(NewService("web", "true")))

	wantErr := assert.AnError
	err := st.Mutate(func(reg *Registry) error {
		reg.Services = nil
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	services, err := st.List()
	require.NoError(t, err)
	assert.Len(t, services, 1, "failed mutation must not persist")
}
