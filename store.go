package lars

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"
	"github.com/google/uuid"
)

// EnvConfigHome overrides the config/state base directory when set
const EnvConfigHome = "LARS_CONFIG_HOME"

// Paths resolves the on-disk layout: the registry document under the
// config dir, log sinks and runtime markers under the state dir.
type Paths struct {
	// ConfigDir holds the registry document and lock file
	ConfigDir string
	// LogDir holds per-service log sinks
	LogDir string
	// RunDir holds started markers and pidfiles
	RunDir string
}

// DefaultPaths resolves platform directories, honoring EnvConfigHome.
// Logs and runtime state go under the user state dir when available so
// the config dir stays portable.
func DefaultPaths() (*Paths, error) {
	if base := os.Getenv(EnvConfigHome); base != "" {
		return &Paths{
			ConfigDir: base,
			LogDir:    filepath.Join(base, "logs"),
			RunDir:    filepath.Join(base, "run"),
		}, nil
	}

	configBase, err := os.UserConfigDir()
	if err != nil {
		return nil, &OpError{Op: OpStore, Name: "config dir", Err: err}
	}
	configDir := filepath.Join(configBase, "lars")

	stateDir := configDir
	if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
		stateDir = filepath.Join(xdgState, "lars")
	} else if home, err := os.UserHomeDir(); err == nil {
		stateDir = filepath.Join(home, ".local", "state", "lars")
	}

	return &Paths{
		ConfigDir: configDir,
		LogDir:    filepath.Join(stateDir, "logs"),
		RunDir:    filepath.Join(stateDir, "run"),
	}, nil
}

// ConfigPath returns the registry document path
func (p *Paths) ConfigPath() string {
	return filepath.Join(p.ConfigDir, ConfigFileName)
}

// LockPath returns the advisory lock file path
func (p *Paths) LockPath() string {
	return filepath.Join(p.ConfigDir, LockFileName)
}

// LogPath returns the log sink path for a service ID
func (p *Paths) LogPath(id uuid.UUID) string {
	return filepath.Join(p.LogDir, id.String()+LogFileExt)
}

// MarkerPath returns the started-marker path for a service ID
func (p *Paths) MarkerPath(id uuid.UUID) string {
	return filepath.Join(p.RunDir, id.String()+MarkerFileExt)
}

// PIDPath returns the pidfile path for a raw-process service ID
func (p *Paths) PIDPath(id uuid.UUID) string {
	return filepath.Join(p.RunDir, id.String()+PIDFileExt)
}

// Ensure creates all directories
func (p *Paths) Ensure() error {
	for _, dir := range []string{p.ConfigDir, p.LogDir, p.RunDir} {
		if err := os.MkdirAll(dir, DirMode); err != nil {
			return &OpError{Op: OpStore, Name: dir, Err: err}
		}
	}
	return nil
}

// Writable reports whether a directory can be created and written to
func (p *Paths) Writable(dir string) bool {
	if err := os.MkdirAll(dir, DirMode); err != nil {
		return false
	}
	probe := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(probe, []byte("test"), FileMode); err != nil {
		return false
	}
	_ = os.Remove(probe)
	return true
}

// Store persists the registry document. Every mutation runs under an
// exclusive file lock for its whole read-modify-write cycle, so
// concurrent invocations from different terminals serialize instead of
// corrupting the document. Saves are atomic rename-into-place.
type Store struct {
	paths *Paths
}

// NewStore creates a Store over the given paths
func NewStore(paths *Paths) *Store {
	return &Store{paths: paths}
}

// Paths returns the resolved path layout
func (st *Store) Paths() *Paths {
	return st.paths
}

// Load reads the registry document. A missing file yields a fresh
// default registry rather than an error.
func (st *Store) Load() (*Registry, error) {
	contents, err := os.ReadFile(st.paths.ConfigPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewRegistry(), nil
		}
		return nil, &OpError{Op: OpStore, Name: st.paths.ConfigPath(), Err: err}
	}

	reg := NewRegistry()
	if err := json.Unmarshal(contents, reg); err != nil {
		return nil, &OpError{Op: OpStore, Name: st.paths.ConfigPath(), Err: err}
	}

	st.migrate(reg)
	return reg, nil
}

// Save writes the registry document atomically
func (st *Store) Save(reg *Registry) error {
	if err := st.paths.Ensure(); err != nil {
		return err
	}
	contents, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return &OpError{Op: OpStore, Name: st.paths.ConfigPath(), Err: err}
	}
	contents = append(contents, '\n')
	if err := renameio.WriteFile(st.paths.ConfigPath(), contents, FileMode); err != nil {
		return &OpError{Op: OpStore, Name: st.paths.ConfigPath(), Err: err}
	}
	return nil
}

func (st *Store) migrate(reg *Registry) {
	if reg.Version < CurrentConfigVersion {
		reg.Version = CurrentConfigVersion
	}
	if reg.Settings.RestartTimeoutSecs <= 0 {
		reg.Settings.RestartTimeoutSecs = DefaultRestartTimeoutSecs
	}
}

// Mutate runs fn against the current registry under the exclusive lock
// and saves the result. fn returning an error abandons the write.
func (st *Store) Mutate(fn func(*Registry) error) error {
	if err := st.paths.Ensure(); err != nil {
		return err
	}

	lock := flock.New(st.paths.LockPath())
	if err := lock.Lock(); err != nil {
		return &OpError{Op: OpStore, Name: st.paths.LockPath(), Err: err}
	}
	defer func() { _ = lock.Unlock() }()

	reg, err := st.Load()
	if err != nil {
		return err
	}
	if err := fn(reg); err != nil {
		return err
	}
	return st.Save(reg)
}

// Get returns the named service
func (st *Store) Get(name string) (*Service, error) {
	reg, err := st.Load()
	if err != nil {
		return nil, err
	}
	svc := reg.Find(name)
	if svc == nil {
		return nil, &OpError{Op: OpStore, Name: name, Err: ErrNotFound}
	}
	return svc, nil
}

// List returns all services in insertion order
func (st *Store) List() ([]*Service, error) {
	reg, err := st.Load()
	if err != nil {
		return nil, err
	}
	return reg.Services, nil
}

// Add registers a new service
func (st *Store) Add(svc *Service) error {
	return st.Mutate(func(reg *Registry) error {
		return reg.Add(svc)
	})
}

// Remove deletes the named service, returning its definition
func (st *Store) Remove(name string) (*Service, error) {
	var removed *Service
	err := st.Mutate(func(reg *Registry) error {
		svc, err := reg.Remove(name)
		if err != nil {
			return err
		}
		removed = svc
		return nil
	})
	return removed, err
}

// Update applies fn to the named service and persists the result
func (st *Store) Update(name string, fn func(*Service)) error {
	return st.Mutate(func(reg *Registry) error {
		svc := reg.Find(name)
		if svc == nil {
			return &OpError{Op: OpStore, Name: name, Err: ErrNotFound}
		}
		fn(svc)
		svc.Touch()
		return nil
	})
}

// Rename changes a service's name, preserving its ID and session binding
func (st *Store) Rename(oldName, newName string) error {
	return st.Mutate(func(reg *Registry) error {
		_, err := reg.Rename(oldName, newName)
		return err
	})
}

// Export writes the registry document to w as portable JSON
func (st *Store) Export(w io.Writer) error {
	reg, err := st.Load()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reg); err != nil {
		return &OpError{Op: OpStore, Name: "export", Err: err}
	}
	return nil
}

// Import merges services from an exported document into the registry.
// Any name collision rejects the whole import unless overwrite is set,
// in which case colliding entries are replaced in place. Imported
// services receive fresh IDs so they never alias other sessions.
// Settings are untouched; they belong to this machine.
func (st *Store) Import(r io.Reader, overwrite bool) (int, error) {
	contents, err := io.ReadAll(r)
	if err != nil {
		return 0, &OpError{Op: OpStore, Name: "import", Err: err}
	}
	incoming := NewRegistry()
	if err := json.Unmarshal(contents, incoming); err != nil {
		return 0, &OpError{Op: OpStore, Name: "import", Err: err}
	}

	imported := 0
	err = st.Mutate(func(reg *Registry) error {
		if !overwrite {
			var collisions []string
			for _, svc := range incoming.Services {
				if reg.Has(svc.Name) {
					collisions = append(collisions, svc.Name)
				}
			}
			if len(collisions) > 0 {
				sort.Strings(collisions)
				return &OpError{
					Op:   OpStore,
					Name: strings.Join(collisions, ", "),
					Err:  fmt.Errorf("%w (use --overwrite to replace)", ErrImportCollision),
				}
			}
		}

		for _, svc := range incoming.Services {
			if err := ValidateName(svc.Name); err != nil {
				return err
			}
			svc.ID = uuid.New()
			svc.Touch()
			if existing := reg.Find(svc.Name); existing != nil {
				*existing = *svc
			} else if err := reg.Add(svc); err != nil {
				return err
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return imported, nil
}
