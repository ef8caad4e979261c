package lars

import "fmt"

// CurrentConfigVersion is the registry document version for migrations
const CurrentConfigVersion = 1

// Settings are process-wide options loaded once per invocation
type Settings struct {
	// DefaultRunner is the backend kind assigned to new services
	DefaultRunner RunnerKind `json:"default_runner"`
	// ShutdownBehavior controls what happens to services on supervisor exit
	ShutdownBehavior ShutdownBehavior `json:"shutdown_behavior"`
	// RestartTimeoutSecs bounds the wait for a session to disappear
	// during restart
	RestartTimeoutSecs int `json:"restart_timeout_secs"`
}

// DefaultSettings returns the settings used for a fresh registry
func DefaultSettings() Settings {
	return Settings{
		DefaultRunner:      RunnerTmux,
		ShutdownBehavior:   ShutdownStopAll,
		RestartTimeoutSecs: DefaultRestartTimeoutSecs,
	}
}

// Registry is the persisted document: an ordered list of service
// definitions plus global settings. Insertion order is preserved for
// listing. Name uniqueness holds at all times.
type Registry struct {
	// Version is the document version for migrations
	Version int `json:"config_version"`
	// Services is the ordered list of declared services
	Services []*Service `json:"services"`
	// Settings holds global configuration
	Settings Settings `json:"settings"`
}

// NewRegistry returns an empty registry at the current version
func NewRegistry() *Registry {
	return &Registry{
		Version:  CurrentConfigVersion,
		Settings: DefaultSettings(),
	}
}

// Find returns the service with the given name, or nil
func (r *Registry) Find(name string) *Service {
	for _, s := range r.Services {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Has reports whether a service with the given name exists
func (r *Registry) Has(name string) bool {
	return r.Find(name) != nil
}

// Add appends a service, enforcing name validity and uniqueness
func (r *Registry) Add(svc *Service) error {
	if err := ValidateName(svc.Name); err != nil {
		return err
	}
	if r.Has(svc.Name) {
		return &OpError{Op: OpStore, Name: svc.Name, Err: ErrDuplicateName}
	}
	r.Services = append(r.Services, svc)
	return nil
}

// Remove deletes the named service, returning it
func (r *Registry) Remove(name string) (*Service, error) {
	for i, s := range r.Services {
		if s.Name == name {
			r.Services = append(r.Services[:i], r.Services[i+1:]...)
			return s, nil
		}
	}
	return nil, &OpError{Op: OpStore, Name: name, Err: ErrNotFound}
}

// Rename changes a service's name in place. The service keeps its ID, so
// a running backend session stays bound to it.
func (r *Registry) Rename(oldName, newName string) (*Service, error) {
	if err := ValidateName(newName); err != nil {
		return nil, err
	}
	svc := r.Find(oldName)
	if svc == nil {
		return nil, &OpError{Op: OpStore, Name: oldName, Err: ErrNotFound}
	}
	if oldName != newName && r.Has(newName) {
		return nil, &OpError{Op: OpStore, Name: newName, Err: ErrDuplicateName}
	}
	svc.Name = newName
	svc.Touch()
	return svc, nil
}

// UniqueName returns base if it is free, otherwise base-2, base-3, ...
func (r *Registry) UniqueName(base string) string {
	if !r.Has(base) {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if len(candidate) > MaxNameLength {
			candidate = candidate[len(candidate)-MaxNameLength:]
		}
		if !r.Has(candidate) {
			return candidate
		}
	}
}

// Enabled returns the services with the enabled flag set, in order
func (r *Registry) Enabled() []*Service {
	var out []*Service
	for _, s := range r.Services {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}
