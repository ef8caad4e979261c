package lars

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxNameLength is the maximum length of a service name
const MaxNameLength = 64

// Service is a declared long-running command plus its execution context.
// The ID is assigned at creation and never changes; backend sessions are
// keyed by it, so a rename leaves a running session untouched.
type Service struct {
	// ID is the immutable unique identifier
	ID uuid.UUID `json:"id"`
	// Name is the unique, user-facing identifier
	Name string `json:"name"`
	// Command is the shell command to execute, opaque to the runtime
	Command string `json:"command"`
	// Dir is the working directory for the command
	Dir string `json:"working_directory,omitempty"`
	// Env contains environment variables merged over the inherited environment
	Env map[string]string `json:"environment,omitempty"`
	// Enabled excludes the service from bulk start when false
	Enabled bool `json:"enabled"`
	// Autostart marks the service for start on supervisor startup
	Autostart bool `json:"autostart,omitempty"`
	// Runner selects the execution backend, fixed at creation
	Runner RunnerKind `json:"backend_kind"`
	// CreatedAt is the creation timestamp
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the last mutation timestamp
	UpdatedAt time.Time `json:"updated_at"`
}

// NewService creates a service with a fresh ID and timestamps
func NewService(name, command string) *Service {
	now := time.Now().UTC()
	return &Service{
		ID:        uuid.New(),
		Name:      name,
		Command:   command,
		Env:       make(map[string]string),
		Enabled:   true,
		Runner:    RunnerTmux,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the mutation timestamp
func (s *Service) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// SessionName returns the backend session name derived from the service ID
func (s *Service) SessionName() string {
	return SessionPrefix + s.ID.String()
}

// ValidateName checks a service name: 1-64 characters, limited to
// alphanumerics, underscores, and hyphens. Names are used verbatim in
// backend session lookups and file names, so the character set is strict.
func ValidateName(name string) error {
	if name == "" {
		return &OpError{Op: OpUnknown, Name: name, Err: fmt.Errorf("%w: empty", ErrInvalidName)}
	}
	if len(name) > MaxNameLength {
		return &OpError{Op: OpUnknown, Name: name, Err: fmt.Errorf("%w: length %d exceeds %d", ErrInvalidName, len(name), MaxNameLength)}
	}
	for _, r := range name {
		if !isNameRune(r) {
			return &OpError{Op: OpUnknown, Name: name, Err: fmt.Errorf("%w: only alphanumerics, underscores, and hyphens are allowed", ErrInvalidName)}
		}
	}
	return nil
}

func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-':
		return true
	}
	return false
}

// GenerateName derives a service name from a command line. Leading
// VAR=value assignments are skipped, npx/bunx package arguments are
// preferred over the launcher itself, @version suffixes are stripped,
// and path prefixes are dropped.
func GenerateName(command string) string {
	var words []string
	for _, word := range strings.Fields(command) {
		if isEnvAssignment(word) {
			continue
		}
		words = append(words, word)
	}

	if len(words) == 0 {
		return "service"
	}

	candidate := words[0]
	if (candidate == "npx" || candidate == "bunx") && len(words) > 1 {
		candidate = words[1]
	}

	if i := strings.LastIndexByte(candidate, '/'); i >= 0 {
		candidate = candidate[i+1:]
	}
	// Strip @version suffixes, but not a leading @scope
	if i := strings.LastIndexByte(candidate, '@'); i > 0 {
		candidate = candidate[:i]
	}

	var b strings.Builder
	for _, r := range candidate {
		if isNameRune(r) {
			b.WriteRune(r)
		}
	}

	name := b.String()
	if name == "" {
		return "service"
	}
	if len(name) > MaxNameLength {
		name = name[:MaxNameLength]
	}
	return name
}

// isEnvAssignment reports whether a word looks like VAR=value
func isEnvAssignment(word string) bool {
	eq := strings.IndexByte(word, '=')
	if eq <= 0 {
		return false
	}
	key := word[:eq]
	first := key[0]
	if !(first == '_' || (first >= 'a' && first <= 'z') || (first >= 'A' && first <= 'Z')) {
		return false
	}
	for i := 1; i < len(key); i++ {
		c := key[i]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			continue
		}
		return false
	}
	return true
}
