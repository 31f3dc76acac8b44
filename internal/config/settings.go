package config

import (
	"fmt"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Snapshot is the operator-adjustable slice of configuration a request runs
// under. Handlers capture one snapshot at dispatch time and never re-read
// the store mid-request, so a settings change cannot race an in-flight
// request.
type Snapshot struct {
	// Executable is the backend binary to invoke.
	Executable string `yaml:"executable"`

	// ConfigDir selects the credential/config directory, empty meaning
	// the backend's own default.
	ConfigDir string `yaml:"config_dir"`

	// ModelOverride, when set, replaces the model requested by the client.
	ModelOverride string `yaml:"model_override"`
}

// Settings holds the current operator settings behind an atomic pointer.
type Settings struct {
	defaults Snapshot
	current  atomic.Pointer[Snapshot]
}

// NewSettings seeds the store from the backend startup configuration.
func NewSettings(backend *BackendConfig) *Settings {
	s := &Settings{
		defaults: Snapshot{
			Executable:    backend.Executable,
			ConfigDir:     backend.ConfigDir,
			ModelOverride: backend.ModelOverride,
		},
	}
	snap := s.defaults
	s.current.Store(&snap)
	return s
}

// Current returns the active snapshot by value.
func (s *Settings) Current() Snapshot {
	return *s.current.Load()
}

// Apply installs a new snapshot, filling an empty executable from the
// startup default so a sparse settings file cannot break invocation.
func (s *Settings) Apply(snap Snapshot) {
	if snap.Executable == "" {
		snap.Executable = s.defaults.Executable
	}
	s.current.Store(&snap)
}

// LoadSnapshot reads a settings file.
func LoadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read settings file: %w", err)
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse settings file: %w", err)
	}

	return snap, nil
}
