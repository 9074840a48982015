// Package config loads the optional repository configuration file.
// Repositories created before the config file existed carry none, so a
// missing file yields defaults rather than an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ConfigFileName is the name of the config file inside the .spool root.
const ConfigFileName = "config.yml"

const (
	// CurrentVersion is the config schema version this build writes.
	CurrentVersion = 1

	// DefaultArchiveDays is the completion-age cutoff for archiving.
	DefaultArchiveDays = 30

	// DefaultActor is the system identity stamped on synthetic events.
	DefaultActor = "@spool"

	// DefaultBranchFallback is used when the current git branch cannot
	// be determined.
	DefaultBranchFallback = "main"

	fileMode = 0o600
)

// Sentinel errors.
var (
	ErrNotFound = errors.New("config file not found")
	ErrInvalid  = errors.New("invalid config")
)

// Config holds repository-level settings.
type Config struct {
	Version        int    `yaml:"version"`
	Name           string `yaml:"name,omitempty"`
	ArchiveDays    int    `yaml:"archive_days"`
	Actor          string `yaml:"actor"`
	BranchFallback string `yaml:"branch_fallback"`
}

// NewDefault creates a Config with default values.
func NewDefault(name string) *Config {
	return &Config{
		Version:        CurrentVersion,
		Name:           name,
		ArchiveDays:    DefaultArchiveDays,
		Actor:          DefaultActor,
		BranchFallback: DefaultBranchFallback,
	}
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if c.ArchiveDays < 1 {
		return fmt.Errorf("%w: archive_days must be >= 1", ErrInvalid)
	}
	if c.Actor == "" {
		return fmt.Errorf("%w: actor is required", ErrInvalid)
	}
	if c.BranchFallback == "" {
		return fmt.Errorf("%w: branch_fallback is required", ErrInvalid)
	}
	return nil
}

// Save writes the config into the given repository root.
func (c *Config) Save(root string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(filepath.Join(root, ConfigFileName), data, fileMode)
}

// Load reads and validates the config from the given repository root.
// Returns ErrNotFound (wrapped) when no config file exists; callers
// usually fall back to NewDefault.
func Load(root string) (*Config, error) {
	path := filepath.Join(root, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault loads the config when present and falls back to defaults
// when the file is missing. Parse and validation failures still surface.
func LoadOrDefault(root string) (*Config, error) {
	cfg, err := Load(root)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return NewDefault(""), nil
		}
		return nil, err
	}
	return cfg, nil
}
