package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	cfg := NewDefault("myproject")
	cfg.ArchiveDays = 14

	if err := cfg.Save(root); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Name != "myproject" || loaded.ArchiveDays != 14 {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.Actor != DefaultActor || loaded.BranchFallback != DefaultBranchFallback {
		t.Errorf("defaults lost: %+v", loaded)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ArchiveDays != DefaultArchiveDays || cfg.Actor != DefaultActor {
		t.Errorf("cfg = %+v", cfg)
	}

	// An invalid file still surfaces, even through LoadOrDefault.
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ConfigFileName), []byte("version: 99\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOrDefault(root); !errors.Is(err, ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(c *Config) {}, true},
		{"bad version", func(c *Config) { c.Version = 2 }, false},
		{"zero archive days", func(c *Config) { c.ArchiveDays = 0 }, false},
		{"empty actor", func(c *Config) { c.Actor = "" }, false},
		{"empty branch fallback", func(c *Config) { c.BranchFallback = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault("")
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}
