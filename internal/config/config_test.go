package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/rxnsim/internal/dsl"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Preset != "neutralization" {
		t.Errorf("expected preset neutralization, got %s", cfg.Preset)
	}
	if cfg.Dt != 0.001 {
		t.Errorf("expected dt 0.001, got %f", cfg.Dt)
	}
	if cfg.Duration != 1.0 {
		t.Errorf("expected duration 1.0, got %f", cfg.Duration)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative duration", func(c *Config) { c.Duration = -1 }},
		{"dt beyond duration", func(c *Config) { c.Dt = 2 }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"unknown driver", func(c *Config) { c.Store.Driver = "postgres" }},
		{"unknown preset", func(c *Config) { c.Preset = "nonexistent" }},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.modify(cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: expected ErrInvalid, got %v", tt.name, err)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rxnsim.yaml")

	cfg := DefaultConfig()
	cfg.Simulation = "acid.sim"
	cfg.Dt = 0.0005
	cfg.Workers = 4
	cfg.Output.CSV = "out.csv"
	cfg.Store.Driver = "sqlite"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("expected %+v, got %+v", cfg, loaded)
	}
}

func TestLoad_KeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("dt: 0.01\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dt != 0.01 || cfg.Duration != DefaultDuration || cfg.Store.Driver != DefaultStore {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestPresetsParse(t *testing.T) {
	for _, name := range ListPresets() {
		p := GetPreset(name)
		if p == nil {
			t.Fatalf("preset %s listed but not found", name)
		}
		if _, err := dsl.ParseSource(p.Source); err != nil {
			t.Errorf("preset %s does not parse: %v", name, err)
		}
		if err := p.Run().Validate(); err != nil {
			t.Errorf("preset %s has invalid run config: %v", name, err)
		}
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != 4 {
		t.Fatalf("expected 4 presets, got %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("expected sorted names, got %v", names)
		}
	}
}

func TestPresetApply(t *testing.T) {
	cfg := DefaultConfig()
	GetPreset("chain").Apply(cfg)
	if cfg.Preset != "chain" || cfg.Duration != 5.0 {
		t.Errorf("unexpected config after apply: %+v", cfg)
	}
}
