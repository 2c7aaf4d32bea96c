package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rxnsim/internal/sim"
)

const (
	DefaultDt       = 0.001
	DefaultDuration = 1.0
	DefaultPreset   = "neutralization"
	DefaultSettle   = 1e-3
	DefaultStore    = "file"
	DefaultDataDir  = ".rxnsim"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Simulation string       `yaml:"simulation"`
	Preset     string       `yaml:"preset"`
	Dt         float64      `yaml:"dt"`
	Duration   float64      `yaml:"duration"`
	Workers    int          `yaml:"workers"`
	Settle     float64      `yaml:"settle_threshold"`
	Output     OutputConfig `yaml:"output"`
	Store      StoreConfig  `yaml:"store"`
	LogLevel   string       `yaml:"log_level"`
}

type OutputConfig struct {
	CSV   string `yaml:"csv"`
	JSON  string `yaml:"json"`
	Chart string `yaml:"chart"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

func DefaultConfig() *Config {
	return &Config{
		Preset:   DefaultPreset,
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Settle:   DefaultSettle,
		Store: StoreConfig{
			Driver: DefaultStore,
			Path:   DefaultDataDir,
		},
		LogLevel: "info",
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Run is the step size and duration as a run config.
func (c *Config) Run() sim.Config {
	return sim.Config{Dt: c.Dt, Duration: c.Duration}
}

func (c *Config) Validate() error {
	if err := c.Run().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalid, c.Workers)
	}
	if c.Settle < 0 {
		return fmt.Errorf("%w: settle_threshold must not be negative, got %g", ErrInvalid, c.Settle)
	}
	switch c.Store.Driver {
	case "", "file", "sqlite":
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalid, c.Store.Driver)
	}
	if c.Simulation == "" && c.Preset != "" && GetPreset(c.Preset) == nil {
		return fmt.Errorf("%w: unknown preset %q", ErrInvalid, c.Preset)
	}
	return nil
}
