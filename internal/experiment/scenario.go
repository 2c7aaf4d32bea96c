package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rxnsim/internal/config"
	"github.com/san-kum/rxnsim/internal/sim"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep names a simulation file or preset. Zero dt or duration
// falls back to the preset's values, then to the defaults.
type ScenarioStep struct {
	Simulation string  `yaml:"simulation"`
	Preset     string  `yaml:"preset"`
	Dt         float64 `yaml:"dt"`
	Duration   float64 `yaml:"duration"`
	SaveAs     string  `yaml:"save_as"`
}

type StepResult struct {
	Step   ScenarioStep
	Config Config
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s ScenarioStep) config() (Config, error) {
	cfg := config.DefaultConfig()
	cfg.Simulation = s.Simulation
	if s.Preset != "" {
		cfg.Preset = s.Preset
	}
	if p := config.GetPreset(cfg.Preset); p != nil && s.Simulation == "" {
		p.Apply(cfg)
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return FromConfig(cfg)
}

// RunScenario executes the steps in order and stops at the first failure,
// returning the results gathered so far.
func RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		slog.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "simulation", cfg.Name)

		exp, err := New(cfg)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Step: step, Config: cfg, Result: result})
	}

	return results, nil
}
