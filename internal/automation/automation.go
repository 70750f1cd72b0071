// Package automation runs scripted sequences of scenes and parameter sweeps.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/vxsim/internal/config"
	"github.com/san-kum/vxsim/internal/experiment"
	"github.com/san-kum/vxsim/internal/sim"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. Zero fields fall back to the preset, then to
// the defaults.
type ScenarioStep struct {
	Scene  string             `yaml:"scene"`
	Preset string             `yaml:"preset"`
	Ticks  int                `yaml:"ticks"`
	Every  int                `yaml:"every"`
	Seed   int64              `yaml:"seed"`
	World  config.WorldConfig `yaml:"world"`
	Save   bool               `yaml:"save"`
}

// Config resolves the step into a run config.
func (s *ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Scene, s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %s for scene %s", s.Preset, s.Scene)
		}
	}
	cfg.Scene = s.Scene
	if s.Ticks != 0 {
		cfg.Ticks = s.Ticks
	}
	if s.Every != 0 {
		cfg.Every = s.Every
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	overlay(&cfg.World, &s.World)
	return cfg, cfg.Validate()
}

// overlay copies the set fields of src onto dst.
func overlay(dst, src *config.WorldConfig) {
	if src.Dimensions != 0 {
		dst.Dimensions = src.Dimensions
	}
	if src.Orientation != "" {
		dst.Orientation = src.Orientation
	}
	if src.Gravity != nil {
		dst.Gravity = src.Gravity
	}
	if src.Rigidity != nil {
		dst.Rigidity = src.Rigidity
	}
	if src.Friction != nil {
		dst.Friction = src.Friction
	}
	if src.BounceLoss != nil {
		dst.BounceLoss = src.BounceLoss
	}
	if src.SkidLoss != nil {
		dst.SkidLoss = src.SkidLoss
	}
	if src.Breeze != nil {
		dst.Breeze = src.Breeze
	}
	if src.PointsCollide != nil {
		dst.PointsCollide = src.PointsCollide
	}
	if src.XRange != nil {
		dst.XRange = src.XRange
	}
	if src.YRange != nil {
		dst.YRange = src.YRange
	}
	if src.ZRange != nil {
		dst.ZRange = src.ZRange
	}
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%s: scenario has no steps", path)
	}
	return &scenario, nil
}

// Saver persists a finished run and returns its id.
type Saver interface {
	Save(cfg *config.Config, result *sim.Result) (string, error)
}

// StepResult is the outcome of one scenario step. RunID is empty when the
// step was not saved.
type StepResult struct {
	Config *config.Config
	Result *sim.Result
	RunID  string
}

// RunScenario executes all steps in order. Steps marked save are passed to
// saver, which may be nil when no step saves.
func RunScenario(ctx context.Context, scenario *Scenario, reg *experiment.Registry, saver Saver, log *slog.Logger) ([]StepResult, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		log.Info("running step", "step", i+1, "of", len(scenario.Steps), "scene", step.Scene)

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		exp, err := experiment.New(reg, cfg, log)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		exp.Setup(reg.DefaultMetrics(cfg.Scene))

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Config: cfg, Result: result}
		if step.Save {
			if saver == nil {
				return results, fmt.Errorf("step %d: nowhere to save", i+1)
			}
			if sr.RunID, err = saver.Save(cfg, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// ParameterSweep runs one scene across evenly spaced values of a world
// setting.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
	Stale      int
	Failed     bool
}

// RunSweep executes a parameter sweep. A run stopped by a non-finite
// coordinate is reported as Failed rather than aborting the sweep.
func RunSweep(ctx context.Context, sweep *ParameterSweep, reg *experiment.Registry, log *slog.Logger) ([]SweepResult, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	steps := sweep.NumSteps
	if steps <= 1 {
		steps = 2
	}
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(steps-1)
	results := make([]SweepResult, 0, steps)

	for i := 0; i < steps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep
		cfg := sweep.Base.Clone()
		if err := cfg.World.SetParam(sweep.ParamName, paramVal); err != nil {
			return nil, err
		}

		exp, err := experiment.New(reg, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}
		exp.Setup(reg.DefaultMetrics(cfg.Scene))
		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			ParamValue: paramVal,
			Metrics:    result.Metrics,
			Stale:      result.StaleReports,
			Failed:     len(result.Errors) > 0,
		})
		log.Info("sweep", "step", i+1, "of", steps, sweep.ParamName, paramVal)
	}

	return results, nil
}
