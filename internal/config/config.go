package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/vxsim/internal/verlet"
)

const (
	DefaultScene = "marbles"
	DefaultTicks = 1200
	DefaultEvery = 10
	DefaultSeed  = 1
)

// Config describes one run: which scene, for how long, and any world
// settings that override the scene's own.
type Config struct {
	Scene string      `yaml:"scene"`
	Ticks int         `yaml:"ticks"`
	Every int         `yaml:"every"`
	Seed  int64       `yaml:"seed"`
	World WorldConfig `yaml:"world,omitempty"`
}

// WorldConfig holds world overrides. A nil field keeps the scene's value.
type WorldConfig struct {
	Dimensions    int          `yaml:"dimensions,omitempty"`
	Orientation   string       `yaml:"orientation,omitempty"`
	Gravity       *float64     `yaml:"gravity,omitempty"`
	Rigidity      *int         `yaml:"rigidity,omitempty"`
	Friction      *float64     `yaml:"friction,omitempty"`
	BounceLoss    *float64     `yaml:"bounce_loss,omitempty"`
	SkidLoss      *float64     `yaml:"skid_loss,omitempty"`
	Breeze        *float64     `yaml:"breeze,omitempty"`
	PointsCollide *bool        `yaml:"points_collide,omitempty"`
	XRange        *RangeConfig `yaml:"x_range,omitempty"`
	YRange        *RangeConfig `yaml:"y_range,omitempty"`
	ZRange        *RangeConfig `yaml:"z_range,omitempty"`
}

// RangeConfig overrides the bounds of one axis. A missing bound keeps the
// scene's value; Unbounded clears both before Min and Max apply.
type RangeConfig struct {
	Unbounded bool     `yaml:"unbounded,omitempty"`
	Min       *float64 `yaml:"min,omitempty"`
	Max       *float64 `yaml:"max,omitempty"`
}

func Float(v float64) *float64 { return &v }
func Int(v int) *int           { return &v }
func Bool(v bool) *bool        { return &v }

func DefaultConfig() *Config {
	return &Config{
		Scene: DefaultScene,
		Ticks: DefaultTicks,
		Every: DefaultEvery,
		Seed:  DefaultSeed,
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
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
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

// Validate checks the run settings. World values are checked when they are
// applied to a scene.
func (c *Config) Validate() error {
	if c.Scene == "" {
		return fmt.Errorf("scene must be set")
	}
	if c.Ticks <= 0 {
		return fmt.Errorf("ticks must be positive, got %d", c.Ticks)
	}
	if c.Every <= 0 {
		return fmt.Errorf("every must be positive, got %d", c.Every)
	}
	return nil
}

// Clone copies c deeply enough that overriding a field of the copy never
// touches the original.
func (c *Config) Clone() *Config {
	out := *c
	w := &out.World
	w.Gravity = cloneFloat(c.World.Gravity)
	w.Friction = cloneFloat(c.World.Friction)
	w.BounceLoss = cloneFloat(c.World.BounceLoss)
	w.SkidLoss = cloneFloat(c.World.SkidLoss)
	w.Breeze = cloneFloat(c.World.Breeze)
	if c.World.Rigidity != nil {
		w.Rigidity = Int(*c.World.Rigidity)
	}
	if c.World.PointsCollide != nil {
		w.PointsCollide = Bool(*c.World.PointsCollide)
	}
	w.XRange = c.World.XRange.clone()
	w.YRange = c.World.YRange.clone()
	w.ZRange = c.World.ZRange.clone()
	return &out
}

// Apply overlays the set fields of w onto base and validates the result.
func (w *WorldConfig) Apply(base verlet.Config) (verlet.Config, error) {
	cfg := base
	if w.Dimensions != 0 && w.Dimensions != base.Dimensions {
		return cfg, fmt.Errorf("scene is %dD, config asks for %dD", base.Dimensions, w.Dimensions)
	}
	if w.Orientation != "" {
		o, err := verlet.ParseOrientation(w.Orientation)
		if err != nil {
			return cfg, err
		}
		cfg.Orientation = o
	}
	setFloat(&cfg.Gravity, w.Gravity)
	setFloat(&cfg.Friction, w.Friction)
	setFloat(&cfg.BounceLoss, w.BounceLoss)
	setFloat(&cfg.SkidLoss, w.SkidLoss)
	setFloat(&cfg.Breeze, w.Breeze)
	if w.Rigidity != nil {
		cfg.Rigidity = *w.Rigidity
	}
	if w.PointsCollide != nil {
		cfg.PointsCollide = *w.PointsCollide
	}
	for axis, r := range []*RangeConfig{w.XRange, w.YRange, w.ZRange} {
		if r == nil {
			continue
		}
		if r.Unbounded {
			cfg.Ranges[axis] = verlet.Range{}
		}
		if r.Min != nil {
			cfg.Ranges[axis].Min = verlet.Bound(*r.Min)
		}
		if r.Max != nil {
			cfg.Ranges[axis].Max = verlet.Bound(*r.Max)
		}
	}
	return cfg, cfg.Validate()
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(*v)
}

func (r *RangeConfig) clone() *RangeConfig {
	if r == nil {
		return nil
	}
	return &RangeConfig{Unbounded: r.Unbounded, Min: cloneFloat(r.Min), Max: cloneFloat(r.Max)}
}
