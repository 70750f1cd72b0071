package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/san-kum/vxsim/internal/config"
	"github.com/san-kum/vxsim/internal/scenes"
	"github.com/san-kum/vxsim/internal/sim"
	"github.com/san-kum/vxsim/internal/verlet"
)

// Experiment is one scene built into an engine according to a run config.
type Experiment struct {
	cfg       *config.Config
	scene     scenes.Scene
	engine    *verlet.Engine
	simulator *sim.Simulator
}

// New looks up the scene, overlays the config's world settings onto the
// scene's own, and builds the world.
func New(reg *Registry, cfg *config.Config, log *slog.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	scene, err := reg.GetScene(cfg.Scene)
	if err != nil {
		return nil, err
	}
	world, err := cfg.World.Apply(scene.World())
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", cfg.Scene, err)
	}
	world.Seed = cfg.Seed

	engine, err := verlet.New(world)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", cfg.Scene, err)
	}
	engine.SetLogger(log.With("scene", cfg.Scene))

	if err := scene.Build(engine, rand.New(rand.NewSource(cfg.Seed))); err != nil {
		return nil, fmt.Errorf("build %s: %w", cfg.Scene, err)
	}
	log.Debug("scene built",
		"scene", cfg.Scene,
		"points", len(engine.Points()),
		"spans", len(engine.Spans()),
		"skins", len(engine.Skins()))

	s := sim.New(engine, scene)
	s.SetLogger(log)

	return &Experiment{
		cfg:       cfg,
		scene:     scene,
		engine:    engine,
		simulator: s,
	}, nil
}

// Setup attaches metrics to the simulator.
func (e *Experiment) Setup(metrics []sim.Metric) {
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.simulator.Run(ctx, sim.Config{
		Ticks: e.cfg.Ticks,
		Every: e.cfg.Every,
	})
}

func (e *Experiment) Config() *config.Config   { return e.cfg }
func (e *Experiment) Scene() scenes.Scene       { return e.scene }
func (e *Experiment) Engine() *verlet.Engine    { return e.engine }
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

// Factory returns a constructor of fresh experiments that differ from cfg
// only in seed, for use with sim.Ensemble.
func Factory(reg *Registry, cfg *config.Config, log *slog.Logger) sim.Factory {
	return func(seed int64) (*sim.Simulator, error) {
		c := cfg.Clone()
		c.Seed = seed
		exp, err := New(reg, c, log)
		if err != nil {
			return nil, err
		}
		exp.Setup(reg.DefaultMetrics(c.Scene))
		return exp.Simulator(), nil
	}
}
