package experiment

import (
	"context"
	"testing"

	"github.com/san-kum/vxsim/internal/config"
	"github.com/san-kum/vxsim/internal/sim"
)

func TestRegistryListsScenes(t *testing.T) {
	reg := NewRegistry()
	want := []string{"cube", "marbles", "ragdoll", "rope", "shards"}
	got := reg.ListScenes()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("scene %d = %s, want %s", i, got[i], want[i])
		}
	}
	if _, err := reg.GetScene("teapot"); err == nil {
		t.Error("expected error for unknown scene")
	}
}

func TestNewAppliesWorldOverrides(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scene = "rope"
	cfg.World.Gravity = config.Float(0.9)
	cfg.Seed = 42

	exp, err := New(NewRegistry(), cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	world := exp.Engine().Config()
	if world.Gravity != 0.9 {
		t.Errorf("gravity = %v, want 0.9", world.Gravity)
	}
	if world.Seed != 42 {
		t.Errorf("seed = %v, want 42", world.Seed)
	}
	if exp.Scene().Name() != "rope" {
		t.Errorf("scene = %s", exp.Scene().Name())
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown scene", func(c *config.Config) { c.Scene = "teapot" }},
		{"no ticks", func(c *config.Config) { c.Ticks = 0 }},
		{"dimension mismatch", func(c *config.Config) { c.World.Dimensions = 3 }},
		{"negative friction", func(c *config.Config) { c.World.Friction = config.Float(-1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			if _, err := New(NewRegistry(), cfg, nil); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestRunIsDeterministic(t *testing.T) {
	run := func() *sim.Result {
		cfg := config.DefaultConfig()
		cfg.Scene = "ragdoll"
		cfg.Ticks = 200
		cfg.Every = 50
		exp, err := New(NewRegistry(), cfg, nil)
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		exp.Setup(NewRegistry().DefaultMetrics(cfg.Scene))
		res, err := exp.Run(context.Background())
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return res
	}

	a, b := run(), run()
	if len(a.Frames) != 5 || len(b.Frames) != 5 {
		t.Fatalf("expected 5 frames, got %d and %d", len(a.Frames), len(b.Frames))
	}
	fa, fb := a.Final(), b.Final()
	for i := range fa.Points {
		if fa.Points[i].Position != fb.Points[i].Position {
			t.Fatalf("point %d diverged: %v vs %v", fa.Points[i].ID, fa.Points[i].Position, fb.Points[i].Position)
		}
	}
	for name, v := range a.Metrics {
		if b.Metrics[name] != v {
			t.Errorf("metric %s differs: %v vs %v", name, v, b.Metrics[name])
		}
	}
}

func TestFactoryEnsemble(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scene = "cube"
	ens := sim.NewEnsemble(Factory(NewRegistry(), cfg, nil), 3, 1)

	results, err := ens.Run(context.Background(), sim.Config{Ticks: 60, Every: 30})
	if err != nil {
		t.Fatalf("ensemble: %v", err)
	}
	for i, r := range results {
		if r.TicksTaken != 60 {
			t.Errorf("run %d took %d ticks", i, r.TicksTaken)
		}
		if _, ok := r.Metrics["energy"]; !ok {
			t.Errorf("run %d missing energy metric", i)
		}
	}
	if cfg.Seed != config.DefaultSeed {
		t.Errorf("factory mutated the base config seed to %d", cfg.Seed)
	}
}
