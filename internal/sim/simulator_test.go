package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/vxsim/internal/verlet"
)

type dropBehavior struct {
	steps int
}

func (d *dropBehavior) Step(e *verlet.Engine) error {
	d.steps++
	return nil
}

func newDrop(t *testing.T) *verlet.Engine {
	t.Helper()
	cfg := verlet.DefaultConfig(2)
	cfg.Gravity = 1
	cfg.Friction = 1
	cfg.Ranges[verlet.AxisY] = verlet.Between(0, 100)
	e, err := verlet.New(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if _, err := e.AddPoint(verlet.Vec3{50, 0, 0}, verlet.Material); err != nil {
		t.Fatalf("add point: %v", err)
	}
	return e
}

func TestSimulatorRun(t *testing.T) {
	b := &dropBehavior{}
	sim := New(newDrop(t), b)

	result, err := sim.Run(context.Background(), Config{Ticks: 25, Every: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// frame 0, ticks 10 and 20, and the final tick
	if len(result.Frames) != 4 {
		t.Errorf("expected 4 frames, got %d", len(result.Frames))
	}
	if result.TicksTaken != 25 {
		t.Errorf("expected 25 ticks, got %d", result.TicksTaken)
	}
	if b.steps != 25 {
		t.Errorf("behavior stepped %d times, want 25", b.steps)
	}
	ticks := []uint64{0, 10, 20, 25}
	for i, f := range result.Frames {
		if f.Tick != ticks[i] {
			t.Errorf("frame %d tick = %d, want %d", i, f.Tick, ticks[i])
		}
	}
	if y := result.Final().Points[0].Position[1]; y <= 0 {
		t.Errorf("point did not fall: y = %v", y)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(newDrop(t), nil)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero ticks", Config{Ticks: 0, Every: 1}},
		{"negative ticks", Config{Ticks: -1, Every: 1}},
		{"zero every", Config{Ticks: 10, Every: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sim.Run(context.Background(), tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(f *verlet.Frame) {
	t.count++
	t.sum += float64(len(f.Points))
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	sim := New(newDrop(t), nil)

	metric := &testMetric{}
	sim.AddMetric(metric)

	result, err := sim.Run(context.Background(), Config{Ticks: 10, Every: 5})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if v, ok := result.Metrics["test"]; !ok || v != 1 {
		t.Errorf("metric = %v, %v; want 1", v, ok)
	}
	if metric.count != 11 {
		t.Errorf("expected 11 observations, got %d", metric.count)
	}
}

type countObserver struct{ ticks []uint64 }

func (c *countObserver) OnFrame(f *verlet.Frame) { c.ticks = append(c.ticks, f.Tick) }

func TestSimulatorObservers(t *testing.T) {
	sim := New(newDrop(t), nil)
	obs := &countObserver{}
	sim.AddObserver(obs)

	if _, err := sim.Run(context.Background(), Config{Ticks: 6, Every: 3}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(obs.ticks) != 3 || obs.ticks[2] != 6 {
		t.Errorf("observed ticks %v, want [0 3 6]", obs.ticks)
	}
}

func TestSimulatorCancelled(t *testing.T) {
	sim := New(newDrop(t), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sim.Run(ctx, Config{Ticks: 100, Every: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.TicksTaken != 0 {
		t.Errorf("expected no ticks, got %d", result.TicksTaken)
	}
}

func TestSimulatorStaleSpans(t *testing.T) {
	e := newDrop(t)
	a := e.Points()[0]
	b, err := e.AddPoint(verlet.Vec3{60, 0, 0}, verlet.Material)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddSpanPoints(a, b); err != nil {
		t.Fatal(err)
	}
	if err := e.RemovePoint(b.ID); err != nil {
		t.Fatal(err)
	}

	result, err := New(e, nil).Run(context.Background(), Config{Ticks: 5, Every: 5})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.StaleReports != 5 {
		t.Errorf("expected 5 stale reports, got %d", result.StaleReports)
	}
	if len(result.Errors) != 0 || result.TicksTaken != 5 {
		t.Errorf("stale spans must not stop the run: %v", result.Errors)
	}
}

func TestSimulatorStaleSkins(t *testing.T) {
	e := newDrop(t)
	a := e.Points()[0]
	b, err := e.AddPoint(verlet.Vec3{60, 0, 0}, verlet.Material)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddSkinPoints([]*verlet.Point{a, b}, verlet.DefaultStyle()); err != nil {
		t.Fatal(err)
	}
	if err := e.RemovePoint(b.ID); err != nil {
		t.Fatal(err)
	}

	result, err := New(e, nil).Run(context.Background(), Config{Ticks: 3, Every: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.StaleReports != 3 {
		t.Errorf("expected 3 stale reports, got %d", result.StaleReports)
	}
	if len(result.Errors) != 0 || result.TicksTaken != 3 {
		t.Errorf("stale skins must not stop the run: %v", result.Errors)
	}
	last := result.Frames[len(result.Frames)-1]
	if len(last.Skins) != 1 || !last.Skins[0].Stale {
		t.Errorf("recorded frame should flag the skin stale: %+v", last.Skins)
	}
}

type blowUp struct{}

func (blowUp) Step(e *verlet.Engine) error {
	p := e.Points()[0]
	return e.Do(func() error {
		p.Position[0] = math.Inf(1)
		return nil
	})
}

func TestSimulatorStopsOnNonFinite(t *testing.T) {
	result, err := New(newDrop(t), blowUp{}).Run(context.Background(), Config{Ticks: 10, Every: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if !errors.Is(result.Errors[0], verlet.ErrNonFinite) {
		t.Errorf("expected ErrNonFinite, got %v", result.Errors[0])
	}
	var se SimError
	if !errors.As(result.Errors[0], &se) || se.Tick != 1 {
		t.Errorf("expected SimError at tick 1, got %#v", result.Errors[0])
	}
	if result.TicksTaken != 0 {
		t.Errorf("expected 0 completed ticks, got %d", result.TicksTaken)
	}
}

func TestSimulatorRunWithCallback(t *testing.T) {
	sim := New(newDrop(t), nil)
	seen := 0
	err := sim.RunWithCallback(context.Background(), Config{Ticks: 50, Every: 1}, func(f *verlet.Frame) bool {
		seen++
		return f.Tick < 7
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if seen != 7 {
		t.Errorf("callback saw %d frames, want 7", seen)
	}
}
