package verlet

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func TestTickSettlesOnFloor(t *testing.T) {
	cfg := DefaultConfig(2)
	cfg.Gravity = 1
	cfg.Ranges[AxisY].Max = Bound(100)
	e, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	p, err := e.AddPointSpec(PointSpec{Position: Vec3{50, 0, 0}, Mass: 1, Radius: 5})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2000; i++ {
		if err := e.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if p.Position[1] > 95 {
			t.Fatalf("tick %d: point sank below the floor, y=%f", i, p.Position[1])
		}
	}
	if p.Position[1] != 95 {
		t.Errorf("expected point resting at y=95, got %f", p.Position[1])
	}
	if p.Position[0] != 50 {
		t.Errorf("point drifted sideways to x=%f", p.Position[0])
	}
}

func TestTickPendulumKeepsAnchor(t *testing.T) {
	e, err := New(DefaultConfig(2))
	if err != nil {
		t.Fatal(err)
	}
	anchor, _ := e.AddPoint(Vec3{0, 0, 0}, Material)
	bob, _ := e.AddPoint(Vec3{10, 0, 0}, Material)
	if err := e.Pin(anchor.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddSpanPoints(anchor, bob); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 300; i++ {
		if err := e.Tick(); err != nil {
			t.Fatal(err)
		}
	}

	if anchor.Position != (Vec3{}) || anchor.Previous != (Vec3{}) {
		t.Errorf("anchor moved to %v", anchor.Position)
	}
	if d := e.Distance(anchor, bob); math.Abs(d-10) > 0.1 {
		t.Errorf("pendulum length drifted to %f", d)
	}
	if bob.Position[1] <= 0 {
		t.Errorf("bob should swing below the anchor, y=%f", bob.Position[1])
	}
}

func TestTickCounterAndPhase(t *testing.T) {
	e := newTestEngine(t, 2, nil)
	if e.Phase() != Idle || e.Phase().String() != "idle" {
		t.Errorf("new engine should be idle, got %s", e.Phase())
	}
	for i := 0; i < 3; i++ {
		if err := e.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	if e.TickCount() != 3 {
		t.Errorf("expected 3 ticks, got %d", e.TickCount())
	}
	if e.Phase() != Idle {
		t.Errorf("expected idle between ticks, got %s", e.Phase())
	}
	if Relaxing.String() != "relaxing" || Integrating.String() != "integrating" {
		t.Error("unexpected phase names")
	}
}

func TestPhaseTransitions(t *testing.T) {
	e := newTestEngine(t, 2, nil)
	var seen []Phase
	e.onPhase = func(p Phase) { seen = append(seen, p) }

	tests := []struct {
		name string
		run  func()
		want []Phase
	}{
		{"tick", func() { _ = e.Tick() }, []Phase{Integrating, Relaxing, Idle}},
		{"integrate", e.Integrate, []Phase{Integrating, Idle}},
		{"refine", func() { _ = e.Refine() }, []Phase{Relaxing, Idle}},
	}
	for _, tt := range tests {
		seen = seen[:0]
		tt.run()
		if len(seen) != len(tt.want) {
			t.Errorf("%s: phases %v, want %v", tt.name, seen, tt.want)
			continue
		}
		for i := range seen {
			if seen[i] != tt.want[i] {
				t.Errorf("%s: phases %v, want %v", tt.name, seen, tt.want)
				break
			}
		}
	}
}

func TestTickReportsNonFinite(t *testing.T) {
	e := newTestEngine(t, 2, nil)
	good := mustPoint(t, e, 0, 0)
	bad := mustPoint(t, e, 1, 1)
	bad.Position[0] = math.NaN()

	err := e.Tick()
	if !errors.Is(err, ErrNonFinite) {
		t.Fatalf("expected ErrNonFinite, got %v", err)
	}
	var pe *PointError
	if !errors.As(err, &pe) || pe.ID != bad.ID {
		t.Errorf("expected PointError for point %d, got %v", bad.ID, err)
	}
	if e.TickCount() != 1 {
		t.Error("tick should complete despite non-finite coordinates")
	}
	if !finite(good.Position) {
		t.Error("healthy point was poisoned")
	}
}

func TestTeleportRejectsNonFinite(t *testing.T) {
	e := newTestEngine(t, 2, nil)
	p := mustPoint(t, e, 0, 0)
	if err := e.Teleport(p.ID, Vec3{math.Inf(1), 0, 0}); !errors.Is(err, ErrNonFinite) {
		t.Errorf("expected ErrNonFinite, got %v", err)
	}
	if err := e.Teleport(99, Vec3{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := e.SetMass(p.ID, 0); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration for zero mass, got %v", err)
	}
	if err := e.SetRadius(p.ID, -2); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration for negative radius, got %v", err)
	}
}

func TestDoSerializesWithTick(t *testing.T) {
	e := newTestEngine(t, 2, func(c *Config) { c.Gravity = 0.1 })
	p := mustPoint(t, e, 0, 0)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_ = e.Tick()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_ = e.Do(func() error {
				p.Previous = p.Position
				return nil
			})
		}
	}()
	wg.Wait()

	if e.TickCount() != 500 {
		t.Errorf("expected 500 ticks, got %d", e.TickCount())
	}
	if !finite(p.Position) {
		t.Errorf("position corrupted: %v", p.Position)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	e := newTestEngine(t, 2, nil)
	a := mustPoint(t, e, 0, 0)
	b := mustPoint(t, e, 3, 4)
	s, _ := e.AddSpanPoints(a, b)
	if _, err := e.AddSkinPoints([]*Point{a, b}, DefaultStyle()); err != nil {
		t.Fatal(err)
	}

	f := e.Snapshot()
	a.Position = Vec3{100, 100, 0}

	pa, ok := f.Point(a.ID)
	if !ok || pa.Position != (Vec3{}) {
		t.Errorf("snapshot should not follow engine state, got %v", pa.Position)
	}
	if len(f.Spans) != 1 || f.Spans[0].ID != s.ID || f.Spans[0].RestLength != 5 {
		t.Errorf("unexpected span states %+v", f.Spans)
	}
	if len(f.Skins) != 1 || f.Skins[0].Outline[1] != (Vec3{3, 4, 0}) {
		t.Errorf("unexpected skin states %+v", f.Skins)
	}
	if _, ok := f.Point(42); ok {
		t.Error("lookup of missing id should fail")
	}
}

func TestDistanceIgnoresZIn2D(t *testing.T) {
	e := newTestEngine(t, 2, nil)
	a, _ := e.AddPoint(Vec3{0, 0, 0}, Material)
	b, _ := e.AddPoint(Vec3{3, 4, 100}, Material)
	if d := e.Distance(a, b); d != 5 {
		t.Errorf("expected 5, got %f", d)
	}

	e3 := newTestEngine(t, 3, nil)
	c, _ := e3.AddPoint(Vec3{0, 0, 0}, Material)
	d, _ := e3.AddPoint(Vec3{2, 3, 6}, Material)
	if got := e3.Distance(c, d); got != 7 {
		t.Errorf("expected 7 in 3D, got %f", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"negative gravity", func(c *Config) { c.Gravity = -1 }, true},
		{"one dimension", func(c *Config) { c.Dimensions = 1 }, false},
		{"unknown orientation", func(c *Config) { c.Orientation = 9 }, false},
		{"negative rigidity", func(c *Config) { c.Rigidity = -1 }, false},
		{"nan friction", func(c *Config) { c.Friction = math.NaN() }, false},
		{"negative breeze", func(c *Config) { c.Breeze = -0.5 }, false},
		{"inverted range", func(c *Config) { c.Ranges[AxisX] = Between(10, 0) }, false},
		{"infinite bound", func(c *Config) { c.Ranges[AxisY].Max = Bound(math.Inf(1)) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(2)
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestSetConfigRejectsInvalid(t *testing.T) {
	e := newTestEngine(t, 2, nil)
	before := e.Config()

	if err := e.Configure(func(c *Config) { c.Rigidity = -3 }); err == nil {
		t.Fatal("expected error")
	}
	if e.Config().Rigidity != before.Rigidity {
		t.Error("rejected config must not be installed")
	}

	bound := 50.0
	cfg := e.Config()
	cfg.Ranges[AxisX].Max = &bound
	if err := e.SetConfig(cfg); err != nil {
		t.Fatal(err)
	}
	bound = 0
	if got := *e.Config().Ranges[AxisX].Max; got != 50 {
		t.Errorf("engine config should not alias caller bounds, got %f", got)
	}
}

func TestParseOrientation(t *testing.T) {
	for in, want := range map[string]Orientation{"": ScreenSpace, "screen": ScreenSpace, "world": WorldSpace} {
		got, err := ParseOrientation(in)
		if err != nil || got != want {
			t.Errorf("ParseOrientation(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseOrientation("sideways"); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestApplyRadialImpulse(t *testing.T) {
	e := newTestEngine(t, 2, nil)
	centre := mustPoint(t, e, 0, 0)
	right := mustPoint(t, e, 10, 0)
	up := mustPoint(t, e, 0, -4)
	pinned := mustPoint(t, e, 5, 5)
	pinned.Fixed = true

	if n := e.ApplyRadialImpulse(Vec3{}, 2); n != 2 {
		t.Errorf("expected 2 points pushed, got %d", n)
	}
	if centre.Velocity() != (Vec3{}) {
		t.Errorf("point at the origin should be skipped, got %v", centre.Velocity())
	}
	if right.Velocity() != (Vec3{2, 0, 0}) {
		t.Errorf("expected (2,0), got %v", right.Velocity())
	}
	if up.Velocity() != (Vec3{0, -2, 0}) {
		t.Errorf("expected (0,-2), got %v", up.Velocity())
	}
	if pinned.Velocity() != (Vec3{}) {
		t.Error("fixed point should not be pushed")
	}
}

func TestNearestPoint(t *testing.T) {
	e := newTestEngine(t, 2, nil)
	mustPoint(t, e, 0, 0)
	near := mustPoint(t, e, 10, 0)
	ghost, _ := e.AddPoint(Vec3{11, 0, 0}, Immaterial)

	if p, ok := e.NearestPoint(Vec3{11, 1, 0}, 5, false); !ok || p != ghost {
		t.Errorf("expected immaterial point, got %v", p)
	}
	if p, ok := e.NearestPoint(Vec3{11, 1, 0}, 5, true); !ok || p != near {
		t.Errorf("expected nearest material point, got %v", p)
	}
	if _, ok := e.NearestPoint(Vec3{50, 50, 0}, 5, false); ok {
		t.Error("expected no point within range")
	}
}

func TestSnapshotIntoReusesFrame(t *testing.T) {
	e := newTestEngine(t, 2, nil)
	a := mustPoint(t, e, 0, 0)
	b := mustPoint(t, e, 3, 4)
	if _, err := e.AddSpanPoints(a, b); err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddSkinPoints([]*Point{a, b}, DefaultStyle()); err != nil {
		t.Fatal(err)
	}

	var f Frame
	e.SnapshotInto(&f)
	if err := e.Teleport(b.ID, Vec3{6, 8, 0}); err != nil {
		t.Fatal(err)
	}
	e.SnapshotInto(&f)

	if len(f.Points) != 2 || len(f.Spans) != 1 || len(f.Skins) != 1 {
		t.Fatalf("unexpected frame sizes: %d %d %d", len(f.Points), len(f.Spans), len(f.Skins))
	}
	if got := f.Spans[0].B; got != (Vec3{6, 8, 0}) {
		t.Errorf("span end = %v, want moved position", got)
	}
	if got := f.Skins[0].Outline; len(got) != 2 || got[1] != (Vec3{6, 8, 0}) {
		t.Errorf("skin outline = %v", got)
	}
}
