package verlet

import (
	"math"
	"testing"
)

func TestIntegrateGravityScalesWithMass(t *testing.T) {
	e := newTestEngine(t, 2, func(c *Config) { c.Gravity = 0.5 })
	light := mustPoint(t, e, 0, 0)
	heavy := mustPoint(t, e, 100, 0)
	if err := e.SetMass(heavy.ID, 2); err != nil {
		t.Fatalf("set mass: %v", err)
	}

	e.Integrate()
	e.Integrate()

	dl := light.Position[1]
	dh := heavy.Position[1]
	if dl <= 0 {
		t.Fatalf("screen space gravity should increase y, got %f", dl)
	}
	if math.Abs(dh-2*dl) > 1e-12 {
		t.Errorf("mass 2 should fall twice as far: light %f heavy %f", dl, dh)
	}
}

func TestIntegrateWorldSpaceGravity(t *testing.T) {
	e := newTestEngine(t, 3, func(c *Config) { c.Gravity = 0.25 })
	p, err := e.AddPoint(Vec3{1, 2, 3}, Material)
	if err != nil {
		t.Fatal(err)
	}

	e.Integrate()

	if p.Position != (Vec3{1, 1.75, 3}) {
		t.Errorf("expected y to drop by 0.25 in world space, got %v", p.Position)
	}
}

func TestIntegrateFriction(t *testing.T) {
	e := newTestEngine(t, 2, func(c *Config) { c.Friction = 0.5 })
	p := mustPoint(t, e, 0, 0)
	if err := e.Impulse(p.ID, Vec3{2, -4, 0}); err != nil {
		t.Fatal(err)
	}

	e.Integrate()

	if p.Position != (Vec3{1, -2, 0}) {
		t.Errorf("expected half velocity applied, got %v", p.Position)
	}
	if p.Previous != (Vec3{0, 0, 0}) {
		t.Errorf("previous should be the old position, got %v", p.Previous)
	}
}

func TestIntegrateSkipsFixed(t *testing.T) {
	e := newTestEngine(t, 2, func(c *Config) { c.Gravity = 1 })
	p := mustPoint(t, e, 5, 5)
	p.Previous = Vec3{0, 0, 0}
	p.Fixed = true

	for i := 0; i < 10; i++ {
		e.Integrate()
	}

	if p.Position != (Vec3{5, 5, 0}) || p.Previous != (Vec3{0, 0, 0}) {
		t.Errorf("fixed point changed: pos %v prev %v", p.Position, p.Previous)
	}
}

func TestIntegrateSkidLossOnFloor(t *testing.T) {
	e := newTestEngine(t, 2, func(c *Config) {
		c.SkidLoss = 0.5
		c.Ranges[AxisY].Max = Bound(100)
	})
	resting := mustPoint(t, e, 0, 100)
	flying := mustPoint(t, e, 0, 50)
	for _, p := range []*Point{resting, flying} {
		if err := e.Impulse(p.ID, Vec3{1, 0, 0}); err != nil {
			t.Fatal(err)
		}
	}

	e.Integrate()

	if resting.Position[0] != 0.5 {
		t.Errorf("resting point should skid at half speed, x=%f", resting.Position[0])
	}
	if flying.Position[0] != 1 {
		t.Errorf("airborne point should keep its speed, x=%f", flying.Position[0])
	}
}

func TestIntegrateSkidLossWorldSpaceFloor(t *testing.T) {
	e := newTestEngine(t, 3, func(c *Config) {
		c.SkidLoss = 0.5
		c.Ranges[AxisY].Min = Bound(-10)
	})
	p, _ := e.AddPoint(Vec3{0, -10, 0}, Material)
	if err := e.Impulse(p.ID, Vec3{2, 0, 4}); err != nil {
		t.Fatal(err)
	}

	e.Integrate()

	if p.Position[0] != 1 || p.Position[2] != 2 {
		t.Errorf("x and z should both skid in 3D, got %v", p.Position)
	}
}

func TestIntegrate2DLeavesZ(t *testing.T) {
	e := newTestEngine(t, 2, func(c *Config) { c.Gravity = 1 })
	p, _ := e.AddPoint(Vec3{0, 0, 7}, Material)
	p.Previous[2] = 3

	e.Integrate()

	if p.Position[2] != 7 || p.Previous[2] != 3 {
		t.Errorf("2D integration must not touch z: pos %v prev %v", p.Position, p.Previous)
	}
}

func TestBreezeBounded(t *testing.T) {
	e := newTestEngine(t, 2, func(c *Config) {
		c.Breeze = 2
		c.Friction = 0
		c.Seed = 7
	})
	p := mustPoint(t, e, 0, 0)

	gusts := 0
	for i := 0; i < 1000; i++ {
		before := p.Position[0]
		if err := e.Tick(); err != nil {
			t.Fatal(err)
		}
		dx := p.Position[0] - before
		if math.Abs(dx) > 2 {
			t.Fatalf("tick %d: gust %f exceeds breeze", i, dx)
		}
		if dx != 0 {
			gusts++
		}
	}
	if gusts == 0 {
		t.Error("expected at least one gust in 1000 ticks")
	}
	if gusts > 10 {
		t.Errorf("gusts should be at least 100 ticks apart, got %d", gusts)
	}
}

func TestNoBreezeIsDeterministic(t *testing.T) {
	run := func(seed int64) Vec3 {
		e := newTestEngine(t, 2, func(c *Config) {
			c.Gravity = 0.3
			c.Seed = seed
			c.Ranges[AxisY] = Between(0, 50)
		})
		p := mustPoint(t, e, 10, 0)
		if err := e.Impulse(p.ID, Vec3{0.7, 0, 0}); err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 300; i++ {
			if err := e.Tick(); err != nil {
				t.Fatal(err)
			}
		}
		return p.Position
	}

	if a, b := run(1), run(99); a != b {
		t.Errorf("seed must not matter without breeze: %v vs %v", a, b)
	}
}
