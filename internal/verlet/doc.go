// Package verlet implements a constraint-based particle engine using Verlet
// position-based dynamics.
//
// The engine keeps three stores and advances them one tick at a time:
//
//   - [Point]: a particle whose velocity is implicit in Position - Previous
//   - [Span]: a distance constraint between two points with a fixed rest length
//   - [Skin]: an ordered outline of points, carried for renderers only
//
// A tick integrates every free point (friction, skid loss, gravity, breeze),
// then relaxes spans for a number of passes derived from the rigidity setting,
// re-applying boundaries after every pass.
//
// # Example
//
//	cfg := verlet.DefaultConfig(2)
//	cfg.Ranges[verlet.AxisY].Max = verlet.Bound(100)
//	e, _ := verlet.New(cfg)
//	a, _ := e.AddPoint(verlet.Vec3{0, 0, 0}, verlet.Material)
//	b, _ := e.AddPoint(verlet.Vec3{10, 0, 0}, verlet.Material)
//	e.AddSpanPoints(a, b)
//	for i := 0; i < 60; i++ {
//	    e.Tick()
//	}
//	frame := e.Snapshot()
//
// # Thread Safety
//
// Engine methods are serialized by an internal tick guard. Pointers returned
// by the stores may be mutated directly between ticks from the goroutine that
// drives the engine; other goroutines should go through [Engine.Do].
package verlet
