package scenes

import (
	"math/rand"

	"github.com/san-kum/vxsim/internal/verlet"
)

// Rope is a chain of links hanging from a pinned anchor with a heavier
// weight on the free end.
type Rope struct {
	Links  int
	Length float64
	Weight float64
	Swing  float64

	anchor *verlet.Point
	tail   *verlet.Point
}

func NewRope() *Rope {
	return &Rope{Links: 20, Length: 12, Weight: 5, Swing: 6}
}

func (r *Rope) Name() string        { return "rope" }
func (r *Rope) Description() string { return "a weighted rope swinging from a pinned anchor" }

func (r *Rope) World() verlet.Config {
	cfg := box(600, 600)
	cfg.Gravity = 0.3
	cfg.Rigidity = 10
	return cfg
}

func (r *Rope) Build(e *verlet.Engine, rng *rand.Rand) error {
	origin := verlet.Vec3{300, 60, 0}
	anchor, err := e.AddPointSpec(verlet.PointSpec{Position: origin, Mass: 1, Fixed: true})
	if err != nil {
		return err
	}
	r.anchor = anchor

	prev := anchor
	for i := 1; i <= r.Links; i++ {
		spec := verlet.PointSpec{
			Position: origin.Add(verlet.Vec3{float64(i) * r.Length, 0, 0}),
			Mass:     1,
			Radius:   2,
		}
		if i == r.Links {
			spec.Mass = r.Weight
			spec.Radius = 8
		}
		p, err := e.AddPointSpec(spec)
		if err != nil {
			return err
		}
		if _, err := e.AddSpanPoints(prev, p); err != nil {
			return err
		}
		prev = p
	}
	r.tail = prev
	nudge(r.tail, verlet.Vec3{0, randFloat(rng, -r.Swing, r.Swing), 0})
	return nil
}

func (r *Rope) Step(*verlet.Engine) error { return nil }

// Anchor is the pinned top of the rope.
func (r *Rope) Anchor() *verlet.Point { return r.anchor }

// Tail is the weighted free end.
func (r *Rope) Tail() *verlet.Point { return r.tail }
