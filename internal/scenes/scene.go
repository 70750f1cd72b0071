package scenes

import (
	"math/rand"

	"github.com/san-kum/vxsim/internal/verlet"
)

// Scene builds a world into an engine and drives any behaviour the world
// needs between ticks.
type Scene interface {
	Name() string
	Description() string
	// World is the engine configuration the scene is designed for.
	World() verlet.Config
	// Build adds the scene's points, spans and skins. rng is the scene's
	// only source of randomness.
	Build(e *verlet.Engine, rng *rand.Rand) error
	// Step runs once before every tick.
	Step(e *verlet.Engine) error
}

// randInt returns a uniform integer in [min, max].
func randInt(rng *rand.Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + rng.Intn(max-min+1)
}

// randFloat returns a uniform float in [min, max).
func randFloat(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}

// box returns a config bounded on x and y by [0, w] and [0, h].
func box(w, h float64) verlet.Config {
	cfg := verlet.DefaultConfig(2)
	cfg.Ranges[verlet.AxisX] = verlet.Between(0, w)
	cfg.Ranges[verlet.AxisY] = verlet.Between(0, h)
	return cfg
}

// addPoints adds material points at the given coordinates and returns them
// in order.
func addPoints(e *verlet.Engine, coords [][2]float64, m verlet.Materiality) ([]*verlet.Point, error) {
	out := make([]*verlet.Point, 0, len(coords))
	for _, c := range coords {
		p, err := e.AddPoint(verlet.Vec3{c[0], c[1], 0}, m)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// link is a span between two point ids, optionally hidden.
type link struct {
	a, b   int
	hidden bool
}

func addLinks(e *verlet.Engine, links []link) error {
	for _, l := range links {
		s, err := e.AddSpan(l.a, l.b)
		if err != nil {
			return err
		}
		s.Hidden = l.hidden
	}
	return nil
}

// nudge shifts the previous position of p by d, giving it a velocity of -d.
func nudge(p *verlet.Point, d verlet.Vec3) {
	p.Previous = p.Previous.Add(d)
}
