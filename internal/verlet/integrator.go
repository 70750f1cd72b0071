package verlet

import "math/rand"

// gust decides when breeze fires. After every gust the next one is
// scheduled a random 100 to 200 ticks later; the first fires on tick 0.
type gust struct {
	rng  *rand.Rand
	next uint64
}

func newGust(rng *rand.Rand) *gust {
	return &gust{rng: rng}
}

func (g *gust) fires(tick uint64) bool {
	if tick < g.next {
		return false
	}
	g.next = tick + uint64(100+g.rng.Intn(101))
	return true
}

// impulse is a uniform draw in [-strength, strength].
func (g *gust) impulse(strength float64) float64 {
	return g.rng.Float64()*2*strength - strength
}

// Integrator advances free points by their implicit velocity, gravity and breeze.
type Integrator struct {
	cfg  *Config
	gust *gust
}

func NewIntegrator(cfg *Config, rng *rand.Rand) *Integrator {
	return &Integrator{cfg: cfg, gust: newGust(rng)}
}

// Step integrates every non-fixed point once. tick is the world tick counter
// used to time breeze gusts.
func (in *Integrator) Step(points *PointStore, tick uint64) {
	cfg := in.cfg
	dims := cfg.axes()
	gusting := cfg.Breeze > 0 && in.gust.fires(tick)

	points.Each(func(p *Point) {
		if p.Fixed {
			return
		}
		var v Vec3
		for a := 0; a < dims; a++ {
			v[a] = (p.Position[a] - p.Previous[a]) * cfg.Friction
			p.Previous[a] = p.Position[a]
		}
		if cfg.onFloor(p) {
			for _, a := range cfg.horizontal() {
				v[a] *= cfg.SkidLoss
			}
		}
		for a := 0; a < dims; a++ {
			p.Position[a] += v[a]
		}
		p.Position[AxisY] += cfg.down() * cfg.Gravity * p.Mass
		if gusting {
			p.Position[AxisX] += in.gust.impulse(cfg.Breeze)
		}
	})
}
