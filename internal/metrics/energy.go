package metrics

import (
	"github.com/san-kum/vxsim/internal/verlet"
)

// Kinetic is the total kinetic energy of a frame, using each point's
// implicit per-tick velocity.
func Kinetic(f *verlet.Frame) float64 {
	total := 0.0
	for _, p := range f.Points {
		v := p.Position.Sub(p.Previous)
		total += 0.5 * p.Mass * v.Dot(v)
	}
	return total
}

type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(f *verlet.Frame) {
	e.totalEnergy += Kinetic(f)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDecay is how far the kinetic energy has fallen from its peak:
// 0 while the world is at its most energetic, 1 once it is at rest.
type EnergyDecay struct {
	name    string
	peak    float64
	current float64
}

func NewEnergyDecay() *EnergyDecay {
	return &EnergyDecay{name: "energy_decay"}
}

func (e *EnergyDecay) Name() string { return e.name }

func (e *EnergyDecay) Observe(f *verlet.Frame) {
	e.current = Kinetic(f)
	if e.current > e.peak {
		e.peak = e.current
	}
}

func (e *EnergyDecay) Value() float64 {
	if e.peak == 0 {
		return 0
	}
	return 1 - e.current/e.peak
}

func (e *EnergyDecay) Reset() {
	e.peak = 0
	e.current = 0
}
