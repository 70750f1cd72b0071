package metrics

import (
	"github.com/san-kum/vxsim/internal/verlet"
)

// MaxSpeed is the largest per-tick displacement among the frame's points.
func MaxSpeed(f *verlet.Frame) float64 {
	top := 0.0
	for _, p := range f.Points {
		if s := p.Position.Sub(p.Previous).Len(); s > top {
			top = s
		}
	}
	return top
}

// Stability is the fraction of observed frames in which no point moved
// faster than threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(f *verlet.Frame) {
	s.samples++
	if MaxSpeed(f) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// PeakSpeed records the fastest point seen over the run.
type PeakSpeed struct {
	peak float64
}

func NewPeakSpeed() *PeakSpeed { return &PeakSpeed{} }

func (p *PeakSpeed) Name() string { return "peak_speed" }

func (p *PeakSpeed) Observe(f *verlet.Frame) {
	if s := MaxSpeed(f); s > p.peak {
		p.peak = s
	}
}

func (p *PeakSpeed) Value() float64 { return p.peak }
func (p *PeakSpeed) Reset()         { p.peak = 0 }
