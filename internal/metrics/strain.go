package metrics

import (
	"math"

	"github.com/san-kum/vxsim/internal/verlet"
)

// Strain is the mean relative deviation of span lengths from their rest
// length, |d - rest| / rest, averaged over spans and frames. Stale spans and
// spans with zero rest length are ignored.
type Strain struct {
	name    string
	sum     float64
	samples int
}

func NewStrain() *Strain {
	return &Strain{name: "strain"}
}

func (s *Strain) Name() string {
	return s.name
}

func (s *Strain) Observe(f *verlet.Frame) {
	dims := f.Dimensions
	for _, sp := range f.Spans {
		if sp.Stale || sp.RestLength == 0 {
			continue
		}
		d := sp.B.Sub(sp.A)
		if dims == 2 {
			d[2] = 0
		}
		s.sum += math.Abs(d.Len()-sp.RestLength) / sp.RestLength
		s.samples++
	}
}

func (s *Strain) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

func (s *Strain) Reset() {
	s.sum = 0
	s.samples = 0
}
