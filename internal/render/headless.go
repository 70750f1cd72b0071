package render

import "github.com/san-kum/vxsim/internal/verlet"

// Headless counts drawing calls without producing output. It stands in for
// a display when benchmarking or testing drivers.
type Headless struct {
	Frames int
	Skins  int
	Spans  int
	Points int
	Tick   uint64
}

func (h *Headless) Begin(f *verlet.Frame) {
	h.Frames++
	h.Tick = f.Tick
}

func (h *Headless) Skin([]verlet.Vec3, verlet.Style) { h.Skins++ }
func (h *Headless) Span(verlet.Vec3, verlet.Vec3)    { h.Spans++ }
func (h *Headless) Point(verlet.PointState)          { h.Points++ }
func (h *Headless) End() error                       { return nil }

func (h *Headless) Reset() { *h = Headless{} }
