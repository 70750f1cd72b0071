// Package render walks a frame and issues drawing calls to a Target. The
// terminal canvas, the SVG writer and the test recorder are all targets.
package render

import (
	"log/slog"
	"math"

	"github.com/san-kum/vxsim/internal/verlet"
)

// Target receives the parts of a frame in world coordinates. Draw calls
// Begin once, then skins, spans and points in that order, then End.
type Target interface {
	Begin(f *verlet.Frame)
	Skin(outline []verlet.Vec3, style verlet.Style)
	Span(a, b verlet.Vec3)
	Point(p verlet.PointState)
	End() error
}

// View selects which parts of a frame are drawn.
type View struct {
	Points bool
	Spans  bool
	Skins  bool
	// Hidden also draws scaffolding spans and immaterial points.
	Hidden bool
}

func DefaultView() View {
	return View{Points: true, Spans: true, Skins: true}
}

// Draw renders f onto t. Stale spans and skins are never drawn.
func Draw(t Target, f *verlet.Frame, v View) error {
	t.Begin(f)
	if v.Skins {
		for _, sk := range f.Skins {
			if sk.Stale {
				continue
			}
			t.Skin(sk.Outline, sk.Style)
		}
	}
	if v.Spans {
		for _, sp := range f.Spans {
			if sp.Stale || (sp.Hidden && !v.Hidden) {
				continue
			}
			t.Span(sp.A, sp.B)
		}
	}
	if v.Points {
		for _, p := range f.Points {
			if p.Materiality == verlet.Immaterial && !v.Hidden {
				continue
			}
			t.Point(p)
		}
	}
	return t.End()
}

// DrawLogged is Draw for render loops that have nowhere to return an error.
// A failed frame is logged at debug level and the loop carries on.
func DrawLogged(t Target, f *verlet.Frame, v View, log *slog.Logger) {
	if err := Draw(t, f, v); err != nil && log != nil {
		log.Debug("draw failed", "tick", f.Tick, "err", err)
	}
}

// Bounds is the box enclosing every point of f including its radius. An
// empty frame yields a zero box, and Z stays zero in two dimensions.
func Bounds(f *verlet.Frame) (min, max verlet.Vec3) {
	if len(f.Points) == 0 {
		return
	}
	axes := 3
	if f.Dimensions == 2 {
		axes = 2
	}
	for i := 0; i < axes; i++ {
		min[i] = math.Inf(1)
		max[i] = math.Inf(-1)
	}
	for _, p := range f.Points {
		for i := 0; i < axes; i++ {
			min[i] = math.Min(min[i], p.Position[i]-p.Radius)
			max[i] = math.Max(max[i], p.Position[i]+p.Radius)
		}
	}
	return min, max
}

// WorldBounds is the box of the configured ranges, falling back to the
// frame's own extent on unbounded sides.
func WorldBounds(cfg verlet.Config, f *verlet.Frame) (min, max verlet.Vec3) {
	min, max = Bounds(f)
	for i, r := range cfg.Ranges {
		if r.Min != nil {
			min[i] = *r.Min
		}
		if r.Max != nil {
			max[i] = *r.Max
		}
	}
	return min, max
}

// Viewport maps the X/Y plane of a world box onto a width by height pixel
// area, keeping the aspect ratio. WorldSpace frames are flipped so that Y
// points up on screen.
type Viewport struct {
	Min, Max      verlet.Vec3
	Width, Height float64
	FlipY         bool

	scale, offX, offY float64
}

func NewViewport(min, max verlet.Vec3, width, height float64, flipY bool) Viewport {
	v := Viewport{Min: min, Max: max, Width: width, Height: height, FlipY: flipY}
	w := max[0] - min[0]
	h := max[1] - min[1]
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	v.scale = math.Min(width/w, height/h)
	v.offX = (width - w*v.scale) / 2
	v.offY = (height - h*v.scale) / 2
	return v
}

// Fit builds a viewport for f using its orientation.
func Fit(f *verlet.Frame, min, max verlet.Vec3, width, height float64) Viewport {
	return NewViewport(min, max, width, height, f.Orientation == verlet.WorldSpace)
}

// Map converts a world position to pixel coordinates.
func (v Viewport) Map(p verlet.Vec3) (x, y float64) {
	x = v.offX + (p[0]-v.Min[0])*v.scale
	if v.FlipY {
		y = v.offY + (v.Max[1]-p[1])*v.scale
	} else {
		y = v.offY + (p[1]-v.Min[1])*v.scale
	}
	return x, y
}

// Scale converts a world length to pixels.
func (v Viewport) Scale(d float64) float64 {
	return d * v.scale
}
