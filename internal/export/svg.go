package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/vxsim/internal/render"
	"github.com/san-kum/vxsim/internal/verlet"
)

const (
	svgBackground = "#0a0a0a"
	svgSpanColor  = "#8ab4f8"
	svgPointColor = "#00ff00"
	svgFixedColor = "#ff5555"
)

// SVG is a render target that writes an SVG document.
type SVG struct {
	Width, Height float64
	// Min and Max are the world box to fit. When both are zero the frame's
	// own bounds are used.
	Min, Max verlet.Vec3

	vp render.Viewport
	sb strings.Builder
}

func NewSVG(width, height float64) *SVG {
	return &SVG{Width: width, Height: height}
}

func (s *SVG) Begin(f *verlet.Frame) {
	min, max := s.Min, s.Max
	if min == max {
		min, max = render.Bounds(f)
	}
	s.vp = render.Fit(f, min, max, s.Width, s.Height)
	s.sb.Reset()
	s.sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, s.Width, s.Height, s.Width, s.Height, svgBackground))
}

func (s *SVG) Skin(outline []verlet.Vec3, style verlet.Style) {
	if len(outline) < 2 {
		return
	}
	s.sb.WriteString(`<polygon points="`)
	for i, p := range outline {
		x, y := s.vp.Map(p)
		if i > 0 {
			s.sb.WriteByte(' ')
		}
		s.sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
	}
	s.sb.WriteString(fmt.Sprintf(`" fill="%s" stroke="%s" stroke-width="%.1f" stroke-linejoin="round"/>
`, style.Fill, style.Outline, s.vp.Scale(style.Thickness)))
}

func (s *SVG) Span(a, b verlet.Vec3) {
	x1, y1 := s.vp.Map(a)
	x2, y2 := s.vp.Map(b)
	s.sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>
`, x1, y1, x2, y2, svgSpanColor))
}

func (s *SVG) Point(p verlet.PointState) {
	x, y := s.vp.Map(p.Position)
	r := s.vp.Scale(p.Radius)
	if r < 1.5 {
		r = 1.5
	}
	color := svgPointColor
	if p.Color != "" {
		color = p.Color
	}
	if p.Fixed {
		color = svgFixedColor
	}
	s.sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s"/>
`, x, y, r, color))
}

func (s *SVG) End() error {
	s.sb.WriteString("</svg>")
	return nil
}

// String returns the document produced by the last Draw.
func (s *SVG) String() string {
	return s.sb.String()
}

// FrameToSVG renders one frame fitted to min..max (or to the frame's own
// bounds when min equals max).
func FrameToSVG(f *verlet.Frame, min, max verlet.Vec3, width, height int, view render.View) (string, error) {
	s := NewSVG(float64(width), float64(height))
	s.Min, s.Max = min, max
	if err := render.Draw(s, f, view); err != nil {
		return "", err
	}
	return s.String(), nil
}

// TrajectoryToSVG creates an SVG from trajectory data
func TrajectoryToSVG(points []struct{ X, Y float64 }, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, svgBackground, strokeColor))

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// Track pairs recorded ticks with one coordinate for TrajectoryToSVG.
func Track(ticks []uint64, values []float64) []struct{ X, Y float64 } {
	n := len(ticks)
	if len(values) < n {
		n = len(values)
	}
	out := make([]struct{ X, Y float64 }, n)
	for i := 0; i < n; i++ {
		out[i].X = float64(ticks[i])
		out[i].Y = values[i]
	}
	return out
}
