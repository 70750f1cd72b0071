package verlet

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a coordinate vector. In two dimensions the Z component is carried
// but never read or written by the physics.
type Vec3 = mgl64.Vec3

// Axis indexes a Vec3 component.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return "?"
}

// Materiality decides whether a point collides with boundaries and other points.
type Materiality uint8

const (
	Material Materiality = iota
	Immaterial
)

func (m Materiality) String() string {
	if m == Immaterial {
		return "immaterial"
	}
	return "material"
}

// Point is a particle. Its velocity is Position - Previous.
type Point struct {
	ID          int
	Position    Vec3
	Previous    Vec3
	Mass        float64
	Radius      float64
	Materiality Materiality
	Fixed       bool
	// Color is render metadata, a name or #rrggbb. Empty means the
	// renderer's default.
	Color string

	removed bool
}

// Width is the nominal diameter of the point.
func (p *Point) Width() float64 { return p.Radius * 2 }

// Velocity returns the implicit per-tick velocity.
func (p *Point) Velocity() Vec3 { return p.Position.Sub(p.Previous) }

// Removed reports whether the point has been removed from its engine.
func (p *Point) Removed() bool { return p.removed }

// PointSpec describes a point to create. A nil Previous starts the point at rest.
type PointSpec struct {
	Position    Vec3
	Previous    *Vec3
	Materiality Materiality
	Mass        float64
	Radius      float64
	Fixed       bool
	Color       string
}

// Span is a distance constraint between two points.
type Span struct {
	ID         int
	Point1     *Point
	Point2     *Point
	RestLength float64
	Strength   float64
	Hidden     bool
}

// Stale reports whether either endpoint has been removed.
func (s *Span) Stale() bool {
	return s.Point1.removed || s.Point2.removed
}

// stalePoint returns the id of the first removed endpoint.
func (s *Span) stalePoint() int {
	if s.Point1.removed {
		return s.Point1.ID
	}
	return s.Point2.ID
}

// Style is skin render metadata.
type Style struct {
	Fill      string  `yaml:"fill" json:"fill"`
	Outline   string  `yaml:"outline" json:"outline"`
	Thickness float64 `yaml:"thickness" json:"thickness"`
}

// DefaultStyle is a blue fill with a thin black outline.
func DefaultStyle() Style {
	return Style{Fill: "blue", Outline: "black", Thickness: 1}
}

// Skin is an ordered polygon outline over points. It has no effect on physics.
type Skin struct {
	ID     int
	Points []*Point
	Style  Style
}

// Stale reports whether any outline point has been removed.
func (s *Skin) Stale() bool {
	_, ok := s.stalePoint()
	return ok
}

func (s *Skin) stalePoint() (int, bool) {
	for _, p := range s.Points {
		if p.removed {
			return p.ID, true
		}
	}
	return 0, false
}

func finite(v Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func finiteScalar(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
