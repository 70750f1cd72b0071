package gui

import (
	"math"
	"strconv"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/vxsim/internal/verlet"
)

// space converts between engine coordinates and the GL scene. Screen space
// worlds have Y growing downward, so Y is negated on the way in and out.
// Two dimensional worlds live in the Z=0 plane.
type space struct {
	dims   int
	orient verlet.Orientation
}

func (s space) toGL(p verlet.Vec3) rl.Vector3 {
	y := p[1]
	if s.orient == verlet.ScreenSpace {
		y = -y
	}
	z := p[2]
	if s.dims == 2 {
		z = 0
	}
	return rl.NewVector3(float32(p[0]), float32(y), float32(z))
}

func (s space) fromGL(v rl.Vector3) verlet.Vec3 {
	y := float64(v.Y)
	if s.orient == verlet.ScreenSpace {
		y = -y
	}
	z := float64(v.Z)
	if s.dims == 2 {
		z = 0
	}
	return verlet.Vec3{float64(v.X), y, z}
}

// planeHit intersects a ray with the plane Z=z.
func planeHit(ray rl.Ray, z float32) (rl.Vector3, bool) {
	if ray.Direction.Z == 0 {
		return rl.Vector3{}, false
	}
	t := (z - ray.Position.Z) / ray.Direction.Z
	if t <= 0 {
		return rl.Vector3{}, false
	}
	return rl.Vector3Add(ray.Position, rl.Vector3Scale(ray.Direction, t)), true
}

// glTarget draws frames inside BeginMode3D.
type glTarget struct {
	space space
}

func (g *glTarget) Begin(f *verlet.Frame) {
	g.space = space{dims: f.Dimensions, orient: f.Orientation}
}

func (g *glTarget) Skin(outline []verlet.Vec3, style verlet.Style) {
	col := styleColor(style.Outline, ColAccent)
	for i := range outline {
		a := g.space.toGL(outline[i])
		b := g.space.toGL(outline[(i+1)%len(outline)])
		rl.DrawLine3D(a, b, col)
	}
}

func (g *glTarget) Span(a, b verlet.Vec3) {
	rl.DrawLine3D(g.space.toGL(a), g.space.toGL(b), ColText)
}

func (g *glTarget) Point(p verlet.PointState) {
	r := float32(math.Max(p.Radius, 0.5))
	col := styleColor(p.Color, ColSelect)
	if p.Fixed {
		col = ColFixed
	}
	if p.Materiality == verlet.Immaterial {
		col = ColTextDim
	}
	rl.DrawSphere(g.space.toGL(p.Position), r, col)
}

func (g *glTarget) End() error { return nil }

var namedColors = map[string]rl.Color{
	"black": rl.Black,
	"white": rl.White,
	"blue":  rl.Blue,
	"red":   rl.Red,
	"green": rl.Green,
	"gray":  rl.Gray,
}

// styleColor reads "#rrggbb" or a few colour names, falling back to def.
// Black outlines are invisible on the dark background so they map to def.
func styleColor(s string, def rl.Color) rl.Color {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "black" || s == "#000000" {
		return def
	}
	if c, ok := namedColors[s]; ok {
		return c
	}
	if len(s) == 7 && s[0] == '#' {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err == nil {
			return rl.NewColor(uint8(v>>16), uint8(v>>8), uint8(v), 255)
		}
	}
	return def
}
