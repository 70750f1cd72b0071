package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/vxsim/internal/verlet"
)

// Camera projects a 3D world onto the canvas. The world is centred on
// Center and scaled so that Extent world units fill the view at Zoom 1.
type Camera struct {
	Center           verlet.Vec3
	Extent           float64
	Distance, Near   float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera() *Camera {
	return &Camera{Extent: 1, Distance: 4, Near: 0.1, RotX: 0.35, RotY: -0.6, Zoom: 1}
}

// Fit centres the camera on the box min..max.
func (c *Camera) Fit(min, max verlet.Vec3) {
	c.Center = min.Add(max).Mul(0.5)
	c.Extent = max.Sub(min).Len() / 2
	if c.Extent == 0 || math.IsInf(c.Extent, 0) || math.IsNaN(c.Extent) {
		c.Extent = 1
	}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// Rotation applies X, then Y, then Z.
func (c *Camera) Rotation() mgl64.Mat3 {
	return mgl64.Rotate3DZ(c.RotZ).Mul3(mgl64.Rotate3DY(c.RotY)).Mul3(mgl64.Rotate3DX(c.RotX))
}

// Project converts a world position to canvas dots. It returns x, y, the
// depth along the view axis, and whether the point lands on screen.
func (c *Camera) Project(p verlet.Vec3, sw, sh int) (int, int, float64, bool) {
	rot := c.Rotation().Mul3x1(p.Sub(c.Center)).Mul(c.Zoom / c.Extent)
	dist := c.Distance
	if rot[2] >= dist-c.Near {
		return 0, 0, 0, false
	}
	scale := dist / (dist - rot[2])
	minDim := math.Min(float64(sw), float64(sh))
	pScale := minDim / 2.5
	sx := int(rot[0]*scale*pScale) + sw/2
	sy := int(-rot[1]*scale*pScale) + sh/2
	return sx, sy, rot[2], sx >= 0 && sx < sw && sy >= 0 && sy < sh
}
