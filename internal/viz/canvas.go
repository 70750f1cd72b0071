package viz

import (
	"math"
	"strings"

	"github.com/san-kum/vxsim/internal/render"
	"github.com/san-kum/vxsim/internal/verlet"
)

// Braille cells are 2x4 dots, numbered
//
//	1 4
//	2 5
//	3 6
//	7 8
//
// starting at U+2800.
const brailleBlank = 0x2800

var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille pixel grid of Width x Height cells, that is
// Width*2 by Height*4 dots. It implements render.Target: two dimensional
// frames are fitted to Min..Max (or to the frame's bounds when those are
// equal) and three dimensional frames go through Camera.
type Canvas struct {
	Width, Height int
	Grid          [][]rune

	Min, Max verlet.Vec3
	Camera   *Camera

	vp     render.Viewport
	threeD bool
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
	return c
}

// Dots is the canvas size in dots.
func (c *Canvas) Dots() (int, int) {
	return c.Width * 2, c.Height * 4
}

// Set lights the dot at (x, y). Dots off the canvas are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] &^= rune(pixelMap[y%4][x%2])
}

// Lit reports whether the dot at (x, y) is set.
func (c *Canvas) Lit(x, y int) bool {
	if x < 0 || y < 0 {
		return false
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return false
	}
	return c.Grid[row][col]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawCircle outlines a circle with the midpoint algorithm.
func (c *Canvas) DrawCircle(cx, cy, r int) {
	if r <= 0 {
		c.Set(cx, cy)
		return
	}
	x, y := r, 0
	d := 1 - r
	for x >= y {
		for _, p := range [8][2]int{
			{x, y}, {y, x}, {-y, x}, {-x, y},
			{-x, -y}, {-y, -x}, {y, -x}, {x, -y},
		} {
			c.Set(cx+p[0], cy+p[1])
		}
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func (c *Canvas) Begin(f *verlet.Frame) {
	c.Clear()
	c.threeD = f.Dimensions == 3 && c.Camera != nil
	if c.threeD {
		return
	}
	min, max := c.Min, c.Max
	if min == max {
		min, max = render.Bounds(f)
	}
	w, h := c.Dots()
	c.vp = render.Fit(f, min, max, float64(w), float64(h))
}

func (c *Canvas) project(p verlet.Vec3) (int, int, bool) {
	w, h := c.Dots()
	if c.threeD {
		x, y, _, ok := c.Camera.Project(p, w, h)
		return x, y, ok
	}
	x, y := c.vp.Map(p)
	return int(math.Round(x)), int(math.Round(y)), true
}

func (c *Canvas) line(a, b verlet.Vec3) {
	x0, y0, ok0 := c.project(a)
	x1, y1, ok1 := c.project(b)
	if ok0 || ok1 {
		c.DrawLine(x0, y0, x1, y1)
	}
}

// Skin outlines the polygon and closes it.
func (c *Canvas) Skin(outline []verlet.Vec3, _ verlet.Style) {
	for i := range outline {
		c.line(outline[i], outline[(i+1)%len(outline)])
	}
}

func (c *Canvas) Span(a, b verlet.Vec3) {
	c.line(a, b)
}

func (c *Canvas) Point(p verlet.PointState) {
	x, y, ok := c.project(p.Position)
	if !ok {
		return
	}
	r := 0
	if !c.threeD {
		r = int(math.Round(c.vp.Scale(p.Radius)))
	}
	c.DrawCircle(x, y, r)
	if p.Fixed {
		c.DrawLine(x-1, y-1, x+1, y+1)
		c.DrawLine(x-1, y+1, x+1, y-1)
	}
}

func (c *Canvas) End() error { return nil }

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
