package scenes

import (
	"math"
	"math/rand"

	"github.com/san-kum/vxsim/internal/verlet"
)

// Cube is a braced wireframe cube tumbling in an open-topped 3D container.
// It is spun when dropped and kicked upward every JumpEvery ticks while it
// sits inside the container.
type Cube struct {
	Container float64
	Width     float64
	Drop      float64
	Spin      int
	Jump      int
	JumpEvery int

	rng    *rand.Rand
	points []*verlet.Point
	out    []bool
	ticks  int
}

// cubeEdges are the twelve edges, the six face braces and the four body
// diagonals, as 1-based corner numbers.
var cubeEdges = [][2]int{
	{1, 2}, {2, 3}, {3, 4}, {4, 1},
	{1, 5}, {2, 6}, {3, 7}, {4, 8},
	{5, 6}, {6, 7}, {7, 8}, {8, 5},
	{1, 3}, {1, 6}, {2, 7}, {3, 8}, {4, 5}, {5, 7},
	{1, 7}, {2, 8}, {3, 5}, {4, 6},
}

func NewCube() *Cube {
	return &Cube{Container: 300, Width: 50, Drop: 200, Spin: 10, Jump: 30, JumpEvery: 180}
}

func (c *Cube) Name() string        { return "cube" }
func (c *Cube) Description() string { return "a 3D cube bouncing inside a container" }

func (c *Cube) World() verlet.Config {
	cfg := verlet.DefaultConfig(3)
	half := c.Container / 2
	cfg.Gravity = 0.25
	cfg.SkidLoss = 0.5
	cfg.Ranges[verlet.AxisX] = verlet.Between(-half, half)
	cfg.Ranges[verlet.AxisY] = verlet.Range{Min: verlet.Bound(-half)}
	cfg.Ranges[verlet.AxisZ] = verlet.Between(-half, half)
	return cfg
}

func (c *Cube) Build(e *verlet.Engine, rng *rand.Rand) error {
	c.rng = rng
	c.ticks = 0
	h := c.Width / 2
	lift := c.Drop - c.Container/2
	corners := []verlet.Vec3{
		{h, h + lift, h}, {h, h + lift, -h}, {h, -h + lift, h}, {h, -h + lift, -h},
		{-h, h + lift, -h}, {-h, h + lift, h}, {-h, -h + lift, -h}, {-h, -h + lift, h},
	}
	c.points = c.points[:0]
	for _, pos := range corners {
		p, err := e.AddPoint(pos, verlet.Material)
		if err != nil {
			return err
		}
		c.points = append(c.points, p)
	}
	c.out = make([]bool, len(c.points))
	for _, edge := range cubeEdges {
		if _, err := e.AddSpanPoints(c.points[edge[0]-1], c.points[edge[1]-1]); err != nil {
			return err
		}
	}
	for _, i := range []int{0, 6} {
		c.spin(c.points[i])
	}
	return nil
}

func (c *Cube) spin(p *verlet.Point) {
	nudge(p, verlet.Vec3{
		float64(randInt(c.rng, -c.Spin, c.Spin)),
		float64(randInt(c.rng, -c.Spin, c.Spin)),
		float64(randInt(c.rng, -c.Spin, c.Spin)),
	})
}

func (c *Cube) Step(e *verlet.Engine) error {
	c.ticks++
	return e.Do(func() error {
		in := c.inBox()
		if in && c.JumpEvery > 0 && c.ticks%c.JumpEvery == 0 {
			c.kick()
		}
		return nil
	})
}

// inBox reports whether every corner is inside the container. A corner that
// rises more than a cube width above the rim stays out until it is back
// between the walls.
func (c *Cube) inBox() bool {
	half := c.Container / 2
	in := true
	for i, p := range c.points {
		pos := p.Position
		switch {
		case pos[1] > half+c.Width:
			c.out[i] = true
		case math.Abs(pos[0]) <= half && math.Abs(pos[2]) <= half && pos[1] >= -half:
			c.out[i] = false
		}
		if c.out[i] {
			in = false
		}
	}
	return in
}

// kick throws the top face upward and twists one corner sideways.
func (c *Cube) kick() {
	for _, p := range c.points[:4] {
		if p.Removed() || p.Fixed {
			continue
		}
		p.Previous[1] = p.Position[1] + float64(randInt(c.rng, -c.Jump, -c.Jump/2))
	}
	if p := c.points[0]; !p.Removed() && !p.Fixed {
		p.Previous[0] = p.Position[0] + float64(randInt(c.rng, -c.Jump, c.Jump))
		p.Previous[2] = p.Position[2] + float64(randInt(c.rng, -c.Jump, c.Jump))
	}
}
