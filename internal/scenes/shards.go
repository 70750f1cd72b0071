package scenes

import (
	"math/rand"

	"github.com/san-kum/vxsim/internal/verlet"
)

// Shards is a broken triangle icon that periodically explodes and then
// pulls itself back together.
type Shards struct {
	Origin        verlet.Vec3
	Intensity     int
	ExplodeAfter  int
	AssembleAfter int
	AssembleSpeed float64
	SnapDistance  float64
	Floor         float64
	AssemblyFloor float64
	Gravity       float64
	Style         verlet.Style

	rng      *rand.Rand
	home     map[int]verlet.Vec3
	exploded bool
	since    int
	// settings restored once the shards are home again
	gravity float64
	floor   *float64
}

var (
	shardTip1  = verlet.Vec3{150, 111.97, 0}
	shardEdge1 = verlet.Vec3{167.88, 143.12, 0}
	shardEdge2 = verlet.Vec3{177.5, 159.89, 0}
	shardTip2  = verlet.Vec3{195.31, 190.95, 0}
	shardEdge3 = verlet.Vec3{166, 190.95, 0}
	shardEdge4 = verlet.Vec3{114, 190.95, 0}
	shardTip3  = verlet.Vec3{104.69, 190.95, 0}
	shardEdge5 = verlet.Vec3{135.98, 136.39, 0}
	shardHub   = verlet.Vec3{154.34, 169.77, 0}
)

// Each shard is an outline of home positions plus scaffold braces given as
// index pairs into the outline.
var shardShapes = []struct {
	outline []verlet.Vec3
	braces  [][2]int
}{
	{[]verlet.Vec3{shardTip1, shardEdge1, shardHub, shardEdge5}, [][2]int{{1, 3}}},
	{[]verlet.Vec3{shardEdge2, shardTip2, shardEdge3, shardHub}, [][2]int{{0, 2}}},
	{[]verlet.Vec3{shardHub, shardEdge3, shardEdge4}, nil},
	{[]verlet.Vec3{shardEdge5, shardHub, shardEdge4, shardTip3}, [][2]int{{0, 2}, {1, 3}}},
	{[]verlet.Vec3{shardEdge1, shardEdge2, shardHub}, nil},
}

func NewShards() *Shards {
	return &Shards{
		Origin:        verlet.Vec3{150, 190, 0},
		Intensity:     8,
		ExplodeAfter:  300,
		AssembleAfter: 300,
		AssembleSpeed: 3,
		SnapDistance:  2,
		Floor:         190.95,
		AssemblyFloor: 200,
		Gravity:       0.1,
		Style:         verlet.Style{Fill: "#FFFFFF", Outline: "#0B419E", Thickness: 5},
	}
}

func (s *Shards) Name() string        { return "shards" }
func (s *Shards) Description() string { return "icon shards that explode and reassemble" }

func (s *Shards) World() verlet.Config {
	cfg := box(300, s.Floor)
	cfg.Gravity = s.Gravity
	return cfg
}

func (s *Shards) Build(e *verlet.Engine, rng *rand.Rand) error {
	s.rng = rng
	s.home = make(map[int]verlet.Vec3)
	s.exploded = false
	s.since = 0
	cfg := e.Config()
	s.gravity = cfg.Gravity
	s.floor = cfg.Ranges[verlet.AxisY].Max

	for _, shape := range shardShapes {
		pts := make([]*verlet.Point, len(shape.outline))
		for i, pos := range shape.outline {
			p, err := e.AddPoint(pos, verlet.Material)
			if err != nil {
				return err
			}
			s.home[p.ID] = pos
			pts[i] = p
		}
		for i := range pts {
			if _, err := e.AddSpanPoints(pts[i], pts[(i+1)%len(pts)]); err != nil {
				return err
			}
		}
		for _, b := range shape.braces {
			sp, err := e.AddSpanPoints(pts[b[0]], pts[b[1]])
			if err != nil {
				return err
			}
			sp.Hidden = true
		}
		if _, err := e.AddSkinPoints(pts, s.Style); err != nil {
			return err
		}
	}
	e.PinAll()
	return nil
}

// Exploded reports whether the shards are currently scattered.
func (s *Shards) Exploded() bool { return s.exploded }

func (s *Shards) Step(e *verlet.Engine) error {
	s.since++
	switch {
	case !s.exploded && s.since > s.ExplodeAfter:
		s.Explode(e)
	case s.exploded && s.since > s.AssembleAfter:
		return s.reassemble(e)
	}
	return nil
}

// Explode releases every shard and throws it away from the origin.
func (s *Shards) Explode(e *verlet.Engine) {
	e.UnpinAll()
	speed := float64(randInt(s.rng, s.Intensity-2, s.Intensity+2))
	e.ApplyRadialImpulse(s.Origin, speed)
	s.exploded = true
	s.since = 0
}

// reassemble moves every point a fixed distance toward its home and pins it
// once it arrives. Gravity and the floor are relaxed until all points are home.
func (s *Shards) reassemble(e *verlet.Engine) error {
	err := e.Configure(func(c *verlet.Config) {
		c.Gravity = 0
		c.Ranges[verlet.AxisY].Max = verlet.Bound(s.AssemblyFloor)
	})
	if err != nil {
		return err
	}

	home := true
	for _, p := range e.Points() {
		target := s.home[p.ID]
		to := target.Sub(p.Position)
		d := to.Len()
		next := target
		if d >= s.SnapDistance {
			next = p.Position.Add(to.Mul(s.AssembleSpeed / d))
			home = false
		}
		if err := e.Teleport(p.ID, next); err != nil {
			return err
		}
		if d < s.SnapDistance {
			if err := e.Pin(p.ID); err != nil {
				return err
			}
		}
	}
	if !home {
		return nil
	}

	e.PinAll()
	s.exploded = false
	s.since = 0
	return e.Configure(func(c *verlet.Config) {
		c.Gravity = s.gravity
		c.Ranges[verlet.AxisY].Max = s.floor
	})
}
