package scenes

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/vxsim/internal/verlet"
)

// Marbles drops balls of random size into a box and lets them pile up.
// A new marble is released every ReleaseEvery ticks until Max are in play.
type Marbles struct {
	Initial      int
	Max          int
	ReleaseEvery int

	rng   *rand.Rand
	ticks int
}

func NewMarbles() *Marbles {
	return &Marbles{Initial: 15, Max: 30, ReleaseEvery: 120}
}

func (m *Marbles) Name() string        { return "marbles" }
func (m *Marbles) Description() string { return "random marbles dropped into a box, colliding" }

func (m *Marbles) World() verlet.Config {
	cfg := box(1000, 780)
	cfg.Gravity = 0.5
	cfg.BounceLoss = 0.5
	cfg.SkidLoss = 0.999
	cfg.PointsCollide = true
	return cfg
}

func (m *Marbles) Build(e *verlet.Engine, rng *rand.Rand) error {
	m.rng = rng
	m.ticks = 0
	for i := 0; i < m.Initial; i++ {
		if _, err := m.Release(e); err != nil {
			return err
		}
	}
	return nil
}

func (m *Marbles) Step(e *verlet.Engine) error {
	m.ticks++
	if m.ReleaseEvery <= 0 || m.ticks%m.ReleaseEvery != 0 {
		return nil
	}
	if len(e.Points()) >= m.Max {
		return nil
	}
	_, err := m.Release(e)
	return err
}

// Release drops one marble of a random colour at the top of the box with a
// small random velocity.
func (m *Marbles) Release(e *verlet.Engine) (*verlet.Point, error) {
	width := 1000
	if r := e.Config().Ranges[verlet.AxisX].Max; r != nil {
		width = int(*r)
	}
	x := float64(randInt(m.rng, 0, width))
	prev := verlet.Vec3{
		float64(randInt(m.rng, int(x)-20, int(x)+20)),
		float64(randInt(m.rng, -20, 0)),
		0,
	}
	radius := float64(randInt(m.rng, 50, 150)) / 2
	return e.AddPointSpec(verlet.PointSpec{
		Position: verlet.Vec3{x, 0, 0},
		Previous: &prev,
		Mass:     1,
		Radius:   radius,
		Color:    randomColor(m.rng),
	})
}

func randomColor(rng *rand.Rand) string {
	return fmt.Sprintf("#%06x", rng.Intn(1<<24))
}
