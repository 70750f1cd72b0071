package verlet_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/vxsim/internal/verlet"
)

var _ = Describe("Engine", func() {
	var (
		cfg verlet.Config
		e   *verlet.Engine
	)

	BeforeEach(func() {
		cfg = verlet.DefaultConfig(2)
	})

	JustBeforeEach(func() {
		var err error
		e, err = verlet.New(cfg)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("span relaxation", func() {
		var a, b *verlet.Point

		JustBeforeEach(func() {
			var err error
			a, err = e.AddPoint(verlet.Vec3{0, 0, 0}, verlet.Material)
			Expect(err).NotTo(HaveOccurred())
			b, err = e.AddPoint(verlet.Vec3{10, 0, 0}, verlet.Material)
			Expect(err).NotTo(HaveOccurred())
			_, err = e.AddSpanPoints(a, b)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Pin(a.ID)).To(Succeed())
			Expect(e.Teleport(b.ID, verlet.Vec3{20, 0, 0})).To(Succeed())
		})

		It("moves a stretched span toward its rest length on every refine", func() {
			last := math.Abs(e.Distance(a, b) - 10)
			for i := 0; i < 10; i++ {
				Expect(e.Refine()).To(Succeed())
				gap := math.Abs(e.Distance(a, b) - 10)
				Expect(gap).To(BeNumerically("<", last))
				last = gap
			}
			Expect(e.Distance(a, b)).To(BeNumerically("~", 10, 1e-3))
		})

		It("never moves the pinned endpoint", func() {
			for i := 0; i < 100; i++ {
				Expect(e.Tick()).To(Succeed())
			}
			Expect(a.Position).To(Equal(verlet.Vec3{0, 0, 0}))
		})
	})

	Describe("floor contact", func() {
		BeforeEach(func() {
			cfg.Gravity = 1
			cfg.Ranges[verlet.AxisY].Max = verlet.Bound(100)
		})

		It("comes to rest one radius above the floor", func() {
			p, err := e.AddPointSpec(verlet.PointSpec{Position: verlet.Vec3{50, 0, 0}, Mass: 1, Radius: 5})
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 2000; i++ {
				Expect(e.Tick()).To(Succeed())
				Expect(p.Position[1]).To(BeNumerically("<=", 95))
			}
			Expect(p.Position[1]).To(Equal(95.0))
		})
	})

	Describe("pairwise collision", func() {
		BeforeEach(func() {
			cfg.PointsCollide = true
		})

		It("splits the penetration depth between two overlapping points", func() {
			p1, err := e.AddPointSpec(verlet.PointSpec{Position: verlet.Vec3{0, 0, 0}, Mass: 1, Radius: 5})
			Expect(err).NotTo(HaveOccurred())
			p2, err := e.AddPointSpec(verlet.PointSpec{Position: verlet.Vec3{6, 0, 0}, Mass: 1, Radius: 5})
			Expect(err).NotTo(HaveOccurred())

			e.ResolveBoundaries()

			Expect(p1.Position[0]).To(BeNumerically("~", -2, 1e-9))
			Expect(p2.Position[0]).To(BeNumerically("~", 8, 1e-9))
			Expect(e.Distance(p1, p2) - p1.Radius - p2.Radius).To(BeNumerically("~", 0, 1e-9))
		})
	})

	Describe("boundaries", func() {
		BeforeEach(func() {
			cfg.Gravity = 0.3
			cfg.Breeze = 0.5
			cfg.Ranges[verlet.AxisX] = verlet.Between(0, 200)
			cfg.Ranges[verlet.AxisY] = verlet.Between(0, 200)
		})

		It("keep every material point inside the box after each tick", func() {
			for i := 0; i < 20; i++ {
				_, err := e.AddPointSpec(verlet.PointSpec{
					Position: verlet.Vec3{float64(10 + 9*i), float64(5 * i), 0},
					Mass:     1,
					Radius:   4,
				})
				Expect(err).NotTo(HaveOccurred())
			}
			e.ApplyRadialImpulse(verlet.Vec3{100, 100, 0}, 6)

			for i := 0; i < 500; i++ {
				Expect(e.Tick()).To(Succeed())
				for _, p := range e.Points() {
					Expect(p.Position[0]).To(BeNumerically(">=", 4-1e-9))
					Expect(p.Position[0]).To(BeNumerically("<=", 196+1e-9))
					Expect(p.Position[1]).To(BeNumerically("<=", 196+1e-9))
				}
			}
		})
	})

	Describe("removal", func() {
		It("reports spans left pointing at a removed point", func() {
			a, _ := e.AddPoint(verlet.Vec3{0, 0, 0}, verlet.Material)
			b, _ := e.AddPoint(verlet.Vec3{5, 0, 0}, verlet.Material)
			_, err := e.AddSpan(a.ID, b.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.RemovePoint(b.ID)).To(Succeed())

			err = e.Tick()
			Expect(err).To(MatchError(verlet.ErrNotFound))
			var stale *verlet.StaleSpanError
			Expect(errors.As(err, &stale)).To(BeTrue())
			Expect(stale.PointID).To(Equal(b.ID))
		})
	})
})
