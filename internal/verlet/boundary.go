package verlet

// BoundaryResolver keeps material points inside the configured axis ranges
// and, when enabled, pushes overlapping points apart.
type BoundaryResolver struct {
	cfg *Config
}

func NewBoundaryResolver(cfg *Config) *BoundaryResolver {
	return &BoundaryResolver{cfg: cfg}
}

// Resolve runs one boundary pass and returns the number of coincident pairs
// that had to be skipped.
func (b *BoundaryResolver) Resolve(points *PointStore) int {
	cfg := b.cfg
	dims := cfg.axes()
	points.Each(func(p *Point) {
		if p.Materiality != Material || p.Fixed {
			return
		}
		for a := 0; a < dims; a++ {
			clampAxis(p, a, cfg.Ranges[a], cfg.BounceLoss)
		}
	})
	if !cfg.PointsCollide {
		return 0
	}
	return b.collide(points)
}

// clampAxis moves p back inside r on axis a and reflects its velocity on that
// axis, scaled by bounce.
func clampAxis(p *Point, a int, r Range, bounce float64) {
	v := p.Position[a] - p.Previous[a]
	switch {
	case r.Min != nil && p.Position[a] < *r.Min+p.Radius:
		p.Position[a] = *r.Min + p.Radius
	case r.Max != nil && p.Position[a] > *r.Max-p.Radius:
		p.Position[a] = *r.Max - p.Radius
	default:
		return
	}
	p.Previous[a] = p.Position[a] + v*bounce
}

// collide separates every overlapping pair of material points along the line
// between their centres. Pairs are visited in insertion order and corrected
// one at a time, so a point caught in several overlaps ends up wherever the
// last correction left it; this is an approximation, not a simultaneous solve.
// Velocity is left alone.
func (b *BoundaryResolver) collide(points *PointStore) int {
	dims := b.cfg.axes()
	var solid []*Point
	points.Each(func(p *Point) {
		if p.Materiality == Material {
			solid = append(solid, p)
		}
	})

	degenerate := 0
	for i, p1 := range solid {
		for _, p2 := range solid[i+1:] {
			delta := sub(p2.Position, p1.Position, dims)
			d := delta.Len()
			reach := p1.Radius + p2.Radius
			if d >= reach {
				continue
			}
			if d == 0 {
				degenerate++
				continue
			}
			depth := reach - d
			n := delta.Mul(1 / d)
			switch {
			case p1.Fixed && p2.Fixed:
			case p1.Fixed:
				p2.Position = p2.Position.Add(n.Mul(depth))
			case p2.Fixed:
				p1.Position = p1.Position.Sub(n.Mul(depth))
			default:
				half := n.Mul(depth / 2)
				p1.Position = p1.Position.Sub(half)
				p2.Position = p2.Position.Add(half)
			}
		}
	}
	return degenerate
}

// sub returns a - b with inactive axes zeroed.
func sub(a, b Vec3, dims int) Vec3 {
	var d Vec3
	for i := 0; i < dims; i++ {
		d[i] = a[i] - b[i]
	}
	return d
}

func distance(a, b Vec3, dims int) float64 {
	return sub(b, a, dims).Len()
}
