package verlet

import "math"

// Pin fixes a point in place.
func (e *Engine) Pin(id int) error {
	return e.withPoint(id, func(p *Point) error {
		p.Fixed = true
		return nil
	})
}

func (e *Engine) Unpin(id int) error {
	return e.withPoint(id, func(p *Point) error {
		p.Fixed = false
		return nil
	})
}

func (e *Engine) PinAll() {
	e.setFixed(true)
}

func (e *Engine) UnpinAll() {
	e.setFixed(false)
}

func (e *Engine) setFixed(fixed bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.points.Each(func(p *Point) { p.Fixed = fixed })
}

// Teleport moves a point without implying any velocity.
func (e *Engine) Teleport(id int, pos Vec3) error {
	if !finite(pos) {
		return &PointError{ID: id, Wrapped: ErrNonFinite}
	}
	return e.withPoint(id, func(p *Point) error {
		p.Position = pos
		p.Previous = pos
		return nil
	})
}

// Impulse sets a point's implicit velocity to v.
func (e *Engine) Impulse(id int, v Vec3) error {
	if !finite(v) {
		return &PointError{ID: id, Wrapped: ErrNonFinite}
	}
	return e.withPoint(id, func(p *Point) error {
		p.Previous = p.Position.Sub(v)
		return nil
	})
}

func (e *Engine) SetMass(id int, mass float64) error {
	if mass <= 0 || !finiteScalar(mass) {
		return invalidf("point mass must be positive, got %v", mass)
	}
	return e.withPoint(id, func(p *Point) error {
		p.Mass = mass
		return nil
	})
}

func (e *Engine) SetRadius(id int, radius float64) error {
	if radius < 0 || !finiteScalar(radius) {
		return invalidf("point radius must be non-negative, got %v", radius)
	}
	return e.withPoint(id, func(p *Point) error {
		p.Radius = radius
		return nil
	})
}

// SetStrength changes the rigidity multiplier of a span.
func (e *Engine) SetStrength(id int, strength float64) error {
	if strength < 0 || !finiteScalar(strength) {
		return invalidf("span strength must be non-negative, got %v", strength)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.spans.Get(id)
	if err != nil {
		return err
	}
	s.Strength = strength
	return nil
}

func (e *Engine) withPoint(id int, fn func(*Point) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, err := e.points.Get(id)
	if err != nil {
		return err
	}
	return fn(p)
}

// ApplyRadialImpulse gives every free point a velocity of the given speed
// pointing away from origin. Points sitting exactly on the origin have no
// direction and are skipped. It returns the number of points pushed.
func (e *Engine) ApplyRadialImpulse(origin Vec3, speed float64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	dims := e.cfg.axes()
	pushed, skipped := 0, 0
	e.points.Each(func(p *Point) {
		if p.Fixed {
			return
		}
		away := sub(p.Position, origin, dims)
		d := away.Len()
		if d == 0 {
			skipped++
			return
		}
		p.Previous = p.Position.Sub(away.Mul(speed / d))
		pushed++
	})
	if skipped > 0 {
		e.log.Debug("radial impulse skipped points at origin", "count", skipped)
	}
	return pushed
}

// NearestPoint finds the point closest to pos within maxDist. Immaterial
// points are ignored when materialOnly is set.
func (e *Engine) NearestPoint(pos Vec3, maxDist float64, materialOnly bool) (*Point, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	dims := e.cfg.axes()
	var best *Point
	bestDist := math.Inf(1)
	e.points.Each(func(p *Point) {
		if materialOnly && p.Materiality != Material {
			return
		}
		if d := distance(pos, p.Position, dims); d < bestDist {
			best, bestDist = p, d
		}
	})
	if best == nil || bestDist > maxDist {
		return nil, false
	}
	return best, true
}
