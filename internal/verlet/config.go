package verlet

import "math"

// Orientation fixes which way gravity pulls and where the floor is.
type Orientation uint8

const (
	// ScreenSpace: Y grows downward, gravity adds to Y, the floor is the Y max bound.
	ScreenSpace Orientation = iota
	// WorldSpace: Y grows upward, gravity subtracts from Y, the floor is the Y min bound.
	WorldSpace
)

func (o Orientation) String() string {
	if o == WorldSpace {
		return "world"
	}
	return "screen"
}

// ParseOrientation accepts "screen" or "world".
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "screen", "":
		return ScreenSpace, nil
	case "world":
		return WorldSpace, nil
	}
	return 0, invalidf("unknown orientation %q", s)
}

const (
	DefaultGravity    = 0.01
	DefaultRigidity   = 5
	DefaultFriction   = 0.999
	DefaultBounceLoss = 0.9
	DefaultSkidLoss   = 0.9
)

// Range bounds one axis. A nil bound is unbounded.
type Range struct {
	Min *float64
	Max *float64
}

// Bound returns a pointer for use as a Range limit.
func Bound(v float64) *float64 { return &v }

// Between is a Range with both limits set.
func Between(min, max float64) Range {
	return Range{Min: Bound(min), Max: Bound(max)}
}

// Config holds the world settings of one engine.
type Config struct {
	Dimensions    int
	Orientation   Orientation
	Gravity       float64
	Rigidity      int
	Friction      float64
	BounceLoss    float64
	SkidLoss      float64
	Breeze        float64
	PointsCollide bool
	Ranges        [3]Range
	Seed          int64
}

// DefaultConfig returns the standard settings for 2 or 3 dimensions. Three
// dimensional worlds default to WorldSpace orientation.
func DefaultConfig(dimensions int) Config {
	cfg := Config{
		Dimensions: dimensions,
		Gravity:    DefaultGravity,
		Rigidity:   DefaultRigidity,
		Friction:   DefaultFriction,
		BounceLoss: DefaultBounceLoss,
		SkidLoss:   DefaultSkidLoss,
		Seed:       1,
	}
	if dimensions == 3 {
		cfg.Orientation = WorldSpace
	}
	return cfg
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	if c.Dimensions != 2 && c.Dimensions != 3 {
		return invalidf("dimensions must be 2 or 3, got %d", c.Dimensions)
	}
	if c.Orientation != ScreenSpace && c.Orientation != WorldSpace {
		return invalidf("unknown orientation %d", c.Orientation)
	}
	if c.Rigidity < 0 {
		return invalidf("rigidity must be non-negative, got %d", c.Rigidity)
	}
	scalars := []struct {
		name  string
		value float64
	}{
		{"gravity", c.Gravity},
		{"friction", c.Friction},
		{"bounce loss", c.BounceLoss},
		{"skid loss", c.SkidLoss},
		{"breeze", c.Breeze},
	}
	for _, s := range scalars {
		if !finiteScalar(s.value) {
			return invalidf("%s must be finite, got %v", s.name, s.value)
		}
		if s.name != "gravity" && s.value < 0 {
			return invalidf("%s must be non-negative, got %v", s.name, s.value)
		}
	}
	for i, r := range c.Ranges {
		axis := Axis(i)
		if r.Min != nil && !finiteScalar(*r.Min) {
			return invalidf("%s min must be finite", axis)
		}
		if r.Max != nil && !finiteScalar(*r.Max) {
			return invalidf("%s max must be finite", axis)
		}
		if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			return invalidf("%s range min %v exceeds max %v", axis, *r.Min, *r.Max)
		}
	}
	return nil
}

// clone deep-copies the range bounds so callers cannot alias engine state.
func (c Config) clone() Config {
	for i, r := range c.Ranges {
		if r.Min != nil {
			c.Ranges[i].Min = Bound(*r.Min)
		}
		if r.Max != nil {
			c.Ranges[i].Max = Bound(*r.Max)
		}
	}
	return c
}

// axes is the number of active coordinate components.
func (c Config) axes() int { return c.Dimensions }

// horizontal lists the axes skid loss applies to.
func (c Config) horizontal() []Axis {
	if c.Dimensions == 3 {
		return []Axis{AxisX, AxisZ}
	}
	return []Axis{AxisX}
}

// onFloor reports whether a point touches the floor bound.
func (c Config) onFloor(p *Point) bool {
	y := c.Ranges[AxisY]
	if c.Orientation == WorldSpace {
		return y.Min != nil && p.Position[AxisY] <= *y.Min+p.Radius
	}
	return y.Max != nil && p.Position[AxisY] >= *y.Max-p.Radius
}

// down is the gravity sign along Y.
func (c Config) down() float64 {
	if c.Orientation == WorldSpace {
		return -1
	}
	return 1
}

// passes is the number of relaxation passes a span with the given strength receives.
func (c Config) passes(strength float64) int {
	return int(math.Round(float64(c.Rigidity) * strength))
}
