package verlet

// PointState is a copy of a point taken by Snapshot.
type PointState struct {
	ID          int
	Position    Vec3
	Previous    Vec3
	Mass        float64
	Radius      float64
	Materiality Materiality
	Fixed       bool
	Color       string
}

// SpanState is a copy of a span with its endpoint positions resolved.
type SpanState struct {
	ID         int
	Point1     int
	Point2     int
	A, B       Vec3
	RestLength float64
	Strength   float64
	Hidden     bool
	Stale      bool
}

// SkinState is a copy of a skin with its outline resolved to positions.
type SkinState struct {
	ID      int
	PointID []int
	Outline []Vec3
	Style   Style
	Stale   bool
}

// Frame is everything a renderer needs for one tick. It shares no memory
// with the engine.
type Frame struct {
	Tick        uint64
	Dimensions  int
	Orientation Orientation
	Points      []PointState
	Spans       []SpanState
	Skins       []SkinState
}

// Point looks up a point state by id.
func (f *Frame) Point(id int) (PointState, bool) {
	for _, p := range f.Points {
		if p.ID == id {
			return p, true
		}
	}
	return PointState{}, false
}

// Snapshot copies the current world in insertion order.
func (e *Engine) Snapshot() Frame {
	var f Frame
	e.SnapshotInto(&f)
	return f
}

// SnapshotInto is Snapshot reusing the slices already held by f.
func (e *Engine) SnapshotInto(f *Frame) {
	e.mu.Lock()
	defer e.mu.Unlock()

	f.Tick = e.tick
	f.Dimensions = e.cfg.Dimensions
	f.Orientation = e.cfg.Orientation
	if f.Points == nil {
		f.Points = make([]PointState, 0, e.points.Len())
		f.Spans = make([]SpanState, 0, e.spans.Len())
		f.Skins = make([]SkinState, 0, e.skins.Len())
	}
	f.Points = f.Points[:0]
	e.points.Each(func(p *Point) {
		f.Points = append(f.Points, PointState{
			ID:          p.ID,
			Position:    p.Position,
			Previous:    p.Previous,
			Mass:        p.Mass,
			Radius:      p.Radius,
			Materiality: p.Materiality,
			Fixed:       p.Fixed,
			Color:       p.Color,
		})
	})
	f.Spans = f.Spans[:0]
	e.spans.Each(func(s *Span) {
		f.Spans = append(f.Spans, SpanState{
			ID:         s.ID,
			Point1:     s.Point1.ID,
			Point2:     s.Point2.ID,
			A:          s.Point1.Position,
			B:          s.Point2.Position,
			RestLength: s.RestLength,
			Strength:   s.Strength,
			Hidden:     s.Hidden,
			Stale:      s.Stale(),
		})
	})
	skins := f.Skins
	f.Skins = f.Skins[:0]
	n := 0
	e.skins.Each(func(s *Skin) {
		var st SkinState
		if n < len(skins) {
			st = skins[n]
		}
		n++
		st.ID = s.ID
		st.Style = s.Style
		st.Stale = s.Stale()
		st.PointID = st.PointID[:0]
		st.Outline = st.Outline[:0]
		for _, p := range s.Points {
			st.PointID = append(st.PointID, p.ID)
			st.Outline = append(st.Outline, p.Position)
		}
		f.Skins = append(f.Skins, st)
	})
}
