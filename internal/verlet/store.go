package verlet

// PointStore owns the points of one engine.
type PointStore struct {
	a *arena[Point]
}

func NewPointStore() *PointStore {
	return &PointStore{a: newArena[Point]()}
}

// Add validates spec and stores a new point with the next id.
func (s *PointStore) Add(spec PointSpec) (*Point, error) {
	if !finite(spec.Position) {
		return nil, invalidf("point position %v is not finite", spec.Position)
	}
	if spec.Mass <= 0 || !finiteScalar(spec.Mass) {
		return nil, invalidf("point mass must be positive, got %v", spec.Mass)
	}
	if spec.Radius < 0 || !finiteScalar(spec.Radius) {
		return nil, invalidf("point radius must be non-negative, got %v", spec.Radius)
	}
	if spec.Materiality != Material && spec.Materiality != Immaterial {
		return nil, invalidf("unknown materiality %d", spec.Materiality)
	}
	prev := spec.Position
	if spec.Previous != nil {
		if !finite(*spec.Previous) {
			return nil, invalidf("point previous position %v is not finite", *spec.Previous)
		}
		prev = *spec.Previous
	}
	p := &Point{
		ID:          s.a.alloc(),
		Position:    spec.Position,
		Previous:    prev,
		Mass:        spec.Mass,
		Radius:      spec.Radius,
		Materiality: spec.Materiality,
		Fixed:       spec.Fixed,
		Color:       spec.Color,
	}
	s.a.put(p.ID, p)
	return p, nil
}

func (s *PointStore) Get(id int) (*Point, error) {
	p, ok := s.a.get(id)
	if !ok {
		return nil, &LookupError{Kind: KindPoint, ID: id}
	}
	return p, nil
}

// Remove deletes the point and marks it so spans still holding it report stale.
func (s *PointStore) Remove(id int) error {
	p, ok := s.a.remove(id)
	if !ok {
		return &LookupError{Kind: KindPoint, ID: id}
	}
	p.removed = true
	return nil
}

// owns reports whether p is a live point of this store.
func (s *PointStore) owns(p *Point) bool {
	if p == nil {
		return false
	}
	q, ok := s.a.get(p.ID)
	return ok && q == p
}

func (s *PointStore) Len() int {
	return s.a.len()
}

func (s *PointStore) All() []*Point {
	return s.a.items()
}

func (s *PointStore) Each(fn func(*Point)) {
	s.a.each(fn)
}

// SpanStore owns the spans of one engine.
type SpanStore struct {
	a *arena[Span]
}

func NewSpanStore() *SpanStore {
	return &SpanStore{a: newArena[Span]()}
}

// Add stores a span whose rest length is the current distance between its endpoints.
func (s *SpanStore) Add(p1, p2 *Point, dims int) *Span {
	sp := &Span{
		ID:         s.a.alloc(),
		Point1:     p1,
		Point2:     p2,
		RestLength: distance(p1.Position, p2.Position, dims),
		Strength:   1,
	}
	s.a.put(sp.ID, sp)
	return sp
}

func (s *SpanStore) Get(id int) (*Span, error) {
	sp, ok := s.a.get(id)
	if !ok {
		return nil, &LookupError{Kind: KindSpan, ID: id}
	}
	return sp, nil
}

func (s *SpanStore) Remove(id int) error {
	if _, ok := s.a.remove(id); !ok {
		return &LookupError{Kind: KindSpan, ID: id}
	}
	return nil
}

func (s *SpanStore) Len() int {
	return s.a.len()
}

func (s *SpanStore) All() []*Span {
	return s.a.items()
}

func (s *SpanStore) Each(fn func(*Span)) {
	s.a.each(fn)
}

// SkinStore owns the skins of one engine.
type SkinStore struct {
	a *arena[Skin]
}

func NewSkinStore() *SkinStore {
	return &SkinStore{a: newArena[Skin]()}
}

func (s *SkinStore) Add(points []*Point, style Style) *Skin {
	sk := &Skin{
		ID:     s.a.alloc(),
		Points: append([]*Point(nil), points...),
		Style:  style,
	}
	s.a.put(sk.ID, sk)
	return sk
}

func (s *SkinStore) Get(id int) (*Skin, error) {
	sk, ok := s.a.get(id)
	if !ok {
		return nil, &LookupError{Kind: KindSkin, ID: id}
	}
	return sk, nil
}

func (s *SkinStore) Remove(id int) error {
	if _, ok := s.a.remove(id); !ok {
		return &LookupError{Kind: KindSkin, ID: id}
	}
	return nil
}

func (s *SkinStore) Len() int {
	return s.a.len()
}

func (s *SkinStore) All() []*Skin {
	return s.a.items()
}

func (s *SkinStore) Each(fn func(*Skin)) {
	s.a.each(fn)
}
