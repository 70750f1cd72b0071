package verlet

// Stats counts what the last tick had to skip.
type Stats struct {
	Passes          int
	DegenerateSpans int
	DegeneratePairs int
	StaleSpans      int
	StaleSkins      int
}

// ConstraintSolver relaxes spans toward their rest length, re-applying
// boundaries after every pass.
type ConstraintSolver struct {
	cfg      *Config
	boundary *BoundaryResolver
}

func NewConstraintSolver(cfg *Config, boundary *BoundaryResolver) *ConstraintSolver {
	return &ConstraintSolver{cfg: cfg, boundary: boundary}
}

// Refine runs max(rigidity, round(rigidity*strength)) passes. A span takes
// part in pass i while round(rigidity*strength) >= i, so stiffer spans are
// corrected more often. Spans with a removed endpoint are skipped and
// returned as stale.
func (cs *ConstraintSolver) Refine(points *PointStore, spans *SpanStore) (Stats, []*StaleSpanError) {
	cfg := cs.cfg
	var stats Stats
	var stale []*StaleSpanError

	live := make([]*Span, 0, spans.Len())
	want := make([]int, 0, spans.Len())
	passes := cfg.Rigidity
	spans.Each(func(s *Span) {
		if s.Stale() {
			stale = append(stale, &StaleSpanError{SpanID: s.ID, PointID: s.stalePoint()})
			return
		}
		n := cfg.passes(s.Strength)
		if n > passes {
			passes = n
		}
		live = append(live, s)
		want = append(want, n)
	})
	stats.StaleSpans = len(stale)
	stats.Passes = passes

	dims := cfg.axes()
	for pass := 0; pass < passes; pass++ {
		for i, s := range live {
			if want[i] < pass {
				continue
			}
			if !relax(s, dims) {
				stats.DegenerateSpans++
			}
		}
		stats.DegeneratePairs += cs.boundary.Resolve(points)
	}
	return stats, stale
}

// relax moves the free endpoints of s symmetrically about their midpoint so
// that their distance becomes the rest length. It reports false, leaving the
// points untouched, when the endpoints coincide.
func relax(s *Span, dims int) bool {
	p1, p2 := s.Point1, s.Point2
	delta := sub(p2.Position, p1.Position, dims)
	d := delta.Len()
	if d == 0 {
		return false
	}
	ratio := s.RestLength / d
	for a := 0; a < dims; a++ {
		mid := p1.Position[a] + delta[a]/2
		off := delta[a] / 2 * ratio
		if !p1.Fixed {
			p1.Position[a] = mid - off
		}
		if !p2.Fixed {
			p2.Position[a] = mid + off
		}
	}
	return true
}
