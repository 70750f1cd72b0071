package verlet

import (
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
)

// Phase is where the engine is within a tick.
type Phase int32

const (
	Idle Phase = iota
	Integrating
	Relaxing
)

func (p Phase) String() string {
	switch p {
	case Integrating:
		return "integrating"
	case Relaxing:
		return "relaxing"
	}
	return "idle"
}

// Engine owns the point, span and skin stores of one world and advances
// them a tick at a time.
type Engine struct {
	mu     sync.Mutex
	cfg    Config
	points *PointStore
	spans  *SpanStore
	skins  *SkinStore

	integrator *Integrator
	boundary   *BoundaryResolver
	solver     *ConstraintSolver

	tick  uint64
	phase atomic.Int32
	stats Stats
	log   *slog.Logger

	// onPhase, when set, sees every phase transition.
	onPhase func(Phase)
}

// New validates cfg and returns an empty engine.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:    cfg.clone(),
		points: NewPointStore(),
		spans:  NewSpanStore(),
		skins:  NewSkinStore(),
		log:    slog.New(slog.DiscardHandler),
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	e.integrator = NewIntegrator(&e.cfg, rng)
	e.boundary = NewBoundaryResolver(&e.cfg)
	e.solver = NewConstraintSolver(&e.cfg, e.boundary)
	return e, nil
}

func (e *Engine) SetLogger(l *slog.Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	e.log = l
}

// Config returns a copy of the current settings.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.clone()
}

// SetConfig replaces the settings between ticks. The seed of a running
// engine is not reapplied.
func (e *Engine) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg.clone()
	return nil
}

// Configure applies fn to a copy of the settings and installs the result if it validates.
func (e *Engine) Configure(fn func(*Config)) error {
	cfg := e.Config()
	fn(&cfg)
	return e.SetConfig(cfg)
}

// Do runs fn under the tick guard. Goroutines other than the one driving
// Tick use it to mutate points directly.
func (e *Engine) Do(fn func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn()
}

func (e *Engine) AddPoint(pos Vec3, m Materiality) (*Point, error) {
	return e.AddPointSpec(PointSpec{Position: pos, Materiality: m, Mass: 1})
}

func (e *Engine) AddPointSpec(spec PointSpec) (*Point, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.points.Add(spec)
}

// AddSpan links two points by id.
func (e *Engine) AddSpan(id1, id2 int) (*Span, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p1, err := e.points.Get(id1)
	if err != nil {
		return nil, err
	}
	p2, err := e.points.Get(id2)
	if err != nil {
		return nil, err
	}
	return e.addSpan(p1, p2)
}

// AddSpanPoints links two live points of this engine.
func (e *Engine) AddSpanPoints(p1, p2 *Point) (*Span, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range []*Point{p1, p2} {
		if !e.points.owns(p) {
			return nil, e.foreign(p)
		}
	}
	return e.addSpan(p1, p2)
}

func (e *Engine) addSpan(p1, p2 *Point) (*Span, error) {
	if p1 == p2 {
		return nil, invalidf("span endpoints are the same point %d", p1.ID)
	}
	return e.spans.Add(p1, p2, e.cfg.axes()), nil
}

// foreign builds the error for a point reference this engine does not hold.
func (e *Engine) foreign(p *Point) error {
	if p == nil {
		return invalidf("nil point reference")
	}
	return &LookupError{Kind: KindPoint, ID: p.ID}
}

// AddSkin builds a skin over points by id. Ids may repeat.
func (e *Engine) AddSkin(ids []int, style Style) (*Skin, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pts := make([]*Point, 0, len(ids))
	for _, id := range ids {
		p, err := e.points.Get(id)
		if err != nil {
			return nil, err
		}
		pts = append(pts, p)
	}
	return e.skins.Add(pts, style), nil
}

func (e *Engine) AddSkinPoints(points []*Point, style Style) (*Skin, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range points {
		if !e.points.owns(p) {
			return nil, e.foreign(p)
		}
	}
	return e.skins.Add(points, style), nil
}

func (e *Engine) Point(id int) (*Point, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.points.Get(id)
}

func (e *Engine) Span(id int) (*Span, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.spans.Get(id)
}

func (e *Engine) Skin(id int) (*Skin, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.skins.Get(id)
}

// RemovePoint deletes a point. Spans that reference it are kept and reported
// stale by the next Tick or Refine until they are removed.
func (e *Engine) RemovePoint(id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.points.Remove(id)
}

func (e *Engine) RemoveSpan(id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.spans.Remove(id)
}

func (e *Engine) RemoveSkin(id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.skins.Remove(id)
}

// Points returns live points in insertion order.
func (e *Engine) Points() []*Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.points.All()
}

func (e *Engine) Spans() []*Span {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.spans.All()
}

func (e *Engine) Skins() []*Skin {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.skins.All()
}

// Distance is the Euclidean distance between two points over the configured axes.
func (e *Engine) Distance(a, b *Point) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return distance(a.Position, b.Position, e.cfg.axes())
}

func (e *Engine) TickCount() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// Phase may be read from any goroutine, including while a tick runs.
func (e *Engine) Phase() Phase {
	return Phase(e.phase.Load())
}

func (e *Engine) setPhase(p Phase) {
	e.phase.Store(int32(p))
	if e.onPhase != nil {
		e.onPhase(p)
	}
}

// Stats describes the most recent tick.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Tick advances the world one step: integrate every free point, relax spans
// with boundaries re-applied after each pass, then advance the tick counter.
// Degenerate geometry is skipped silently. Stale spans and non-finite
// coordinates are returned after the tick has completed.
func (e *Engine) Tick() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.setPhase(Integrating)
	e.integrator.Step(e.points, e.tick)

	e.setPhase(Relaxing)
	stats, stale := e.solver.Refine(e.points, e.spans)
	e.setPhase(Idle)

	var errs []error
	for _, s := range stale {
		errs = append(errs, s)
	}
	e.skins.Each(func(s *Skin) {
		if id, ok := s.stalePoint(); ok {
			errs = append(errs, &StaleSkinError{SkinID: s.ID, PointID: id})
			stats.StaleSkins++
		}
	})

	e.stats = stats
	e.report(stats)
	e.tick++

	e.points.Each(func(p *Point) {
		if !finite(p.Position) || !finite(p.Previous) {
			errs = append(errs, &PointError{ID: p.ID, Wrapped: ErrNonFinite})
		}
	})
	return errors.Join(errs...)
}

// Integrate runs only the integration phase.
func (e *Engine) Integrate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setPhase(Integrating)
	e.integrator.Step(e.points, e.tick)
	e.setPhase(Idle)
}

// Refine runs only the relaxation phase.
func (e *Engine) Refine() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setPhase(Relaxing)
	stats, stale := e.solver.Refine(e.points, e.spans)
	e.setPhase(Idle)
	e.report(stats)
	errs := make([]error, 0, len(stale))
	for _, s := range stale {
		errs = append(errs, s)
	}
	return errors.Join(errs...)
}

// ResolveBoundaries runs a single boundary pass.
func (e *Engine) ResolveBoundaries() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n := e.boundary.Resolve(e.points); n > 0 {
		e.log.Debug("skipped coincident pairs", "count", n)
	}
}

func (e *Engine) report(s Stats) {
	if s.DegenerateSpans > 0 || s.DegeneratePairs > 0 {
		e.log.Debug("skipped degenerate geometry",
			"tick", e.tick,
			"spans", s.DegenerateSpans,
			"pairs", s.DegeneratePairs)
	}
	if s.StaleSpans > 0 {
		e.log.Debug("stale spans", "tick", e.tick, "count", s.StaleSpans)
	}
	if s.StaleSkins > 0 {
		e.log.Debug("stale skins", "tick", e.tick, "count", s.StaleSkins)
	}
}
