package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/san-kum/vxsim/internal/verlet"
)

type Simulator struct {
	engine    *verlet.Engine
	behavior  Behavior
	metrics   []Metric
	observers []Observer
	frames    *FramePool
	log       *slog.Logger
}

func New(engine *verlet.Engine, behavior Behavior) *Simulator {
	return &Simulator{
		engine:    engine,
		behavior:  behavior,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		frames:    NewFramePool(),
		log:       slog.New(slog.DiscardHandler),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) Engine() *verlet.Engine { return s.engine }

func (s *Simulator) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	s.log = l
}

// Step runs the behavior and advances the engine by one tick.
func (s *Simulator) Step() error {
	if s.behavior != nil {
		if err := s.behavior.Step(s.engine); err != nil {
			return err
		}
	}
	return s.engine.Tick()
}

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Frames:  make([]verlet.Frame, 0, cfg.Ticks/cfg.Every+2),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	first := s.engine.Snapshot()
	s.observe(&first)
	s.record(result, first)

	for i := 0; i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := s.Step(); err != nil {
			stale, fatal := classify(err)
			if stale > 0 {
				if result.StaleReports == 0 {
					s.log.Warn("spans or skins reference removed points", "tick", s.engine.TickCount(), "count", stale)
				}
				result.StaleReports += stale
			}
			if fatal != nil {
				s.log.Error("run stopped", "tick", s.engine.TickCount(), "err", fatal)
				result.Errors = append(result.Errors, SimError{Tick: s.engine.TickCount(), Err: fatal})
				break
			}
		}
		result.TicksTaken++

		if (i+1)%cfg.Every == 0 || i == cfg.Ticks-1 {
			f := s.engine.Snapshot()
			s.observe(&f)
			s.record(result, f)
			continue
		}
		f := s.frames.Capture(s.engine)
		s.observe(f)
		s.frames.Put(f)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// RunWithCallback steps the world and hands every tick's frame to callback
// until it returns false or the tick budget is spent. The frame is only
// valid during the call.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(*verlet.Frame) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	for i := 0; i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.Step(); err != nil {
			if _, fatal := classify(err); fatal != nil {
				return SimError{Tick: s.engine.TickCount(), Err: fatal}
			}
		}

		f := s.frames.Capture(s.engine)
		ok := callback(f)
		s.frames.Put(f)
		if !ok {
			return nil
		}
	}
	return nil
}

func (s *Simulator) observe(f *verlet.Frame) {
	for _, m := range s.metrics {
		m.Observe(f)
	}
}

func (s *Simulator) record(result *Result, f verlet.Frame) {
	result.Frames = append(result.Frames, f)
	for _, obs := range s.observers {
		obs.OnFrame(&result.Frames[len(result.Frames)-1])
	}
}

func validateConfig(cfg Config) error {
	if cfg.Ticks <= 0 {
		return fmt.Errorf("ticks must be positive, got %d", cfg.Ticks)
	}
	if cfg.Every <= 0 {
		return fmt.Errorf("every must be positive, got %d", cfg.Every)
	}
	return nil
}

// classify counts the stale span and skin reports in err and returns whatever else
// it carries as a fatal error.
func classify(err error) (int, error) {
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}

	stale := 0
	var fatal []error
	for _, e := range errs {
		var se *verlet.StaleSpanError
		var sk *verlet.StaleSkinError
		if errors.As(e, &se) || errors.As(e, &sk) {
			stale++
			continue
		}
		fatal = append(fatal, e)
	}
	return stale, errors.Join(fatal...)
}
