package sim

import (
	"fmt"

	"github.com/san-kum/vxsim/internal/verlet"
)

// Behavior drives the world between ticks. Scenes implement it.
type Behavior interface {
	Step(e *verlet.Engine) error
}

type Metric interface {
	Name() string
	Observe(f *verlet.Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f *verlet.Frame)
}

type Config struct {
	Ticks int
	// Every records one frame per this many ticks. The final tick is always recorded.
	Every int
}

type Result struct {
	Frames       []verlet.Frame
	Metrics      map[string]float64
	TicksTaken   int
	StaleReports int
	Errors       []error
}

// Final is the last recorded frame.
func (r *Result) Final() *verlet.Frame {
	if len(r.Frames) == 0 {
		return nil
	}
	return &r.Frames[len(r.Frames)-1]
}

// SimError is a failure that stopped a run.
type SimError struct {
	Tick uint64
	Err  error
}

func (e SimError) Error() string {
	return fmt.Sprintf("tick %d: %v", e.Tick, e.Err)
}

func (e SimError) Unwrap() error { return e.Err }
