// Package metrics summarises a run from the frames it produces.
package metrics

import (
	"fmt"
	"sort"

	"github.com/san-kum/vxsim/internal/sim"
)

// DefaultStabilityThreshold is the per-tick speed above which a frame counts as unsettled.
const DefaultStabilityThreshold = 5.0

var constructors = map[string]func() sim.Metric{
	"energy":       func() sim.Metric { return NewEnergy() },
	"energy_decay": func() sim.Metric { return NewEnergyDecay() },
	"stability":    func() sim.Metric { return NewStability(DefaultStabilityThreshold) },
	"peak_speed":   func() sim.Metric { return NewPeakSpeed() },
	"strain":       func() sim.Metric { return NewStrain() },
}

// Default returns a fresh instance of every metric.
func Default() []sim.Metric {
	out := make([]sim.Metric, 0, len(constructors))
	for _, name := range Names() {
		out = append(out, constructors[name]())
	}
	return out
}

func ByName(name string) (sim.Metric, error) {
	fn, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
