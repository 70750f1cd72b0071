package sim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Factory builds an independent simulator seeded with seed.
type Factory func(seed int64) (*Simulator, error)

// Ensemble runs the same world under consecutive seeds in parallel.
type Ensemble struct {
	build     Factory
	numRuns   int
	seedStart int64
	limit     int
}

func NewEnsemble(build Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

// SetLimit caps the number of runs in flight. Zero or less means no cap.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	if e.numRuns <= 0 {
		return nil, fmt.Errorf("ensemble needs at least one run, got %d", e.numRuns)
	}
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			seed := e.seedStart + int64(i)
			sim, err := e.build(seed)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			res, err := sim.Run(ctx, cfg)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Summary is the spread of one metric across an ensemble.
type Summary struct {
	Name   string
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize aggregates every metric present in results, sorted by name.
func Summarize(results []*Result) []Summary {
	values := make(map[string][]float64)
	for _, r := range results {
		if r == nil {
			continue
		}
		for name, v := range r.Metrics {
			values[name] = append(values[name], v)
		}
	}

	out := make([]Summary, 0, len(values))
	for name, vs := range values {
		s := Summary{Name: name, Min: math.Inf(1), Max: math.Inf(-1)}
		for _, v := range vs {
			s.Mean += v
			s.Min = math.Min(s.Min, v)
			s.Max = math.Max(s.Max, v)
		}
		s.Mean /= float64(len(vs))
		for _, v := range vs {
			s.StdDev += (v - s.Mean) * (v - s.Mean)
		}
		s.StdDev = math.Sqrt(s.StdDev / float64(len(vs)))
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
