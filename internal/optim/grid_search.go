// Package optim searches world settings for the values that minimise a
// run metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/vxsim/internal/config"
	"github.com/san-kum/vxsim/internal/experiment"
)

// Builder creates a ready-to-run experiment for one set of parameters.
type Builder func(params map[string]float64) (*experiment.Experiment, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	log        *slog.Logger
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%d params but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("param %s has no values", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges, log: slog.New(slog.DiscardHandler)}, nil
}

func (g *GridSearch) SetLogger(l *slog.Logger) {
	if l != nil {
		g.log = l
	}
}

// Search runs every combination and returns the one with the lowest value
// of metricName. Combinations that fail to build, stop on an error, or do
// not report the metric are skipped; if none succeed Search fails.
func (g *GridSearch) Search(ctx context.Context, build Builder, metricName string) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), build, metricName, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, fmt.Errorf("no run reported %s", metricName)
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build Builder,
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if depth == len(g.paramNames) {
		exp, err := build(current)
		if err != nil {
			g.log.Warn("skipping combination", "params", current, "err", err)
			return nil
		}

		result, err := exp.Run(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			g.log.Warn("skipping combination", "params", current, "err", err)
			return nil
		}
		if len(result.Errors) > 0 {
			return nil
		}

		val, ok := result.Metrics[metricName]
		if !ok {
			return nil
		}
		g.log.Debug("evaluated", "params", current, metricName, val)
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, build, metricName, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

// ExperimentBuilder overlays the named world params onto a copy of base
// and attaches the scene's default metrics.
func ExperimentBuilder(reg *experiment.Registry, base *config.Config, log *slog.Logger) Builder {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		for name, v := range params {
			if err := cfg.World.SetParam(name, v); err != nil {
				return nil, err
			}
		}
		exp, err := experiment.New(reg, cfg, log)
		if err != nil {
			return nil, err
		}
		exp.Setup(reg.DefaultMetrics(cfg.Scene))
		return exp, nil
	}
}

// ParseRange reads "name=min:max:steps" or "name=v1,v2,...".
func ParseRange(s string) (string, []float64, error) {
	name, spec, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("range %q: want name=min:max:steps or name=v1,v2", s)
	}
	if parts := strings.Split(spec, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err := errors.Join(err1, err2, err3); err != nil {
			return "", nil, fmt.Errorf("range %q: %w", s, err)
		}
		return name, Linspace(lo, hi, n), nil
	}
	var values []float64
	for _, p := range strings.Split(spec, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return "", nil, fmt.Errorf("range %q: %w", s, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
