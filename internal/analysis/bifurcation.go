package analysis

import (
	"fmt"
	"math"
)

// BifurcationPoint holds the distinct turning values seen at one
// parameter value.
type BifurcationPoint struct {
	Param  float64
	Values []float64
}

// Tracker runs a fresh world with the given parameter and returns one
// sampled coordinate.
type Tracker func(param float64) ([]float64, error)

// BifurcationDiagram sweeps a parameter over steps values from paramMin to
// paramMax. For each run the first transient samples are dropped and the
// local extrema of the rest are recorded, quantised to 1e-3 so that a
// settled orbit shows as a few values and an irregular one as many.
func BifurcationDiagram(track Tracker, paramMin, paramMax float64, steps, transient int) ([]BifurcationPoint, error) {
	if steps <= 1 {
		steps = 2
	}
	paramStep := (paramMax - paramMin) / float64(steps-1)

	results := make([]BifurcationPoint, 0, steps)
	for i := 0; i < steps; i++ {
		param := paramMin + float64(i)*paramStep
		series, err := track(param)
		if err != nil {
			return nil, fmt.Errorf("param %g: %w", param, err)
		}
		if transient < len(series) {
			series = series[transient:]
		} else {
			series = nil
		}
		results = append(results, BifurcationPoint{Param: param, Values: turningValues(series)})
	}
	return results, nil
}

func turningValues(series []float64) []float64 {
	values := make([]float64, 0)
	seen := make(map[int64]bool)
	add := func(v float64) {
		key := int64(math.Round(v * 1000))
		if !seen[key] {
			seen[key] = true
			values = append(values, v)
		}
	}
	for i := 1; i+1 < len(series); i++ {
		prev, cur, next := series[i-1], series[i], series[i+1]
		if (cur >= prev && cur > next) || (cur <= prev && cur < next) {
			add(cur)
		}
	}
	// a series that never turns has settled
	if len(values) == 0 && len(series) > 0 {
		add(series[len(series)-1])
	}
	return values
}

// BifurcationToASCII converts bifurcation data to ASCII art
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var minVal, maxVal float64
	foundFirst := false
	for _, p := range data {
		for _, v := range p.Values {
			if !foundFirst {
				minVal, maxVal = v, v
				foundFirst = true
				continue
			}
			minVal, maxVal = math.Min(minVal, v), math.Max(maxVal, v)
		}
	}
	if !foundFirst {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := newGrid(width, height)
	for i, p := range data {
		col := min(i*width/len(data), width-1)
		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}
	return gridString(canvas)
}
