package audio

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Band edges in Hz.
const (
	bassEdge = 250.0
	midEdge  = 2000.0
)

// Levels is the share of spectral magnitude in each band. The three sum to
// one, or are all zero for silence.
type Levels struct {
	Bass, Mid, High float64
}

// Analyze windows samples, transforms them and sums magnitudes per band.
func Analyze(samples []float32, rate float64) Levels {
	n := len(samples)
	if n < 2 {
		return Levels{}
	}
	data := make([]float64, n)
	for i, v := range samples {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		data[i] = float64(v) * w
	}
	spectrum := fft.FFTReal(data)

	var lv Levels
	binHz := rate / float64(n)
	for k := 1; k < n/2; k++ {
		mag := cmplx.Abs(spectrum[k])
		switch f := float64(k) * binHz; {
		case f < bassEdge:
			lv.Bass += mag
		case f < midEdge:
			lv.Mid += mag
		default:
			lv.High += mag
		}
	}
	total := lv.Bass + lv.Mid + lv.High
	if total < 1e-9 {
		return Levels{}
	}
	lv.Bass /= total
	lv.Mid /= total
	lv.High /= total
	return lv
}
