package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first half of the discrete
// Fourier transform of data after removing its mean. Any length works.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centred := make([]float64, len(data))
	for i, v := range data {
		centred[i] = v - mean
	}

	coeffs := fft.FFTReal(centred)
	ps := make([]float64, len(coeffs)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantFrequency finds the strongest non-constant component of data.
// sampleRate is samples per unit time, so the result is cycles per unit
// time. A flat or too short series yields zero.
func DominantFrequency(data []float64, sampleRate float64) (freq, power float64) {
	ps := PowerSpectrum(data)
	best := 0
	for k := 1; k < len(ps); k++ {
		if ps[k] > power {
			best, power = k, ps[k]
		}
	}
	if best == 0 {
		return 0, 0
	}
	return float64(best) * sampleRate / float64(len(data)), power
}
