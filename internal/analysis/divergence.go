package analysis

import "math"

// LyapunovExponent estimates how fast two runs of the same series drift
// apart: the least squares slope of ln|a-b| against time, with dt between
// samples. Samples where the runs coincide carry no information and are
// skipped. A positive value means small differences grow exponentially.
func LyapunovExponent(a, b []float64, dt float64) float64 {
	n := min(len(a), len(b))
	var sumT, sumL, sumTT, sumTL float64
	count := 0
	for i := 0; i < n; i++ {
		sep := math.Abs(a[i] - b[i])
		if sep == 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			continue
		}
		t := float64(i) * dt
		l := math.Log(sep)
		sumT += t
		sumL += l
		sumTT += t * t
		sumTL += t * l
		count++
	}
	if count < 2 {
		return 0
	}
	c := float64(count)
	denom := c*sumTT - sumT*sumT
	if denom == 0 {
		return 0
	}
	return (c*sumTL - sumT*sumL) / denom
}
