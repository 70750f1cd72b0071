// Package analysis characterises recorded point trajectories.
//
// Every function works on plain sampled series, such as one coordinate of
// one point taken from a saved run:
//
//   - [PowerSpectrum], [DominantFrequency]: oscillation content via FFT
//   - [NewPhasePortrait]: coordinate against per-sample velocity
//   - [PoincareSection]: samples taken at upward threshold crossings
//   - [LyapunovExponent]: divergence rate between two runs
//   - [BifurcationDiagram]: turning values across a parameter sweep
//
// # Sensitivity
//
// Two runs that differ only in a small perturbation drift apart
// exponentially when the system is chaotic:
//
//	lambda := analysis.LyapunovExponent(a, b, dt)
//	if lambda > 0 {
//	    // small differences grow
//	}
package analysis
