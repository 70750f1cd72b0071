// Package audio turns the motion of a world into sound. Synth is a slow
// pad whose filter opens as kinetic energy rises; Analyze splits a buffer
// into bass, mid and high levels for meters.
package audio

import (
	"math"
	"sync"
)

const (
	SampleRate = 44100
	BufferSize = 1024

	// EnergyScale is the kinetic energy at which the filter is about two
	// thirds open.
	EnergyScale = 50.0

	minCutoff = 300.0
	maxCutoff = 1200.0
	volume    = 0.25
	delaySecs = 0.6
)

// chord is Gm7 add9: G2, Bb2, D3, F3, A3.
var chord = []float64{98.00, 116.54, 146.83, 174.61, 220.00}

// Synth renders stereo audio. SetEnergy and Levels may be called from any
// goroutine while Process runs on the audio thread.
type Synth struct {
	mu     sync.Mutex
	energy float64
	muted  bool
	levels Levels

	smooth float64
	time   float64
	filter [2]float64
	delay  [2][]float64
	head   int
}

func NewSynth() *Synth {
	n := int(SampleRate * delaySecs)
	return &Synth{delay: [2][]float64{make([]float64, n), make([]float64, n)}}
}

// SetEnergy sets the kinetic energy the pad follows. Negative and
// non-finite values are treated as zero.
func (s *Synth) SetEnergy(e float64) {
	if e < 0 || math.IsNaN(e) || math.IsInf(e, 0) {
		e = 0
	}
	s.mu.Lock()
	s.energy = e
	s.mu.Unlock()
}

func (s *Synth) SetMuted(muted bool) {
	s.mu.Lock()
	s.muted = muted
	s.mu.Unlock()
}

func (s *Synth) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// Levels returns the band levels of the last processed buffer.
func (s *Synth) Levels() Levels {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levels
}

// Cutoff is the low-pass cutoff in Hz for the smoothed energy. It reads
// audio-thread state, so call it only between Process calls.
func (s *Synth) Cutoff() float64 {
	return cutoff(s.smooth)
}

func cutoff(energy float64) float64 {
	return minCutoff + (maxCutoff-minCutoff)*(1-math.Exp(-energy/EnergyScale))
}

func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4*math.Abs(p-0.5) - 1
}

// lowPass is a one-pole filter step.
func lowPass(sample, cutoff, dt, state float64) float64 {
	rc := 1 / (2 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	return state + alpha*(sample-state)
}

// Process fills out[0] and out[1] with the next samples.
func (s *Synth) Process(out [][]float32) {
	s.mu.Lock()
	target, muted := s.energy, s.muted
	s.mu.Unlock()

	const dt = 1.0 / SampleRate
	gain := volume
	if muted {
		gain = 0
	}
	for i := range out[0] {
		s.smooth = s.smooth*0.9995 + target*0.0005
		fc := cutoff(s.smooth)

		var l, r float64
		for j, f := range chord {
			lfo := 0.7 + 0.3*math.Sin(s.time*0.2+float64(j))
			l += triangle(s.time*f*0.999) * lfo
			r += triangle(s.time*f*1.001) * lfo
		}
		l /= float64(len(chord))
		r /= float64(len(chord))

		s.filter[0] = lowPass(l, fc, dt, s.filter[0])
		s.filter[1] = lowPass(r, fc, dt, s.filter[1])

		dl, dr := s.delay[0][s.head], s.delay[1][s.head]
		mixL := s.filter[0] + dl*0.3 + dr*0.1
		mixR := s.filter[1] + dr*0.3 + dl*0.1
		s.delay[0][s.head] = mixL * 0.7
		s.delay[1][s.head] = mixR * 0.7
		s.head = (s.head + 1) % len(s.delay[0])

		out[0][i] = float32(mixL * gain)
		if len(out) > 1 {
			out[1][i] = float32(mixR * gain)
		}
		s.time += dt
	}

	lv := Analyze(out[0], SampleRate)
	s.mu.Lock()
	s.levels = lv
	s.mu.Unlock()
}
