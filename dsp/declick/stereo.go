package declick

import (
	"math"
	"time"
)

// Stereo is a two-channel declick ramp. The zero value is settled and passes
// input through unchanged.
type Stereo struct {
	ramp   float64
	active bool

	heldL float64
	heldR float64
	prevL float64
	prevR float64
}

// Trigger restarts the crossfade from the last produced output. The next
// Process calls blend from that held value toward the live input.
func (s *Stereo) Trigger() {
	s.heldL = s.prevL
	s.heldR = s.prevR
	s.ramp = 0
	s.active = true
}

// Process returns the smoothed pair for the input pair (left, right).
//
// While a crossfade is pending the ramp advances by rate before blending, so
// the output reaches the live input after about 1/rate calls. A non-positive
// or NaN rate settles the smoother immediately.
func (s *Stereo) Process(left, right, rate float64) (float64, float64) {
	if s.active {
		if rate <= 0 || math.IsNaN(rate) {
			s.ramp = 1
		} else {
			s.ramp += rate
		}

		if s.ramp >= 1 {
			s.ramp = 1
			s.active = false
		} else {
			left = s.heldL*(1-s.ramp) + left*s.ramp
			right = s.heldR*(1-s.ramp) + right*s.ramp
		}
	}

	s.prevL = left
	s.prevR = right

	return left, right
}

// Active reports whether a crossfade is in progress.
func (s *Stereo) Active() bool { return s.active }

// Ramp returns crossfade progress in [0, 1]. A settled smoother reports 1.
func (s *Stereo) Ramp() float64 {
	if !s.active {
		return 1
	}

	return s.ramp
}

// Value returns the last produced output pair.
func (s *Stereo) Value() (float64, float64) { return s.prevL, s.prevR }

// Reset clears the held output and settles the smoother.
func (s *Stereo) Reset() {
	*s = Stereo{}
}

// RateForDuration returns the per-tick ramp increment that completes a
// crossfade in d at sampleRate. It returns 1 (no smoothing) when the duration
// is shorter than one tick or the inputs are invalid.
func RateForDuration(d time.Duration, sampleRate float64) float64 {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 1
	}

	ticks := d.Seconds() * sampleRate
	if ticks <= 1 {
		return 1
	}

	return 1 / ticks
}
