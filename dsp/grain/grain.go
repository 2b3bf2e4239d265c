package grain

import (
	"math"

	"github.com/cwbudde/algo-grain/dsp/declick"
)

// DefaultFadeTicks is the number of outputs a grain takes to fade to silence
// after MarkForRemoval when no other fade length is configured.
const DefaultFadeTicks = 100

// Source is the read-only stereo material a grain plays. Len must be > 0 and
// the data must not change while any grain references it.
type Source interface {
	Len() int
	At(i int) (left, right float64)
}

// Grain is a single looping playback voice over a window of a Source.
type Grain struct {
	start  float64
	length float64
	pos    float64
	src    Source

	smooth declick.Stereo

	fadeTicks   int
	fadeElapsed int
	state       State
}

// NewGrain returns an active grain that starts reading src at frame offset
// start and loops every length ticks. fadeTicks values below 1 select
// DefaultFadeTicks.
func NewGrain(start, length float64, src Source, fadeTicks int) (*Grain, error) {
	if err := validateGrain(start, length, src); err != nil {
		return nil, err
	}

	g := newGrain(start, length, src, fadeTicks)

	return &g, nil
}

func newGrain(start, length float64, src Source, fadeTicks int) Grain {
	if fadeTicks < 1 {
		fadeTicks = DefaultFadeTicks
	}

	return Grain{
		start:     start,
		length:    length,
		src:       src,
		fadeTicks: fadeTicks,
	}
}

// Output returns the grain's current stereo frame passed through its declick
// smoother. A fading grain advances its removal ramp by one tick per call and
// is attenuated by (1 - ramp); the call that completes the ramp returns
// silence and retires the grain. Retired grains always return (0, 0).
func (g *Grain) Output(smoothRate float64) (float64, float64) {
	if g.state == Retired {
		return 0, 0
	}

	// Truncation instead of math.Floor: start and pos are both >= 0.
	n := g.src.Len()
	idx := int(g.start+g.pos) % n
	if idx < 0 {
		idx += n
	}

	left, right := g.src.At(idx)
	left, right = g.smooth.Process(left, right, smoothRate)

	if g.state == Fading {
		g.fadeElapsed++

		ramp := float64(g.fadeElapsed) / float64(g.fadeTicks)
		if ramp >= 1 {
			g.state = Retired
			return 0, 0
		}

		gain := 1 - ramp
		left *= gain
		right *= gain
	}

	return left, right
}

// Step advances the playback cursor by amount ticks. When the cursor leaves
// [0, length) it wraps by floating modulus and the declick smoother is
// triggered. Negative amounts play backwards. Retired grains do not move.
func (g *Grain) Step(amount float64) {
	if g.state == Retired {
		return
	}

	g.pos += amount
	if g.pos >= g.length || g.pos < 0 {
		g.pos = math.Mod(g.pos, g.length)
		if g.pos < 0 {
			g.pos += g.length
		}
		// Adding length to a tiny negative remainder can round up to length.
		if g.pos >= g.length {
			g.pos = 0
		}

		g.smooth.Trigger()
	}
}

// MarkForRemoval starts the fade-out. It only affects active grains and is
// idempotent.
func (g *Grain) MarkForRemoval() {
	if g.state == Active {
		g.state = Fading
	}
}

// State returns the lifecycle stage.
func (g *Grain) State() State { return g.state }

// Start returns the frame offset into the source.
func (g *Grain) Start() float64 { return g.start }

// Length returns the loop length in ticks.
func (g *Grain) Length() float64 { return g.length }

// Position returns the playback cursor in [0, Length()).
func (g *Grain) Position() float64 { return g.pos }

// RemovalRamp returns fade progress in [0, 1]; 0 until the grain is marked.
func (g *Grain) RemovalRamp() float64 {
	switch g.state {
	case Retired:
		return 1
	case Fading:
		return float64(g.fadeElapsed) / float64(g.fadeTicks)
	default:
		return 0
	}
}

func (g *Grain) render(left, right []float64, smoothRate, step float64) {
	for k := range left {
		if g.state == Retired {
			clear(left[k:])
			clear(right[k:])
			return
		}

		left[k], right[k] = g.Output(smoothRate)
		g.Step(step)
	}
}
