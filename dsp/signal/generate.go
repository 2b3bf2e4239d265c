package signal

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-grain/dsp/sample"
)

const defaultSampleRate = 48000

// Kind selects the waveform produced by Generator.Stereo.
type Kind int

const (
	KindSine Kind = iota
	KindSaw
	KindNoise
	KindSweep
)

var kindNames = map[string]Kind{
	"sine":  KindSine,
	"saw":   KindSaw,
	"noise": KindNoise,
	"sweep": KindSweep,
}

// ParseKind maps a waveform name (sine, saw, noise, sweep) to a Kind.
func ParseKind(name string) (Kind, error) {
	k, ok := kindNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown signal kind: %q", name)
	}
	return k, nil
}

func (k Kind) String() string {
	for name, v := range kindNames {
		if v == k {
			return name
		}
	}
	return "unknown"
}

// Generator creates deterministic signals at a fixed sample rate.
type Generator struct {
	sampleRate float64
	seed       int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSampleRate sets the generation sample rate. Non-positive values are ignored.
func WithSampleRate(sampleRate float64) Option {
	return func(g *Generator) {
		if sampleRate > 0 {
			g.sampleRate = sampleRate
		}
	}
}

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a configured signal generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		sampleRate: defaultSampleRate,
		seed:       1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// SampleRate returns the generation sample rate in Hz.
func (g *Generator) SampleRate() float64 { return g.sampleRate }

// Seed returns the current noise seed.
func (g *Generator) Seed() int64 { return g.seed }

// SetSeed updates the noise seed.
func (g *Generator) SetSeed(seed int64) { g.seed = seed }

// Sine generates a sine wave.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	if err := g.validate("sine", freqHz, samples); err != nil {
		return nil, err
	}
	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / g.sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out, nil
}

// Saw generates a naive rising sawtooth in [-amplitude, amplitude).
func (g *Generator) Saw(freqHz, amplitude float64, samples int) ([]float64, error) {
	if err := g.validate("saw", freqHz, samples); err != nil {
		return nil, err
	}
	out := make([]float64, samples)
	inc := freqHz / g.sampleRate
	phase := 0.0
	for i := range out {
		out[i] = amplitude * (2*phase - 1)
		phase += inc
		phase -= math.Floor(phase)
	}
	return out, nil
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}
	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out, nil
}

// Sweep generates an exponential sine sweep from startHz to endHz.
func (g *Generator) Sweep(startHz, endHz, amplitude float64, samples int) ([]float64, error) {
	if err := g.validate("sweep", startHz, samples); err != nil {
		return nil, err
	}
	if endHz <= 0 || endHz >= g.sampleRate/2 {
		return nil, fmt.Errorf("sweep end frequency must be in (0, %f): %f", g.sampleRate/2, endHz)
	}

	out := make([]float64, samples)
	duration := float64(samples) / g.sampleRate
	k := math.Log(endHz / startHz)
	for i := range out {
		t := float64(i) / g.sampleRate
		var phase float64
		if k == 0 {
			phase = 2 * math.Pi * startHz * t
		} else {
			phase = 2 * math.Pi * startHz * duration / k * (math.Exp(t/duration*k) - 1)
		}
		out[i] = amplitude * math.Sin(phase)
	}
	return out, nil
}

// Stereo renders seconds of kind as a stereo sample. The right channel is
// decorrelated from the left (detuned tone, second noise seed, reversed
// sweep) so stereo placement of grains is audible.
func (g *Generator) Stereo(kind Kind, freqHz, amplitude, seconds float64) (*sample.Sample, error) {
	n := int(math.Round(seconds * g.sampleRate))

	var left, right []float64
	var err error

	switch kind {
	case KindSine:
		if left, err = g.Sine(freqHz, amplitude, n); err == nil {
			right, err = g.Sine(freqHz*1.005, amplitude, n)
		}
	case KindSaw:
		if left, err = g.Saw(freqHz, amplitude, n); err == nil {
			right, err = g.Saw(freqHz*0.995, amplitude, n)
		}
	case KindNoise:
		if left, err = g.WhiteNoise(amplitude, n); err == nil {
			right, err = NewGenerator(WithSampleRate(g.sampleRate), WithSeed(g.seed+1)).WhiteNoise(amplitude, n)
		}
	case KindSweep:
		end := math.Min(freqHz*64, g.sampleRate*0.45)
		if left, err = g.Sweep(freqHz, end, amplitude, n); err == nil {
			right = make([]float64, n)
			for i := range left {
				right[i] = left[n-1-i]
			}
		}
	default:
		return nil, fmt.Errorf("unknown signal kind: %d", kind)
	}
	if err != nil {
		return nil, err
	}

	return sample.New(left, right)
}

// Normalize scales data to target peak amplitude and returns a new slice.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("normalize input must not be empty")
	}

	maxAbs := 0.0
	for _, v := range data {
		av := math.Abs(v)
		if av > maxAbs {
			maxAbs = av
		}
	}

	out := make([]float64, len(data))
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}

	scale := targetPeak / maxAbs
	for i, v := range data {
		out[i] = v * scale
	}
	return out, nil
}

func (g *Generator) validate(name string, freqHz float64, samples int) error {
	if samples <= 0 {
		return fmt.Errorf("%s samples must be > 0: %d", name, samples)
	}
	if freqHz <= 0 || math.IsNaN(freqHz) || math.IsInf(freqHz, 0) {
		return fmt.Errorf("%s frequency must be > 0: %f", name, freqHz)
	}
	return nil
}
