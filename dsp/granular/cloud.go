package granular

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-grain/dsp/grain"
	"github.com/cwbudde/algo-vecmath"
)

// Cloud schedules grains over a source and mixes them through a grain.Engine.
type Cloud struct {
	engine *grain.Engine
	src    grain.Source
	rng    *rand.Rand

	sampleRate   float64
	density      float64
	position     float64
	spray        float64
	grainSeconds float64
	pitch        float64
	maxGrains    int
	smoothRate   float64
	gain         float64
	seed         int64

	interval  float64
	countdown float64
	running   bool
}

// NewCloud creates a running cloud over src. The first grain starts on the
// first tick.
func NewCloud(src grain.Source, opts ...Option) (*Cloud, error) {
	if src == nil {
		return nil, grain.ErrNilSource
	}
	if src.Len() <= 0 {
		return nil, fmt.Errorf("%w: len=%d", grain.ErrEmptySource, src.Len())
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if cfg.density > cfg.sampleRate {
		return nil, fmt.Errorf("cloud density must be <= sample rate %f: %f", cfg.sampleRate, cfg.density)
	}

	engineOpts := []grain.Option{grain.WithCapacity(2 * cfg.maxGrains)}
	if cfg.fadeTicks > 0 {
		engineOpts = append(engineOpts, grain.WithFadeTicks(cfg.fadeTicks))
	}

	engine, err := grain.New(engineOpts...)
	if err != nil {
		return nil, err
	}

	c := &Cloud{
		engine:       engine,
		src:          src,
		rng:          rand.New(rand.NewSource(cfg.seed)),
		sampleRate:   cfg.sampleRate,
		density:      cfg.density,
		position:     cfg.position,
		spray:        cfg.spray,
		grainSeconds: cfg.grainSeconds,
		pitch:        cfg.pitch,
		maxGrains:    cfg.maxGrains,
		smoothRate:   cfg.smoothRate,
		gain:         cfg.gain,
		seed:         cfg.seed,
		interval:     cfg.sampleRate / cfg.density,
		running:      true,
	}

	return c, nil
}

// SampleRate returns the tick rate in Hz.
func (c *Cloud) SampleRate() float64 { return c.sampleRate }

// Density returns grains started per second.
func (c *Cloud) Density() float64 { return c.density }

// Position returns the normalized start position.
func (c *Cloud) Position() float64 { return c.position }

// Spray returns the start jitter relative to the grain length.
func (c *Cloud) Spray() float64 { return c.spray }

// GrainLength returns the grain loop length in seconds.
func (c *Cloud) GrainLength() float64 { return c.grainSeconds }

// Pitch returns the playback ratio.
func (c *Cloud) Pitch() float64 { return c.pitch }

// MaxGrains returns the voice budget.
func (c *Cloud) MaxGrains() int { return c.maxGrains }

// SmoothRate returns the declick ramp increment.
func (c *Cloud) SmoothRate() float64 { return c.smoothRate }

// Gain returns the linear output gain.
func (c *Cloud) Gain() float64 { return c.gain }

// Running reports whether new grains are being scheduled.
func (c *Cloud) Running() bool { return c.running }

// Grains returns the number of grains held, including fading ones.
func (c *Cloud) Grains() int { return c.engine.Len() }

// ActiveGrains returns the number of grains not yet fading.
func (c *Cloud) ActiveGrains() int { return c.engine.ActiveCount() }

// SetDensity sets grains per second in (0, sample rate]. A pending trigger
// is pulled in if the new interval is shorter.
func (c *Cloud) SetDensity(grainsPerSecond float64) error {
	if err := validateDensity(grainsPerSecond); err != nil {
		return err
	}
	if grainsPerSecond > c.sampleRate {
		return fmt.Errorf("cloud density must be <= sample rate %f: %f", c.sampleRate, grainsPerSecond)
	}

	c.density = grainsPerSecond
	c.interval = c.sampleRate / grainsPerSecond
	if c.countdown > c.interval {
		c.countdown = c.interval
	}

	return nil
}

// SetPosition sets the normalized start position in [0, 1].
func (c *Cloud) SetPosition(position float64) error {
	if err := validateUnit("position", position); err != nil {
		return err
	}
	c.position = position
	return nil
}

// SetSpray sets the start jitter in [0, 1].
func (c *Cloud) SetSpray(spray float64) error {
	if err := validateUnit("spray", spray); err != nil {
		return err
	}
	c.spray = spray
	return nil
}

// SetGrainLength sets the loop length in seconds for grains started from now on.
func (c *Cloud) SetGrainLength(seconds float64) error {
	if err := validateGrainSeconds(seconds); err != nil {
		return err
	}
	c.grainSeconds = seconds
	return nil
}

// SetPitch sets the playback ratio of all grains.
func (c *Cloud) SetPitch(ratio float64) error {
	if err := validatePitch(ratio); err != nil {
		return err
	}
	c.pitch = ratio
	return nil
}

// SetMaxGrains changes the voice budget and fades excess grains at once.
func (c *Cloud) SetMaxGrains(n int) error {
	if n < 1 {
		return fmt.Errorf("cloud max grains must be >= 1: %d", n)
	}
	c.maxGrains = n
	c.enforceBudget()
	return nil
}

// SetSmoothRate sets the declick ramp increment in (0, 1].
func (c *Cloud) SetSmoothRate(rate float64) error {
	if err := validateSmoothRate(rate); err != nil {
		return err
	}
	c.smoothRate = rate
	return nil
}

// SetGain sets the linear output gain.
func (c *Cloud) SetGain(gain float64) error {
	if err := validateGain(gain); err != nil {
		return err
	}
	c.gain = gain
	return nil
}

// Start resumes scheduling; the next tick starts a grain.
func (c *Cloud) Start() {
	if c.running {
		return
	}
	c.running = true
	c.countdown = 0
}

// Release stops scheduling and fades out every grain.
func (c *Cloud) Release() {
	c.running = false
	c.engine.MarkAllForRemoval()
}

// Reset drops all grains without fading and rewinds the random state.
// It is meant for offline re-rendering, not for use while audible.
func (c *Cloud) Reset() error {
	engine, err := grain.New(grain.WithCapacity(2*c.maxGrains), grain.WithFadeTicks(c.engine.FadeTicks()))
	if err != nil {
		return err
	}

	c.engine = engine
	c.rng.Seed(c.seed)
	c.countdown = 0
	c.running = true

	return nil
}

// Trigger starts one grain now, independent of the schedule.
func (c *Cloud) Trigger() error {
	n := float64(c.src.Len())
	length := math.Max(1, c.grainSeconds*c.sampleRate)

	start := c.position * n
	if c.spray > 0 {
		start += (c.rng.Float64()*2 - 1) * c.spray * length
	}
	start = math.Mod(start, n)
	if start < 0 {
		start += n
	}

	if err := c.engine.Add(start, length, c.src); err != nil {
		return err
	}
	c.enforceBudget()

	return nil
}

// Tick renders one stereo frame.
func (c *Cloud) Tick() (float64, float64) {
	if c.running {
		if c.countdown <= 0 {
			// Parameters are validated on set, so Add cannot fail here.
			_ = c.Trigger()
			c.countdown += c.interval
		}
		c.countdown--
	}

	left, right := c.engine.Process(c.smoothRate, c.pitch)

	return left * c.gain, right * c.gain
}

// ProcessBlock renders len(left) frames, identical to calling Tick per frame.
// The block is split at scheduled trigger points and each segment is mixed
// with grain.Engine.ProcessBlock.
func (c *Cloud) ProcessBlock(left, right []float64) error {
	if len(left) != len(right) {
		return fmt.Errorf("cloud block lengths must match: left=%d right=%d", len(left), len(right))
	}

	n := len(left)
	for off := 0; off < n; {
		end := n
		if c.running {
			if c.countdown <= 0 {
				_ = c.Trigger()
				c.countdown += c.interval
			}
			c.countdown--

			end = off + 1
			for end < n && c.countdown > 0 {
				c.countdown--
				end++
			}
		}

		if err := c.engine.ProcessBlock(left[off:end], right[off:end], c.smoothRate, c.pitch); err != nil {
			return err
		}
		off = end
	}

	if c.gain != 1 {
		vecmath.ScaleBlock(left, left, c.gain)
		vecmath.ScaleBlock(right, right, c.gain)
	}

	return nil
}

func (c *Cloud) enforceBudget() {
	if over := c.engine.Len() - c.maxGrains; over > 0 {
		c.engine.MarkOldestForRemoval(over)
	}
}
