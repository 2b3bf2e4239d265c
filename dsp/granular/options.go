package granular

import (
	"fmt"
	"math"
)

const (
	defaultSampleRate   = 48000.0
	defaultDensity      = 20.0
	defaultPosition     = 0.0
	defaultSpray        = 0.05
	defaultGrainSeconds = 0.1
	defaultPitch        = 1.0
	defaultMaxGrains    = 16
	defaultSmoothRate   = 0.01
	defaultGain         = 1.0
	defaultSeed         = 1

	maxPitch        = 8.0
	maxGrainSeconds = 10.0
)

// Option mutates cloud construction parameters.
type Option func(*config) error

type config struct {
	sampleRate   float64
	density      float64
	position     float64
	spray        float64
	grainSeconds float64
	pitch        float64
	maxGrains    int
	smoothRate   float64
	fadeTicks    int
	gain         float64
	seed         int64
}

func defaultConfig() config {
	return config{
		sampleRate:   defaultSampleRate,
		density:      defaultDensity,
		position:     defaultPosition,
		spray:        defaultSpray,
		grainSeconds: defaultGrainSeconds,
		pitch:        defaultPitch,
		maxGrains:    defaultMaxGrains,
		smoothRate:   defaultSmoothRate,
		gain:         defaultGain,
		seed:         defaultSeed,
	}
}

// WithSampleRate sets the tick rate in Hz.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *config) error {
		if !isFinite(sampleRate) || sampleRate <= 0 {
			return fmt.Errorf("cloud sample rate must be > 0 and finite: %f", sampleRate)
		}
		cfg.sampleRate = sampleRate
		return nil
	}
}

// WithDensity sets how many grains start per second. It must not exceed
// the sample rate.
func WithDensity(grainsPerSecond float64) Option {
	return func(cfg *config) error {
		if err := validateDensity(grainsPerSecond); err != nil {
			return err
		}
		cfg.density = grainsPerSecond
		return nil
	}
}

// WithPosition sets the normalized start position in [0, 1].
func WithPosition(position float64) Option {
	return func(cfg *config) error {
		if err := validateUnit("position", position); err != nil {
			return err
		}
		cfg.position = position
		return nil
	}
}

// WithSpray sets random start jitter in [0, 1], relative to the grain length.
func WithSpray(spray float64) Option {
	return func(cfg *config) error {
		if err := validateUnit("spray", spray); err != nil {
			return err
		}
		cfg.spray = spray
		return nil
	}
}

// WithGrainLength sets the grain loop length in seconds.
func WithGrainLength(seconds float64) Option {
	return func(cfg *config) error {
		if err := validateGrainSeconds(seconds); err != nil {
			return err
		}
		cfg.grainSeconds = seconds
		return nil
	}
}

// WithPitch sets the playback ratio in (0, 8].
func WithPitch(ratio float64) Option {
	return func(cfg *config) error {
		if err := validatePitch(ratio); err != nil {
			return err
		}
		cfg.pitch = ratio
		return nil
	}
}

// WithMaxGrains sets the voice budget.
func WithMaxGrains(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return fmt.Errorf("cloud max grains must be >= 1: %d", n)
		}
		cfg.maxGrains = n
		return nil
	}
}

// WithSmoothRate sets the declick ramp increment per tick in (0, 1].
func WithSmoothRate(rate float64) Option {
	return func(cfg *config) error {
		if err := validateSmoothRate(rate); err != nil {
			return err
		}
		cfg.smoothRate = rate
		return nil
	}
}

// WithFadeTicks sets how many ticks a removed grain takes to fade out.
func WithFadeTicks(ticks int) Option {
	return func(cfg *config) error {
		if ticks < 1 {
			return fmt.Errorf("cloud fade ticks must be >= 1: %d", ticks)
		}
		cfg.fadeTicks = ticks
		return nil
	}
}

// WithGain sets the linear output gain.
func WithGain(gain float64) Option {
	return func(cfg *config) error {
		if err := validateGain(gain); err != nil {
			return err
		}
		cfg.gain = gain
		return nil
	}
}

// WithSeed sets the spray random seed.
func WithSeed(seed int64) Option {
	return func(cfg *config) error {
		cfg.seed = seed
		return nil
	}
}

func validateDensity(density float64) error {
	if !isFinite(density) || density <= 0 {
		return fmt.Errorf("cloud density must be > 0 and finite: %f", density)
	}
	return nil
}

func validateUnit(name string, v float64) error {
	if !isFinite(v) || v < 0 || v > 1 {
		return fmt.Errorf("cloud %s must be in [0, 1]: %f", name, v)
	}
	return nil
}

func validateGrainSeconds(seconds float64) error {
	if !isFinite(seconds) || seconds <= 0 || seconds > maxGrainSeconds {
		return fmt.Errorf("cloud grain length must be in (0, %f] seconds: %f", maxGrainSeconds, seconds)
	}
	return nil
}

func validatePitch(ratio float64) error {
	if !isFinite(ratio) || ratio <= 0 || ratio > maxPitch {
		return fmt.Errorf("cloud pitch must be in (0, %f]: %f", maxPitch, ratio)
	}
	return nil
}

func validateSmoothRate(rate float64) error {
	if !isFinite(rate) || rate <= 0 || rate > 1 {
		return fmt.Errorf("cloud smooth rate must be in (0, 1]: %f", rate)
	}
	return nil
}

func validateGain(gain float64) error {
	if !isFinite(gain) || gain < 0 {
		return fmt.Errorf("cloud gain must be >= 0 and finite: %f", gain)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
