package grain

import (
	"fmt"
	"math"
	"time"
)

// Option configures an Engine.
type Option func(*config) error

type config struct {
	fadeTicks int
	capacity  int
}

func defaultConfig() config {
	return config{
		fadeTicks: DefaultFadeTicks,
		capacity:  16,
	}
}

// WithFadeTicks sets how many outputs a marked grain takes to reach silence.
func WithFadeTicks(ticks int) Option {
	return func(cfg *config) error {
		if ticks < 1 {
			return fmt.Errorf("grain fade ticks must be >= 1: %d", ticks)
		}
		cfg.fadeTicks = ticks
		return nil
	}
}

// WithFadeDuration sets the fade length as wall-clock time at sampleRate,
// rounded to the nearest tick (at least one).
func WithFadeDuration(d time.Duration, sampleRate float64) Option {
	return func(cfg *config) error {
		if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
			return fmt.Errorf("grain fade sample rate must be > 0: %f", sampleRate)
		}
		if d < 0 {
			return fmt.Errorf("grain fade duration must be >= 0: %v", d)
		}

		ticks := int(math.Round(d.Seconds() * sampleRate))
		if ticks < 1 {
			ticks = 1
		}
		cfg.fadeTicks = ticks
		return nil
	}
}

// WithCapacity preallocates room for n grains so Add does not allocate until
// the engine holds more than n.
func WithCapacity(n int) Option {
	return func(cfg *config) error {
		if n < 0 {
			return fmt.Errorf("grain capacity must be >= 0: %d", n)
		}
		cfg.capacity = n
		return nil
	}
}
