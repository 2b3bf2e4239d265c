package grain

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"
)

// Engine mixes an ordered collection of grains, oldest first.
type Engine struct {
	grains    []Grain
	fadeTicks int

	scratchL []float64
	scratchR []float64
}

// New creates an empty engine.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	return &Engine{
		grains:    make([]Grain, 0, cfg.capacity),
		fadeTicks: cfg.fadeTicks,
	}, nil
}

// FadeTicks returns the fade length applied to grains added from now on.
func (e *Engine) FadeTicks() int { return e.fadeTicks }

// Add appends a new active grain reading src from frame offset start and
// looping every length ticks.
func (e *Engine) Add(start, length float64, src Source) error {
	if err := validateGrain(start, length, src); err != nil {
		return err
	}

	e.grains = append(e.grains, newGrain(start, length, src, e.fadeTicks))

	return nil
}

// Len returns the number of grains held, including fading ones.
func (e *Engine) Len() int { return len(e.grains) }

// IsEmpty reports whether the engine holds no grains.
func (e *Engine) IsEmpty() bool { return len(e.grains) == 0 }

// ActiveCount returns the number of grains that have not been marked.
func (e *Engine) ActiveCount() int {
	n := 0
	for i := range e.grains {
		if e.grains[i].state == Active {
			n++
		}
	}
	return n
}

// MarkAllForRemoval starts the fade-out of every grain.
func (e *Engine) MarkAllForRemoval() {
	for i := range e.grains {
		e.grains[i].MarkForRemoval()
	}
}

// MarkOldestForRemoval starts the fade-out of the n oldest grains. Grains
// already fading count toward n. n >= Len() marks every grain; n <= 0 is a
// no-op.
func (e *Engine) MarkOldestForRemoval(n int) {
	if n >= len(e.grains) {
		e.MarkAllForRemoval()
		return
	}

	for i := 0; i < n; i++ {
		e.grains[i].MarkForRemoval()
	}
}

// Process renders one tick. Every live grain is read and then stepped, in
// insertion order, and the summed (unnormalized) stereo frame is returned.
// Grains that retired during this tick are removed before returning.
func (e *Engine) Process(smoothRate, step float64) (float64, float64) {
	var left, right float64

	for i := range e.grains {
		g := &e.grains[i]
		if g.state == Retired {
			continue
		}

		l, r := g.Output(smoothRate)
		left += l
		right += r

		g.Step(step)
	}

	e.sweep()

	return left, right
}

// ProcessBlock renders len(left) ticks into left and right, overwriting their
// contents. The result is identical to calling Process once per frame;
// retired grains are swept once at the end of the block.
func (e *Engine) ProcessBlock(left, right []float64, smoothRate, step float64) error {
	if len(left) != len(right) {
		return fmt.Errorf("grain block lengths must match: left=%d right=%d", len(left), len(right))
	}

	clear(left)
	clear(right)

	n := len(left)
	if n == 0 || len(e.grains) == 0 {
		return nil
	}

	e.scratchL = ensureLen(e.scratchL, n)
	e.scratchR = ensureLen(e.scratchR, n)

	for i := range e.grains {
		g := &e.grains[i]
		if g.state == Retired {
			continue
		}

		g.render(e.scratchL, e.scratchR, smoothRate, step)
		vecmath.AddBlockInPlace(left, e.scratchL)
		vecmath.AddBlockInPlace(right, e.scratchR)
	}

	e.sweep()

	return nil
}

// sweep removes retired grains in one compacting pass, keeping order.
func (e *Engine) sweep() {
	kept := 0
	for i := range e.grains {
		if e.grains[i].state == Retired {
			continue
		}
		if kept != i {
			e.grains[kept] = e.grains[i]
		}
		kept++
	}

	if kept == len(e.grains) {
		return
	}

	// Drop source references held by the vacated tail.
	clear(e.grains[kept:])
	e.grains = e.grains[:kept]
}

func ensureLen(buf []float64, n int) []float64 {
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}
