package grain

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-grain/dsp/sample"
)

func mustSample(t testing.TB, data ...float64) *sample.Sample {
	t.Helper()

	s, err := sample.NewMono(data)
	if err != nil {
		t.Fatalf("sample.NewMono() error = %v", err)
	}
	return s
}

func mustGrain(t testing.TB, start, length float64, src Source, fadeTicks int) *Grain {
	t.Helper()

	g, err := NewGrain(start, length, src, fadeTicks)
	if err != nil {
		t.Fatalf("NewGrain() error = %v", err)
	}
	return g
}

func TestNewGrainValidation(t *testing.T) {
	src := mustSample(t, 1, 2, 3)

	tests := []struct {
		name   string
		start  float64
		length float64
		src    Source
		want   error
	}{
		{name: "nil source", start: 0, length: 4, src: nil, want: ErrNilSource},
		{name: "empty source", start: 0, length: 4, src: emptySource{}, want: ErrEmptySource},
		{name: "zero length", start: 0, length: 0, src: src},
		{name: "negative length", start: 0, length: -1, src: src},
		{name: "nan length", start: 0, length: math.NaN(), src: src},
		{name: "inf length", start: 0, length: math.Inf(1), src: src},
		{name: "negative start", start: -1, length: 4, src: src},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGrain(tt.start, tt.length, tt.src, 0)
			if err == nil {
				t.Fatal("NewGrain() expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("NewGrain() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGrainReadsSequentialIndicesThenWraps(t *testing.T) {
	g := mustGrain(t, 0, 4, mustSample(t, 1, 2, 3, 4), 0)

	want := []float64{1, 2, 3, 4, 1, 2}
	for i, w := range want {
		l, r := g.Output(1)
		if l != w || r != w {
			t.Fatalf("tick %d: got (%g, %g), want %g", i, l, r, w)
		}
		g.Step(1)
	}
}

func TestGrainStepKeepsCursorInRange(t *testing.T) {
	src := mustSample(t, 0, 1, 2, 3)

	tests := []struct {
		name   string
		length float64
		step   float64
	}{
		{"unit step", 4, 1},
		{"fractional step", 4, 0.3},
		{"step longer than grain", 4, 9.5},
		{"tiny step", 0.5, 1e-3},
		{"fractional length", 2.75, 1.1},
		{"reverse", 4, -0.7},
		{"reverse longer than grain", 3, -7.25},
		{"zero step", 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustGrain(t, 0, tt.length, src, 0)
			for i := range 10000 {
				g.Step(tt.step)
				pos := g.Position()
				if pos < 0 || pos >= tt.length {
					t.Fatalf("step %d: position %g outside [0, %g)", i, pos, tt.length)
				}
			}
		})
	}
}

func TestGrainStepWrapUsesModulus(t *testing.T) {
	g := mustGrain(t, 0, 4, mustSample(t, 0), 0)

	g.Step(3)
	g.Step(2.5)

	if got := g.Position(); got != 1.5 {
		t.Fatalf("Position() = %g, want 1.5", got)
	}
}

func TestGrainReverseStepWraps(t *testing.T) {
	src := mustSample(t, 1, 2, 3, 4)
	g := mustGrain(t, 0, 4, src, 0)

	var got []float64
	for range 6 {
		l, _ := g.Output(1)
		got = append(got, l)
		g.Step(-1)
	}

	want := []float64{1, 4, 3, 2, 1, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("reverse read = %v, want %v", got, want)
		}
	}
}

func TestGrainIndexWrapsAtSampleBoundary(t *testing.T) {
	src := mustSample(t, 0, 10, 20, 30)

	tests := []struct {
		start float64
		want  float64
	}{
		{0, 0},
		{3.9, 30},
		{4, 0},
		{5.5, 10},
		{1e6 + 2, 20},
	}

	for _, tt := range tests {
		g := mustGrain(t, tt.start, 1000, src, 0)

		l, r := g.Output(1)
		if l != tt.want || r != tt.want {
			t.Fatalf("start %g: got (%g, %g), want %g", tt.start, l, r, tt.want)
		}
	}
}

func TestGrainCrossBoundaryLoop(t *testing.T) {
	// A window that starts near the end of the source reads through the
	// sample end and continues from frame 0.
	g := mustGrain(t, 2, 4, mustSample(t, 0, 10, 20, 30), 0)

	want := []float64{20, 30, 0, 10, 20}
	for i, w := range want {
		l, _ := g.Output(1)
		if l != w {
			t.Fatalf("tick %d: got %g, want %g", i, l, w)
		}
		g.Step(1)
	}
}

func TestGrainWrapTriggersSmoothing(t *testing.T) {
	g := mustGrain(t, 0, 4, mustSample(t, 0, 1, 2, 3, 4, 5, 6, 7), 0)

	for range 4 {
		g.Output(0.5)
		g.Step(1)
	}

	// Held value 3 blends toward frame 0 at ramp 0.5.
	if l, _ := g.Output(0.5); l != 1.5 {
		t.Fatalf("first output after wrap = %g, want 1.5", l)
	}
	g.Step(1)

	if l, _ := g.Output(0.5); l != 1 {
		t.Fatalf("second output after wrap = %g, want 1", l)
	}
}

func TestGrainFadeReachesSilenceAfterFadeTicks(t *testing.T) {
	g := mustGrain(t, 0, 4, mustSample(t, 1, 1, 1, 1), DefaultFadeTicks)
	g.MarkForRemoval()

	prev := math.Inf(1)
	for i := 1; i < DefaultFadeTicks; i++ {
		l, r := g.Output(1)
		g.Step(1)

		if l <= 0 || l != r {
			t.Fatalf("call %d: got (%g, %g), want equal positive levels", i, l, r)
		}
		if l > prev {
			t.Fatalf("call %d: level rose from %g to %g", i, prev, l)
		}
		if g.State() != Fading {
			t.Fatalf("call %d: state = %v, want fading", i, g.State())
		}
		prev = l
	}

	l, r := g.Output(1)
	if l != 0 || r != 0 {
		t.Fatalf("final fade call: got (%g, %g), want silence", l, r)
	}
	if g.State() != Retired {
		t.Fatalf("state = %v, want retired", g.State())
	}
	if got := g.RemovalRamp(); got != 1 {
		t.Fatalf("RemovalRamp() = %g, want 1", got)
	}

	for i := range 50 {
		g.Step(1)
		if l, r := g.Output(1); l != 0 || r != 0 {
			t.Fatalf("retired call %d: got (%g, %g), want silence", i, l, r)
		}
	}
}

func TestGrainFadeAttenuation(t *testing.T) {
	g := mustGrain(t, 0, 4, mustSample(t, 0.8), 4)
	g.MarkForRemoval()

	want := []float64{0.6, 0.4, 0.2, 0}
	for i, w := range want {
		l, _ := g.Output(1)
		if math.Abs(l-w) > 1e-15 {
			t.Fatalf("call %d: got %g, want %g", i, l, w)
		}
	}
}

func TestGrainMarkForRemovalIsIdempotent(t *testing.T) {
	g := mustGrain(t, 0, 4, mustSample(t, 1), 10)

	g.MarkForRemoval()
	g.Output(1)
	g.Output(1)
	g.MarkForRemoval()

	if got := g.RemovalRamp(); math.Abs(got-0.2) > 1e-15 {
		t.Fatalf("RemovalRamp() = %g, want 0.2", got)
	}
	if g.State() != Fading {
		t.Fatalf("State() = %v, want fading", g.State())
	}
}

func TestGrainRetiredDoesNotStep(t *testing.T) {
	g := mustGrain(t, 0, 8, mustSample(t, 1), 1)
	g.Step(2)
	g.MarkForRemoval()
	g.Output(1)

	g.Step(3)
	if got := g.Position(); got != 2 {
		t.Fatalf("Position() = %g, want 2", got)
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		Active:   "active",
		Fading:   "fading",
		Retired:  "retired",
		State(9): "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Fatalf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}

type emptySource struct{}

func (emptySource) Len() int                  { return 0 }
func (emptySource) At(int) (float64, float64) { return 0, 0 }
