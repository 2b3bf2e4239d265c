package analysis

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

const defaultFFTSize = 2048

// Config holds analysis parameters.
type Config struct {
	SampleRate float64
	// FFTSize is the centroid frame length; it must be a power of two.
	// Zero selects 2048.
	FFTSize int
}

// Report holds the measurements for one channel.
type Report struct {
	Frames       int
	Peak         float64
	RMS          float64
	MaxStep      float64
	MaxStepIndex int
	CentroidHz   float64
}

// PeakDB returns the peak level in dBFS.
func (r Report) PeakDB() float64 { return toDB(r.Peak) }

// RMSDB returns the RMS level in dBFS.
func (r Report) RMSDB() float64 { return toDB(r.RMS) }

// Analyze measures samples. Empty input yields a zero Report.
func Analyze(samples []float64, cfg Config) (Report, error) {
	if cfg.SampleRate <= 0 || math.IsNaN(cfg.SampleRate) || math.IsInf(cfg.SampleRate, 0) {
		return Report{}, fmt.Errorf("analysis sample rate must be > 0: %f", cfg.SampleRate)
	}
	if cfg.FFTSize == 0 {
		cfg.FFTSize = defaultFFTSize
	}
	if cfg.FFTSize < 2 || cfg.FFTSize&(cfg.FFTSize-1) != 0 {
		return Report{}, fmt.Errorf("analysis fft size must be a power of two >= 2: %d", cfg.FFTSize)
	}

	rep := Report{Frames: len(samples)}
	if len(samples) == 0 {
		return rep, nil
	}

	squares := make([]float64, len(samples))
	vecmath.MulBlock(squares, samples, samples)

	var energy float64
	for i, sq := range squares {
		energy += sq
		if a := math.Abs(samples[i]); a > rep.Peak {
			rep.Peak = a
		}
		if i > 0 {
			if d := math.Abs(samples[i] - samples[i-1]); d > rep.MaxStep {
				rep.MaxStep = d
				rep.MaxStepIndex = i
			}
		}
	}
	rep.RMS = math.Sqrt(energy / float64(len(samples)))

	centroid, err := spectralCentroid(samples, cfg)
	if err != nil {
		return Report{}, err
	}
	rep.CentroidHz = centroid

	return rep, nil
}

// spectralCentroid averages Hann-windowed magnitude spectra over frames with
// 50% overlap and returns their amplitude-weighted mean frequency.
func spectralCentroid(samples []float64, cfg Config) (float64, error) {
	n := cfg.FFTSize

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return 0, fmt.Errorf("analysis: failed to create FFT plan: %w", err)
	}

	win := hann(n)
	frame := make([]float64, n)
	in := make([]complex128, n)
	out := make([]complex128, n)

	bins := n/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	mag := make([]float64, bins)
	avg := make([]float64, bins)

	hop := n / 2
	for off := 0; ; off += hop {
		clear(frame)
		copy(frame, samples[off:min(off+n, len(samples))])
		vecmath.MulBlockInPlace(frame, win)

		for i, v := range frame {
			in[i] = complex(v, 0)
		}
		if err := plan.Forward(out, in); err != nil {
			return 0, fmt.Errorf("analysis: forward FFT: %w", err)
		}

		for k := range bins {
			re[k] = real(out[k])
			im[k] = imag(out[k])
		}
		vecmath.Magnitude(mag, re, im)
		vecmath.AddBlockInPlace(avg, mag)

		if off+n >= len(samples) {
			break
		}
	}

	var weighted, total float64
	binHz := cfg.SampleRate / float64(n)
	for k, m := range avg {
		weighted += float64(k) * binHz * m
		total += m
	}
	if total == 0 {
		return 0, nil
	}

	return weighted / total, nil
}

func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n)))
	}
	return w
}

func toDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}
