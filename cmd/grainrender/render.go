package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-grain/dsp/granular"
	"github.com/cwbudde/algo-grain/dsp/sample"
	"github.com/cwbudde/algo-grain/dsp/signal"
	"github.com/cwbudde/algo-grain/measure/analysis"
)

const (
	sourceFreqHz    = 110.0
	sourceAmplitude = 0.5
	sourceSeconds   = 2.0
	blockSize       = 512
)

func buildSource(cfg *config) (*sample.Sample, error) {
	gen := signal.NewGenerator(signal.WithSampleRate(float64(cfg.sampleRate)), signal.WithSeed(cfg.seed))
	return gen.Stereo(cfg.source, sourceFreqHz, sourceAmplitude, sourceSeconds)
}

func buildCloud(cfg *config, src *sample.Sample) (*granular.Cloud, error) {
	opts := []granular.Option{
		granular.WithSampleRate(float64(cfg.sampleRate)),
		granular.WithDensity(cfg.density),
		granular.WithPosition(cfg.position),
		granular.WithSpray(cfg.spray),
		granular.WithGrainLength(cfg.length),
		granular.WithPitch(cfg.pitch),
		granular.WithMaxGrains(cfg.maxGrains),
		granular.WithSmoothRate(cfg.smooth),
		granular.WithSeed(cfg.seed),
	}
	if cfg.fadeMs > 0 {
		ticks := int(math.Max(1, math.Round(cfg.fadeMs/1000*float64(cfg.sampleRate))))
		opts = append(opts, granular.WithFadeTicks(ticks))
	}
	return granular.NewCloud(src, opts...)
}

// renderCloud runs the cloud for frames ticks and releases it at releaseAt.
func renderCloud(cloud *granular.Cloud, frames, releaseAt int) (left, right []float64, err error) {
	left = make([]float64, frames)
	right = make([]float64, frames)

	for off := 0; off < frames; {
		if off == releaseAt {
			cloud.Release()
		}

		end := min(off+blockSize, frames)
		if off < releaseAt && releaseAt < end {
			end = releaseAt
		}

		if err := cloud.ProcessBlock(left[off:end], right[off:end]); err != nil {
			return nil, nil, err
		}
		off = end
	}

	return left, right, nil
}

func framesFor(cfg *config) (frames, releaseAt int) {
	frames = int(math.Round(cfg.seconds * float64(cfg.sampleRate)))
	releaseAt = frames - int(math.Round(cfg.release*float64(cfg.sampleRate)))
	return frames, max(0, releaseAt)
}

// toIntBuffer interleaves left and right as clamped 16-bit PCM.
func toIntBuffer(left, right []float64, sampleRate int) *audio.IntBuffer {
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, 2*len(left)),
		SourceBitDepth: 16,
	}
	for i := range left {
		buf.Data[2*i] = toPCM16(left[i])
		buf.Data[2*i+1] = toPCM16(right[i])
	}
	return buf
}

func toPCM16(v float64) int {
	v = math.Max(-1, math.Min(1, v))
	return int(math.Round(v * 32767))
}

func writeWAV(path string, buf *audio.IntBuffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, buf.Format.SampleRate, 16, buf.Format.NumChannels, 1)
	if err := enc.Write(buf); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}

	return f.Close()
}

func printReport(w io.Writer, sampleRate int, channels map[string][]float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Channel\tFrames\tDuration\tPeak [dBFS]\tRMS [dBFS]\tMax Step\tCentroid [Hz]\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tw, "-------\t------\t--------\t-----------\t----------\t--------\t-------------\n"); err != nil {
		return err
	}

	for _, name := range []string{"left", "right"} {
		data, ok := channels[name]
		if !ok {
			continue
		}

		r, err := analysis.Analyze(data, analysis.Config{SampleRate: float64(sampleRate)})
		if err != nil {
			return fmt.Errorf("analyze %s: %w", name, err)
		}

		duration := time.Duration(float64(r.Frames) / float64(sampleRate) * float64(time.Second))
		if _, err := fmt.Fprintf(tw, "%s\t%d\t%v\t%.2f\t%.2f\t%.4f\t%.1f\n",
			name,
			r.Frames,
			duration.Round(time.Millisecond),
			r.PeakDB(),
			r.RMSDB(),
			r.MaxStep,
			r.CentroidHz,
		); err != nil {
			return err
		}
	}

	return tw.Flush()
}
