package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-grain/dsp/signal"
)

func mapEnv(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := parseConfig(nil, mapEnv(nil), io.Discard)
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}

	if cfg.out != "grains.wav" || cfg.sampleRate != 48000 || cfg.source != signal.KindSaw || cfg.maxGrains != 16 {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestParseConfigEnvAndFlags(t *testing.T) {
	env := mapEnv(map[string]string{
		"GRAIN_DENSITY":    "80",
		"GRAIN_SOURCE":     "noise",
		"GRAIN_MAX_GRAINS": "4",
		"GRAIN_PLAY":       "false",
	})

	cfg, err := parseConfig([]string{"-density", "12", "-seed", "7"}, env, io.Discard)
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}

	if cfg.density != 12 {
		t.Errorf("density = %g, flag should override env", cfg.density)
	}
	if cfg.source != signal.KindNoise {
		t.Errorf("source = %v, want noise", cfg.source)
	}
	if cfg.maxGrains != 4 {
		t.Errorf("maxGrains = %d, want 4", cfg.maxGrains)
	}
	if cfg.seed != 7 {
		t.Errorf("seed = %d, want 7", cfg.seed)
	}
}

func TestParseConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{name: "bad env", env: map[string]string{"GRAIN_RATE": "fast"}},
		{name: "bad source", args: []string{"-source", "organ"}},
		{name: "zero seconds", args: []string{"-seconds", "0"}},
		{name: "release too long", args: []string{"-seconds", "1", "-release", "2"}},
		{name: "negative fade", args: []string{"-fade-ms", "-1"}},
		{name: "unknown flag", args: []string{"-loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseConfig(tt.args, mapEnv(tt.env), io.Discard); err == nil {
				t.Fatal("parseConfig() expected error")
			}
		})
	}
}

func TestEnvFileFromArgs(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{nil, ".env"},
		{[]string{"-env", "a.env"}, "a.env"},
		{[]string{"-density", "3", "--env=b.env"}, "b.env"},
		{[]string{"--", "-env", "c.env"}, ".env"},
	}

	for _, tt := range tests {
		if got := envFileFromArgs(tt.args); got != tt.want {
			t.Errorf("envFileFromArgs(%q) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestRenderReleasesBeforeEnd(t *testing.T) {
	cfg, err := parseConfig([]string{
		"-rate", "8000", "-seconds", "1", "-release", "0.25", "-fade-ms", "10", "-source", "noise",
	}, mapEnv(nil), io.Discard)
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}

	src, err := buildSource(cfg)
	if err != nil {
		t.Fatalf("buildSource() error = %v", err)
	}
	cloud, err := buildCloud(cfg, src)
	if err != nil {
		t.Fatalf("buildCloud() error = %v", err)
	}

	frames, releaseAt := framesFor(cfg)
	if frames != 8000 || releaseAt != 6000 {
		t.Fatalf("framesFor() = %d, %d, want 8000, 6000", frames, releaseAt)
	}

	left, right, err := renderCloud(cloud, frames, releaseAt)
	if err != nil {
		t.Fatalf("renderCloud() error = %v", err)
	}
	if len(left) != frames || len(right) != frames {
		t.Fatalf("rendered %d/%d frames, want %d", len(left), len(right), frames)
	}

	if cloud.Running() || cloud.Grains() != 0 {
		t.Fatalf("cloud running=%v grains=%d after release", cloud.Running(), cloud.Grains())
	}

	// 10 ms fade at 8 kHz: silent from releaseAt+80 on.
	for i := releaseAt + 80; i < frames; i++ {
		if left[i] != 0 || right[i] != 0 {
			t.Fatalf("frame %d not silent: (%g, %g)", i, left[i], right[i])
		}
	}

	var audible bool
	for _, v := range left[:releaseAt] {
		if v != 0 {
			audible = true
			break
		}
	}
	if !audible {
		t.Fatal("no output before release")
	}
}

func TestToPCM16(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{1, 32767},
		{-1, -32767},
		{2, 32767},
		{-3, -32767},
		{0.5, 16384},
	}

	for _, tt := range tests {
		if got := toPCM16(tt.in); got != tt.want {
			t.Errorf("toPCM16(%g) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestWriteWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	left := []float64{0, 0.5, -0.5, 1}
	right := []float64{1, -1, 0.25, 0}

	if err := writeWAV(path, toIntBuffer(left, right, 8000)); err != nil {
		t.Fatalf("writeWAV() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer() error = %v", err)
	}

	if dec.SampleRate != 8000 || dec.NumChans != 2 || dec.BitDepth != 16 {
		t.Fatalf("header = rate %d chans %d depth %d", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}

	want := []int{0, 32767, 16384, -32767, -16384, 8192, 32767, 0}
	if len(buf.Data) != len(want) {
		t.Fatalf("decoded %d values, want %d", len(buf.Data), len(want))
	}
	for i := range want {
		if buf.Data[i] != want[i] {
			t.Fatalf("value %d = %d, want %d", i, buf.Data[i], want[i])
		}
	}
}

func TestPrintReport(t *testing.T) {
	gen := signal.NewGenerator(signal.WithSampleRate(8000))
	sine, err := gen.Sine(1000, 0.5, 4096)
	if err != nil {
		t.Fatalf("Sine() error = %v", err)
	}

	var out bytes.Buffer
	if err := printReport(&out, 8000, map[string][]float64{"left": sine, "right": sine}); err != nil {
		t.Fatalf("printReport() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("report has %d lines, want 4:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[2], "left") || !strings.HasPrefix(lines[3], "right") {
		t.Fatalf("unexpected rows:\n%s", out.String())
	}
}
