package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-grain/dsp/signal"
)

const envPrefix = "GRAIN_"

type config struct {
	out        string
	seconds    float64
	sampleRate int
	source     signal.Kind
	density    float64
	position   float64
	spray      float64
	length     float64
	pitch      float64
	maxGrains  int
	smooth     float64
	fadeMs     float64
	seed       int64
	release    float64
	play       bool
	envFile    string
}

// parseConfig reads flags from args. Flag defaults come from GRAIN_*
// variables looked up through getenv, so a .env file can set them.
func parseConfig(args []string, getenv func(string) string, output io.Writer) (*config, error) {
	d := envDefaults{getenv: getenv}

	cfg := &config{}
	var source string

	fs := flag.NewFlagSet("grainrender", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cfg.out, "out", d.getString("OUT", "grains.wav"), "output WAV path")
	fs.Float64Var(&cfg.seconds, "seconds", d.getFloat("SECONDS", 5), "render length in seconds")
	fs.IntVar(&cfg.sampleRate, "rate", d.getInt("RATE", 48000), "sample rate in Hz")
	fs.StringVar(&source, "source", d.getString("SOURCE", "saw"), "source signal: sine, saw, noise or sweep")
	fs.Float64Var(&cfg.density, "density", d.getFloat("DENSITY", 20), "grains started per second")
	fs.Float64Var(&cfg.position, "position", d.getFloat("POSITION", 0.25), "normalized start position in the source [0, 1]")
	fs.Float64Var(&cfg.spray, "spray", d.getFloat("SPRAY", 0.2), "random start jitter relative to grain length [0, 1]")
	fs.Float64Var(&cfg.length, "length", d.getFloat("LENGTH", 0.12), "grain loop length in seconds")
	fs.Float64Var(&cfg.pitch, "pitch", d.getFloat("PITCH", 1), "playback ratio")
	fs.IntVar(&cfg.maxGrains, "max-grains", d.getInt("MAX_GRAINS", 16), "voice budget")
	fs.Float64Var(&cfg.smooth, "smooth", d.getFloat("SMOOTH", 0.01), "declick ramp increment per sample (0, 1]")
	fs.Float64Var(&cfg.fadeMs, "fade-ms", d.getFloat("FADE_MS", 0), "removal fade in milliseconds, 0 keeps 100 samples")
	fs.Int64Var(&cfg.seed, "seed", d.getInt64("SEED", 1), "random seed for spray and noise")
	fs.Float64Var(&cfg.release, "release", d.getFloat("RELEASE", 0.5), "release all grains this many seconds before the end")
	fs.BoolVar(&cfg.play, "play", d.getBool("PLAY", false), "also play the cloud on the audio device")
	fs.StringVar(&cfg.envFile, "env", ".env", "environment file with GRAIN_* defaults")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if d.err != nil {
		return nil, d.err
	}

	kind, err := signal.ParseKind(source)
	if err != nil {
		return nil, err
	}
	cfg.source = kind

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *config) validate() error {
	if c.out == "" {
		return fmt.Errorf("out path must not be empty")
	}
	if c.seconds <= 0 {
		return fmt.Errorf("seconds must be > 0: %f", c.seconds)
	}
	if c.sampleRate <= 0 {
		return fmt.Errorf("rate must be > 0: %d", c.sampleRate)
	}
	if c.fadeMs < 0 {
		return fmt.Errorf("fade-ms must be >= 0: %f", c.fadeMs)
	}
	if c.release < 0 || c.release > c.seconds {
		return fmt.Errorf("release must be in [0, seconds]: %f", c.release)
	}
	return nil
}

// envDefaults remembers the first malformed variable so parseConfig can
// report it after all flags are declared.
type envDefaults struct {
	getenv func(string) string
	err    error
}

func (d *envDefaults) lookup(key string) string {
	if d.getenv == nil {
		return ""
	}
	return d.getenv(envPrefix + key)
}

func (d *envDefaults) fail(key, v string, err error) {
	if d.err == nil {
		d.err = fmt.Errorf("%s%s=%q: %w", envPrefix, key, v, err)
	}
}

func (d *envDefaults) getString(key, def string) string {
	if v := d.lookup(key); v != "" {
		return v
	}
	return def
}

func (d *envDefaults) getFloat(key string, def float64) float64 {
	v := d.lookup(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		d.fail(key, v, err)
		return def
	}
	return f
}

func (d *envDefaults) getInt(key string, def int) int {
	v := d.lookup(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		d.fail(key, v, err)
		return def
	}
	return i
}

func (d *envDefaults) getInt64(key string, def int64) int64 {
	v := d.lookup(key)
	if v == "" {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		d.fail(key, v, err)
		return def
	}
	return i
}

func (d *envDefaults) getBool(key string, def bool) bool {
	v := d.lookup(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		d.fail(key, v, err)
		return def
	}
	return b
}

// envFileFromArgs finds the -env value before flags are parsed, since the
// file supplies the flag defaults.
func envFileFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		for _, name := range []string{"-env", "--env"} {
			if arg == name && i+1 < len(args) {
				return args[i+1]
			}
			if v, ok := strings.CutPrefix(arg, name+"="); ok {
				return v
			}
		}
	}
	return ".env"
}
