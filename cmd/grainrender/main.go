// Command grainrender renders a granular cloud over a generated source to a
// stereo WAV file and prints level and click measurements per channel.
//
// Usage:
//
//	grainrender [flags]
//
// Every flag defaults to a GRAIN_* environment variable (for example
// GRAIN_DENSITY for -density), which may be set in the file named by -env.
//
// Examples:
//
//	grainrender -source noise -density 60 -spray 0.8 -out noise.wav
//	grainrender -source sine -length 0.013 -smooth 0.005 -seconds 3
//	grainrender -pitch 0.5 -max-grains 4 -play
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ossrs/go-oryx-lib/errors"
	"github.com/ossrs/go-oryx-lib/logger"

	"github.com/cwbudde/algo-grain/dsp/granular"
	"github.com/cwbudde/algo-grain/internal/playback"
)

func main() {
	ctx := logger.WithContext(context.Background())

	if err := doMain(ctx, os.Args[1:]); err != nil {
		logger.Ef(ctx, "run err %+v", err)
		os.Exit(1)
	}

	logger.Tf(ctx, "run ok")
}

func doMain(ctx context.Context, args []string) error {
	envFile := envFileFromArgs(args)
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "load %v", envFile)
	}

	cfg, err := parseConfig(args, os.Getenv, os.Stderr)
	if err != nil {
		return errors.Wrapf(err, "parse flags")
	}
	logger.Tf(ctx, "config source=%v, rate=%v, seconds=%v, density=%v, position=%v, spray=%v, length=%vs, "+
		"pitch=%v, max-grains=%v, smooth=%v, fade-ms=%v, seed=%v, release=%vs",
		cfg.source, cfg.sampleRate, cfg.seconds, cfg.density, cfg.position, cfg.spray, cfg.length,
		cfg.pitch, cfg.maxGrains, cfg.smooth, cfg.fadeMs, cfg.seed, cfg.release,
	)

	src, err := buildSource(cfg)
	if err != nil {
		return errors.Wrapf(err, "build %v source", cfg.source)
	}

	cloud, err := buildCloud(cfg, src)
	if err != nil {
		return errors.Wrapf(err, "create cloud")
	}

	frames, releaseAt := framesFor(cfg)
	renderStart := time.Now()
	left, right, err := renderCloud(cloud, frames, releaseAt)
	if err != nil {
		return errors.Wrapf(err, "render")
	}
	logger.Tf(ctx, "render ok, frames=%v, release=%v, grains=%v, cost=%v",
		frames, releaseAt, cloud.Grains(), time.Since(renderStart))

	if err := writeWAV(cfg.out, toIntBuffer(left, right, cfg.sampleRate)); err != nil {
		return errors.Wrapf(err, "write %v", cfg.out)
	}
	logger.Tf(ctx, "write wav ok, file=%v", cfg.out)

	if err := printReport(os.Stdout, cfg.sampleRate, map[string][]float64{"left": left, "right": right}); err != nil {
		return errors.Wrapf(err, "print report")
	}

	if !cfg.play {
		return nil
	}

	live, err := buildCloud(cfg, src)
	if err != nil {
		return errors.Wrapf(err, "create live cloud")
	}
	return play(ctx, cfg, live)
}

func play(ctx context.Context, cfg *config, cloud *granular.Cloud) error {
	stream, err := playback.NewStream(cloud)
	if err != nil {
		return errors.Wrapf(err, "create stream")
	}

	device, err := playback.Open(cfg.sampleRate, stream, 50*time.Millisecond)
	if err != nil {
		return errors.Wrapf(err, "open audio device")
	}
	defer func() {
		if err := device.Close(); err != nil {
			logger.Wf(ctx, "ignore close device err %v", err)
		}
	}()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer signal.Stop(sc)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case s := <-sc:
			logger.Tf(ctx, "Got signal %v, release grains", s)
			cancel()
		case <-ctx.Done():
		}
	}()

	device.Start()
	logger.Tf(ctx, "play started, rate=%v", cfg.sampleRate)

	hold := time.Duration((cfg.seconds - cfg.release) * float64(time.Second))
	select {
	case <-ctx.Done():
	case <-time.After(hold):
	}

	if err := stream.Do(func(c *granular.Cloud) error {
		c.Release()
		return nil
	}); err != nil {
		return errors.Wrapf(err, "release")
	}

	// Wait for the fade, bounded so a stalled device cannot hang the command.
	deadline := time.After(time.Duration(cfg.release*float64(time.Second)) + time.Second)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for !stream.Idle() {
		select {
		case <-deadline:
			logger.Wf(ctx, "play stopped before fade finished, frames=%v", stream.Frames())
			return nil
		case <-ticker.C:
		}
	}
	logger.Tf(ctx, "play done, frames=%v", stream.Frames())

	return nil
}
