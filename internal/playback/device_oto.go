//go:build !headless

package playback

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Device plays a Stream on the default audio output.
type Device struct {
	ctx     *oto.Context
	player  *oto.Player
	started bool
	mutex   sync.Mutex
}

// Open creates the audio context and a player reading from stream.
// bufferSize of zero lets the driver choose.
func Open(sampleRate int, stream *Stream, bufferSize time.Duration) (*Device, error) {
	if stream == nil {
		return nil, ErrNilCloud
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("playback sample rate must be > 0: %d", sampleRate)
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferSize,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("playback: open audio context: %w", err)
	}
	<-ready

	return &Device{
		ctx:    ctx,
		player: ctx.NewPlayer(stream),
	}, nil
}

// Start begins pulling audio from the stream.
func (d *Device) Start() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if !d.started && d.player != nil {
		d.player.Play()
		d.started = true
	}
}

// IsStarted reports whether Start has been called.
func (d *Device) IsStarted() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.started
}

// Close stops playback and releases the player.
func (d *Device) Close() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.started = false
	if d.player == nil {
		return nil
	}

	err := d.player.Close()
	d.player = nil

	return err
}
