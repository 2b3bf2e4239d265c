//go:build headless

package playback

import (
	"fmt"
	"time"
)

type Device struct {
	started bool
}

func Open(sampleRate int, stream *Stream, bufferSize time.Duration) (*Device, error) {
	if stream == nil {
		return nil, ErrNilCloud
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("playback sample rate must be > 0: %d", sampleRate)
	}
	return &Device{}, nil
}

func (d *Device) Start() {
	d.started = true
}

func (d *Device) IsStarted() bool {
	return d.started
}

func (d *Device) Close() error {
	d.started = false
	return nil
}
