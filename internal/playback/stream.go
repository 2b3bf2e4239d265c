package playback

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"

	"github.com/cwbudde/algo-grain/dsp/granular"
)

const (
	// Channels is the number of interleaved output channels.
	Channels = 2
	// FrameBytes is the size of one interleaved float32 frame.
	FrameBytes = Channels * 4
)

// ErrNilCloud is returned when a stream is created without a cloud.
var ErrNilCloud = errors.New("playback: nil cloud")

// Stream adapts a granular.Cloud to io.Reader.
type Stream struct {
	mu     sync.Mutex
	cloud  *granular.Cloud
	left   []float64
	right  []float64
	frames int64
}

// NewStream wraps cloud. The stream owns rendering; control the cloud
// through Do while the stream is being read.
func NewStream(cloud *granular.Cloud) (*Stream, error) {
	if cloud == nil {
		return nil, ErrNilCloud
	}
	return &Stream{cloud: cloud}, nil
}

// Read fills p with whole frames. A buffer shorter than one frame yields
// io.ErrShortBuffer.
func (s *Stream) Read(p []byte) (int, error) {
	frames := len(p) / FrameBytes
	if frames == 0 {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.ErrShortBuffer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.left = ensureLen(s.left, frames)
	s.right = ensureLen(s.right, frames)

	if err := s.cloud.ProcessBlock(s.left, s.right); err != nil {
		return 0, err
	}

	for i := range frames {
		off := i * FrameBytes
		binary.LittleEndian.PutUint32(p[off:], math.Float32bits(float32(s.left[i])))
		binary.LittleEndian.PutUint32(p[off+4:], math.Float32bits(float32(s.right[i])))
	}
	s.frames += int64(frames)

	return frames * FrameBytes, nil
}

// Do runs fn with exclusive access to the cloud.
func (s *Stream) Do(fn func(*granular.Cloud) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.cloud)
}

// Frames returns how many frames have been rendered.
func (s *Stream) Frames() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Idle reports whether the cloud is released and holds no grains.
func (s *Stream) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.cloud.Running() && s.cloud.Grains() == 0
}

func ensureLen(buf []float64, n int) []float64 {
	if cap(buf) < n {
		return make([]float64, n)
	}
	return buf[:n]
}
