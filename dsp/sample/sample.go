package sample

import (
	"fmt"
	"math"

	"github.com/go-audio/audio"
)

// Sample is a read-only stereo buffer addressed by frame index.
type Sample struct {
	left  []float64
	right []float64
}

// New returns a stereo sample holding copies of left and right.
func New(left, right []float64) (*Sample, error) {
	if len(left) != len(right) {
		return nil, fmt.Errorf("%w: left=%d right=%d", ErrChannelMismatch, len(left), len(right))
	}
	if len(left) == 0 {
		return nil, ErrEmpty
	}

	s := &Sample{
		left:  make([]float64, len(left)),
		right: make([]float64, len(right)),
	}
	copy(s.left, left)
	copy(s.right, right)

	return s, nil
}

// NewMono returns a sample whose two channels both read data.
func NewMono(data []float64) (*Sample, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	mono := make([]float64, len(data))
	copy(mono, data)

	return &Sample{left: mono, right: mono}, nil
}

// FromInterleaved builds a sample from interleaved frames with the given
// channel count (1 or 2). Trailing values that do not form a whole frame are
// ignored.
func FromInterleaved(data []float64, channels int) (*Sample, error) {
	switch channels {
	case 1:
		return NewMono(data)
	case 2:
	default:
		return nil, fmt.Errorf("%w: %d", ErrChannels, channels)
	}

	frames := len(data) / 2
	if frames == 0 {
		return nil, ErrEmpty
	}

	s := &Sample{
		left:  make([]float64, frames),
		right: make([]float64, frames),
	}
	for i := range frames {
		s.left[i] = data[2*i]
		s.right[i] = data[2*i+1]
	}

	return s, nil
}

// FromIntBuffer converts decoded integer PCM into a sample scaled to [-1, 1].
// Mono buffers are duplicated to both channels; buffers with more than two
// channels keep the first two.
func FromIntBuffer(buf *audio.IntBuffer) (*Sample, error) {
	if buf == nil || buf.Format == nil {
		return nil, fmt.Errorf("int buffer must have a format")
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrChannels, channels)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := 1 / math.Pow(2, float64(bitDepth-1))

	frames := len(buf.Data) / channels
	if frames == 0 {
		return nil, ErrEmpty
	}

	left := make([]float64, frames)
	right := left
	if channels > 1 {
		right = make([]float64, frames)
	}

	for i := range frames {
		base := i * channels
		left[i] = float64(buf.Data[base]) * scale
		if channels > 1 {
			right[i] = float64(buf.Data[base+1]) * scale
		}
	}

	return &Sample{left: left, right: right}, nil
}

// Len returns the number of frames. It is always > 0.
func (s *Sample) Len() int { return len(s.left) }

// At returns the frame at index i. i must be in [0, Len()).
func (s *Sample) At(i int) (float64, float64) {
	return s.left[i], s.right[i]
}

// Left returns the left channel. Callers must not modify it.
func (s *Sample) Left() []float64 { return s.left }

// Right returns the right channel. Callers must not modify it.
func (s *Sample) Right() []float64 { return s.right }

// Duration returns the sample length in seconds at sampleRate.
func (s *Sample) Duration(sampleRate float64) float64 {
	if sampleRate <= 0 {
		return 0
	}

	return float64(len(s.left)) / sampleRate
}
