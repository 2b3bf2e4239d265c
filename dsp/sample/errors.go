package sample

import "errors"

var (
	// ErrEmpty is returned when a sample would contain no frames.
	ErrEmpty = errors.New("sample must contain at least one frame")
	// ErrChannelMismatch is returned when left and right lengths differ.
	ErrChannelMismatch = errors.New("left and right channels must have the same length")
	// ErrChannels is returned for unsupported channel counts.
	ErrChannels = errors.New("channel count must be 1 or 2")
)
