package grain

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNilSource is returned when a grain is created without a source.
	ErrNilSource = errors.New("grain source must not be nil")
	// ErrEmptySource is returned when the source holds no frames.
	ErrEmptySource = errors.New("grain source must contain at least one frame")
)

func validateGrain(start, length float64, src Source) error {
	if src == nil {
		return ErrNilSource
	}
	if src.Len() <= 0 {
		return fmt.Errorf("%w: len=%d", ErrEmptySource, src.Len())
	}
	if length <= 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		return fmt.Errorf("grain length must be > 0 and finite: %f", length)
	}
	if start < 0 || math.IsNaN(start) || math.IsInf(start, 0) {
		return fmt.Errorf("grain start must be >= 0 and finite: %f", start)
	}
	return nil
}
