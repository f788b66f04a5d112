package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput reports structurally unusable input, such as sequences of different length.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSmoothingFailure reports that the smoothing filter cannot run with the given
	// parameters. Callers fall back to the unsmoothed series.
	ErrSmoothingFailure = errors.New("smoothing failed")
)

// SmoothingError describes why a smoothing request was rejected.
// WindowLength is the value after normalization.
type SmoothingError struct {
	Samples      int
	WindowLength int
	PolyDegree   int
	Reason       string
}

func (e *SmoothingError) Error() string {
	return fmt.Sprintf("smoothing failed: %s (samples=%d, window=%d, degree=%d)",
		e.Reason, e.Samples, e.WindowLength, e.PolyDegree)
}

func (e *SmoothingError) Unwrap() error { return ErrSmoothingFailure }

func checkSameLength(names string, lens ...int) error {
	for _, n := range lens[1:] {
		if n != lens[0] {
			return fmt.Errorf("%w: %s have different lengths %v", ErrInvalidInput, names, lens)
		}
	}
	return nil
}
