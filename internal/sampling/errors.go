package sampling

import (
	"errors"
	"fmt"
)

var (
	ErrConflict      = errors.New("conflicting oversampling arguments")
	ErrInvalidFactor = errors.New("invalid oversampling factor")
)

// ConflictError reports oversample given together with one of the
// finer-grained factors. The message prefix "You cannot specify" is stable.
type ConflictError struct {
	Oversample         int
	DetectorOversample int
	FFTOversample      int
}

func (e *ConflictError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf(
		"You cannot specify both the oversample option and either detector_oversample or fft_oversample (got oversample=%d, detector_oversample=%d, fft_oversample=%d)",
		e.Oversample, e.DetectorOversample, e.FFTOversample,
	)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

type FactorError struct {
	Name  string
	Value int
}

func (e *FactorError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s must be a positive integer, got %d", e.Name, e.Value)
}

func (e *FactorError) Unwrap() error { return ErrInvalidFactor }
