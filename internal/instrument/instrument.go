// Package instrument holds the user-selected state of one instrument and
// validates every change to it against the instrument's catalog entry.
//
// An Instrument is not safe for concurrent use; callers that share one
// across goroutines must serialize access themselves.
package instrument

import (
	"context"
	"fmt"
	"strings"

	"webbpsf/internal/sampling"
)

// Normalize returns the canonical form of an enumerated value.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Validate normalizes value and checks it against spec's allowed set for
// field. An empty value is returned as "" with no error.
func Validate(spec *Spec, field Field, value string) (string, error) {
	if spec == nil {
		return "", errNoSpec
	}
	canonical := Normalize(value)
	if canonical == "" {
		return "", nil
	}
	if !spec.Allowed(field).Contains(canonical) {
		return "", &ValidationError{
			Instrument: spec.Name,
			Field:      field,
			Value:      canonical,
			Kind:       ErrUnknownValue,
		}
	}
	return canonical, nil
}

var errNoSpec = fmt.Errorf("%w: instrument not created with New", ErrUnknownInstrument)

// Instrument must be obtained from New; its zero value rejects every change.
type Instrument struct {
	spec *Spec

	imageMask string
	pupilMask string
	filter    string
	detector  string

	// PupilOPD is passed through to the optical model untouched.
	PupilOPD any
}

// New returns an instrument of the named type with its default filter and
// detector selected and no masks.
func New(name string) (*Instrument, error) {
	spec, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return &Instrument{
		spec:     spec,
		filter:   spec.DefaultFilter,
		detector: spec.DefaultDetector,
	}, nil
}

func (in *Instrument) Name() string {
	if in.spec == nil {
		return ""
	}
	return in.spec.Name
}

func (in *Instrument) Spec() *Spec       { return in.spec }
func (in *Instrument) ImageMask() string { return in.imageMask }
func (in *Instrument) PupilMask() string { return in.pupilMask }
func (in *Instrument) Filter() string    { return in.filter }
func (in *Instrument) Detector() string  { return in.detector }

// SetImageMask selects an image-plane mask; "" removes it.
func (in *Instrument) SetImageMask(name string) error {
	v, err := Validate(in.spec, ImageMask, name)
	if err != nil {
		return err
	}
	in.imageMask = v
	return nil
}

// SetPupilMask selects a pupil-plane mask; "" removes it.
func (in *Instrument) SetPupilMask(name string) error {
	v, err := Validate(in.spec, PupilMask, name)
	if err != nil {
		return err
	}
	in.pupilMask = v
	return nil
}

func (in *Instrument) SetFilter(name string) error {
	v, err := Validate(in.spec, Filter, name)
	if err != nil {
		return err
	}
	if v == "" {
		return &ValidationError{Instrument: in.Name(), Field: Filter, Kind: ErrMissingValue}
	}
	in.filter = v
	return nil
}

func (in *Instrument) SetDetector(name string) error {
	v, err := Validate(in.spec, Detector, name)
	if err != nil {
		return err
	}
	if v == "" {
		return &ValidationError{Instrument: in.Name(), Field: Detector, Kind: ErrMissingValue}
	}
	in.detector = v
	return nil
}

// Snapshot is the validated state handed to the optical model.
type Snapshot struct {
	Instrument string
	Filter     string
	Detector   string
	ImageMask  string
	PupilMask  string
	PupilOPD   any
	Sampling   sampling.Factors
}

// Computer runs the optical propagation for a validated snapshot.
type Computer interface {
	ComputePSF(ctx context.Context, snap Snapshot) (any, error)
}

// CalcPSF checks req and, only if it is valid, asks c to compute a PSF
// for the current selection.
func (in *Instrument) CalcPSF(ctx context.Context, req sampling.Request, c Computer) (any, error) {
	if in.spec == nil {
		return nil, errNoSpec
	}
	factors, err := sampling.Resolve(req)
	if err != nil {
		return nil, err
	}
	return c.ComputePSF(ctx, in.Snapshot(factors))
}

func (in *Instrument) Snapshot(f sampling.Factors) Snapshot {
	return Snapshot{
		Instrument: in.Name(),
		Filter:     in.filter,
		Detector:   in.detector,
		ImageMask:  in.imageMask,
		PupilMask:  in.pupilMask,
		PupilOPD:   in.PupilOPD,
		Sampling:   f,
	}
}
