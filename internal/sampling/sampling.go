// Package sampling checks oversampling arguments supplied to a PSF
// calculation and turns them into effective detector and FFT factors.
package sampling

// Request holds the oversampling arguments of one calculation. Zero means
// the argument was not given.
type Request struct {
	Oversample         int
	DetectorOversample int
	FFTOversample      int
}

// Factors are the effective sampling factors handed to the optical model.
type Factors struct {
	Detector int
	FFT      int
}

// Resolve validates r and returns the effective factors. Oversample is
// shorthand for both other factors, so it may not be combined with either.
func Resolve(r Request) (Factors, error) {
	// Any non-zero value counts as given, so a conflict is reported before
	// the sign of the individual factors is looked at.
	if r.Oversample != 0 && (r.DetectorOversample != 0 || r.FFTOversample != 0) {
		return Factors{}, &ConflictError{
			Oversample:         r.Oversample,
			DetectorOversample: r.DetectorOversample,
			FFTOversample:      r.FFTOversample,
		}
	}
	if err := checkFactor("oversample", r.Oversample); err != nil {
		return Factors{}, err
	}
	if err := checkFactor("detector_oversample", r.DetectorOversample); err != nil {
		return Factors{}, err
	}
	if err := checkFactor("fft_oversample", r.FFTOversample); err != nil {
		return Factors{}, err
	}

	if r.Oversample > 0 {
		return Factors{Detector: r.Oversample, FFT: r.Oversample}, nil
	}

	f := Factors{Detector: 1, FFT: 1}
	if r.DetectorOversample > 0 {
		f.Detector = r.DetectorOversample
	}
	if r.FFTOversample > 0 {
		f.FFT = r.FFTOversample
	}
	return f, nil
}

func checkFactor(name string, v int) error {
	if v < 0 {
		return &FactorError{Name: name, Value: v}
	}
	return nil
}
