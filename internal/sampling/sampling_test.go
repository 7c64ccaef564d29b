package sampling

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRejectsOversampleWithOtherFactors(t *testing.T) {
	cases := []Request{
		{Oversample: 2, DetectorOversample: 10, FFTOversample: 4},
		{Oversample: 2, DetectorOversample: 10},
		{Oversample: 2, FFTOversample: 4},
		{Oversample: 1, DetectorOversample: 1},
		{Oversample: 2, DetectorOversample: -1},
		{Oversample: -3, FFTOversample: 4},
	}
	for _, req := range cases {
		_, err := Resolve(req)
		require.Error(t, err, "request %+v", req)
		assert.True(t, strings.HasPrefix(err.Error(), "You cannot specify"), "message %q", err.Error())
		assert.True(t, errors.Is(err, ErrConflict))

		var ce *ConflictError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, req.Oversample, ce.Oversample)
	}
}

func TestResolveEffectiveFactors(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want Factors
	}{
		{name: "nothing given", req: Request{}, want: Factors{Detector: 1, FFT: 1}},
		{name: "oversample implies both", req: Request{Oversample: 4}, want: Factors{Detector: 4, FFT: 4}},
		{name: "detector only", req: Request{DetectorOversample: 3}, want: Factors{Detector: 3, FFT: 1}},
		{name: "fft only", req: Request{FFTOversample: 5}, want: Factors{Detector: 1, FFT: 5}},
		{name: "detector and fft", req: Request{DetectorOversample: 2, FFTOversample: 8}, want: Factors{Detector: 2, FFT: 8}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(tc.req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveRejectsNegativeFactor(t *testing.T) {
	_, err := Resolve(Request{FFTOversample: -2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidFactor))
	assert.EqualError(t, err, "fft_oversample must be a positive integer, got -2")
}

func TestResolveNegativeOversampleAlone(t *testing.T) {
	_, err := Resolve(Request{Oversample: -1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidFactor))
	assert.False(t, errors.Is(err, ErrConflict))
}
