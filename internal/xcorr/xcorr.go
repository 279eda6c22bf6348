// Package xcorr implements the coefficient-normalized cross-correlation used
// by the match-filter engine, plus the per-channel delay alignment applied
// before correlation.
package xcorr

import (
	"errors"
	"math"
)

var (
	// ErrEmptyTemplate indicates a nil or zero-length template buffer
	ErrEmptyTemplate = errors.New("template buffer is empty")
	// ErrEmptyImage indicates a nil or zero-length image buffer
	ErrEmptyImage = errors.New("image buffer is empty")
	// ErrTemplateTooLong indicates a template longer than the image
	ErrTemplateTooLong = errors.New("template is longer than image")
)

// NormXCorr slides template across image and returns one correlation
// coefficient per alignment offset, length len(image)-len(template)+1.
//
// Element k is the zero-mean, unit-variance normalized cross-correlation of
// template against image[k:k+T]: both are mean-subtracted and the product of
// their Euclidean norms divides the dot product. Every output lies in
// [-1, 1]. A window or template with zero variance correlates to 0 rather
// than NaN.
//
// Buffers are single-precision to bound memory on daylong inputs; the
// accumulation is done in float64 to keep the coefficient stable over long
// windows.
func NormXCorr(template, image []float32) ([]float32, error) {
	if len(template) == 0 {
		return nil, ErrEmptyTemplate
	}
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}
	n := len(template)
	if n > len(image) {
		return nil, ErrTemplateTooLong
	}

	// Zero-mean template and its norm, computed once.
	var tsum float64
	for _, v := range template {
		tsum += float64(v)
	}
	tmean := tsum / float64(n)
	tdm := make([]float64, n)
	var tvar float64
	for i, v := range template {
		d := float64(v) - tmean
		tdm[i] = d
		tvar += d * d
	}
	tnorm := math.Sqrt(tvar)

	// Prefix sums give each window's mean and energy in O(1).
	sum := make([]float64, len(image)+1)
	sumSq := make([]float64, len(image)+1)
	for i, v := range image {
		f := float64(v)
		sum[i+1] = sum[i] + f
		sumSq[i+1] = sumSq[i] + f*f
	}

	out := make([]float32, len(image)-n+1)
	if tnorm == 0 {
		return out, nil
	}
	fn := float64(n)
	for k := range out {
		// Since the template deviations sum to zero, the window mean
		// drops out of the numerator.
		var num float64
		for i, d := range tdm {
			num += d * float64(image[k+i])
		}
		winSum := sum[k+n] - sum[k]
		winVar := (sumSq[k+n] - sumSq[k]) - winSum*winSum/fn
		if winVar <= 0 {
			continue
		}
		c := num / (tnorm * math.Sqrt(winVar))
		if c > 1 {
			c = 1
		} else if c < -1 {
			c = -1
		}
		out[k] = float32(c)
	}
	return out, nil
}

// ToFloat32 converts a float64 sample buffer to the single-precision form the
// correlator operates on.
func ToFloat32(data []float64) []float32 {
	out := make([]float32, len(data))
	for i, v := range data {
		out[i] = float32(v)
	}
	return out
}
