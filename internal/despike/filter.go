package despike

import (
	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// detrend removes the least-squares straight line from data, returning a new
// slice.
func detrend(data []float64) []float64 {
	xs := make([]float64, len(data))
	for i := range xs {
		xs[i] = float64(i)
	}
	alpha, beta := stat.LinearRegression(xs, data, nil, false)
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = v - (alpha + beta*xs[i])
	}
	return out
}

// bandpass keeps only the [lo, hi] Hz band of data, via a hard frequency-
// domain mask. Good enough for spike hunting where phase distortion at the
// band edges does not matter.
func bandpass(data []float64, lo, hi, samplingRate float64) []float64 {
	n := len(data)
	if n == 0 {
		return nil
	}
	spectrum := fft.FFTReal(data)
	binHz := samplingRate / float64(n)
	for i := range spectrum {
		// Bin i and bin n-i hold the same frequency.
		k := i
		if k > n/2 {
			k = n - i
		}
		f := float64(k) * binHz
		if f < lo || f > hi {
			spectrum[i] = 0
		}
	}
	inv := fft.IFFT(spectrum)
	out := make([]float64, n)
	for i, c := range inv {
		out[i] = real(c)
	}
	return out
}
