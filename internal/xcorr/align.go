package xcorr

import "math"

// AlignDelay shifts a continuous data channel so that offset 0 in the
// correlation vector lines up with the delay-corrected template position.
//
// Sign convention: a positive delay means events on this channel arrive later
// than the template's reference channel, so the data is shifted earlier.
// round(delay*samplingRate) samples are dropped from the head and the tail is
// zero-padded to preserve length. A negative delay is the mirror operation.
// Zero delay returns an unshifted copy.
func AlignDelay(data []float64, delay, samplingRate float64) []float64 {
	out := make([]float64, len(data))
	shift := int(math.Round(delay * samplingRate))
	switch {
	case shift == 0:
		copy(out, data)
	case shift >= len(data) || -shift >= len(data):
		// Shifted fully out of the window; all padding.
	case shift > 0:
		copy(out, data[shift:])
	default:
		copy(out[-shift:], data[:len(data)+shift])
	}
	return out
}
