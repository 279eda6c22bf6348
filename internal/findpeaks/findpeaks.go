// Package findpeaks selects local maxima above a threshold while enforcing a
// minimum separation between accepted peaks.
package findpeaks

import "sort"

// DefaultWindowSeparation is the small separation used when scanning a single
// despike window, where no meaningful inter-event interval exists.
const DefaultWindowSeparation = 5

// Peak is a surviving local maximum: its value and sample index.
type Peak struct {
	Value float64
	Index int
}

// FindPeaks returns the local maxima of arr with value >= thresh such that no
// two accepted peaks lie within minSeparation samples of each other. When
// candidates conflict the larger value wins; ties go to the earlier index.
// The result is ordered by index and empty (not an error) when nothing
// exceeds the threshold.
func FindPeaks(arr []float64, thresh float64, minSeparation int) []Peak {
	candidates := localMaxima(arr, thresh)
	if len(candidates) == 0 {
		return nil
	}

	// Greedy selection by descending value; index breaks ties.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Value == candidates[j].Value {
			return candidates[i].Index < candidates[j].Index
		}
		return candidates[i].Value > candidates[j].Value
	})

	var accepted []Peak
	for _, c := range candidates {
		ok := true
		for _, a := range accepted {
			d := c.Index - a.Index
			if d < 0 {
				d = -d
			}
			if d < minSeparation {
				ok = false
				break
			}
		}
		if ok {
			accepted = append(accepted, c)
		}
	}

	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].Index < accepted[j].Index
	})
	return accepted
}

// FindPeaksWindow scans a single window with the small default separation,
// used by the windowed-MAD despiker.
func FindPeaksWindow(arr []float64, thresh float64) []Peak {
	return FindPeaks(arr, thresh, DefaultWindowSeparation)
}

// localMaxima returns every sample that is at or above thresh and strictly
// greater than its immediate neighbours. End samples compare only the
// neighbour that exists.
func localMaxima(arr []float64, thresh float64) []Peak {
	var peaks []Peak
	for i, v := range arr {
		if v < thresh {
			continue
		}
		if i > 0 && arr[i-1] >= v {
			continue
		}
		if i < len(arr)-1 && arr[i+1] >= v {
			continue
		}
		peaks = append(peaks, Peak{Value: v, Index: i})
	}
	return peaks
}
