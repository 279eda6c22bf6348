package matchfilter

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kahikatea/seiscan/internal/findpeaks"
	"github.com/kahikatea/seiscan/internal/waveform"
	"github.com/kahikatea/seiscan/pkg/logger"
)

// ThresholdType selects how a template's raw detection threshold is derived
// from its correlation-sum trace.
type ThresholdType string

const (
	// ThresholdMAD scales the median absolute correlation sum.
	ThresholdMAD ThresholdType = "MAD"
	// ThresholdAbsolute uses the multiplier directly.
	ThresholdAbsolute ThresholdType = "absolute"
	// ThresholdAvChanCorr sets an average per-channel correlation; the raw
	// threshold scales with the number of channels that contributed.
	ThresholdAvChanCorr ThresholdType = "av_chan_corr"
)

// rawThreshold maps a policy to the concrete threshold for one template.
// ok is false for an unrecognized policy tag; the caller falls back to a
// mean-based threshold and warns.
func rawThreshold(tt ThresholdType, cccsum []float64, noChans int, multiplier float64) (thresh float64, ok bool) {
	switch tt {
	case ThresholdMAD:
		return multiplier * medianAbs(cccsum), true
	case ThresholdAbsolute:
		return multiplier, true
	case ThresholdAvChanCorr:
		return multiplier * float64(noChans), true
	}
	return 0, false
}

func medianAbs(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	abs := make([]float64, len(x))
	for i, v := range x {
		abs[i] = math.Abs(v)
	}
	sort.Float64s(abs)
	return stat.Quantile(0.5, stat.LinInterp, abs, nil)
}

func meanAbs(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	abs := make([]float64, len(x))
	for i, v := range x {
		abs[i] = math.Abs(v)
	}
	return stat.Mean(abs, nil)
}

// Plotter renders a template's correlation sum next to the waveform it was
// scanned against. It is a pure consumer: failures are logged, never fatal,
// and a nil Plotter skips rendering entirely.
type Plotter interface {
	PlotCCCSum(templateName string, cccsum []float64, threshold float64, reference *waveform.Trace) error
}

// Params drives one match-filter run.
type Params struct {
	// Threshold is the policy multiplier (or the raw threshold for the
	// absolute policy).
	Threshold float64
	// ThresholdType selects the threshold policy.
	ThresholdType ThresholdType
	// TrigInt is the minimum interval between detections, in seconds.
	TrigInt float64
	// Engine tunes the correlation fan-out.
	Engine EngineConfig
	// Log receives diagnostics; nil uses the default logger.
	Log Logger
	// Plotter, when non-nil, renders each template's correlation sum.
	Plotter Plotter
}

// MatchFilter correlates templates against a day of continuous data and
// returns a Detection per correlation-sum peak that survives thresholding and
// the minimum inter-detection interval.
//
// Every stream channel must satisfy the daylong contract; a violation aborts
// the run naming the offending channel. A template channel missing from the
// stream only reduces that template's channel count.
func MatchFilter(templates []*waveform.Template, delays [][]float64,
	stream waveform.Stream, p Params) ([]Detection, error) {
	log := p.Log
	if log == nil {
		log = logger.GetLogger()
	}
	if len(stream) == 0 {
		return nil, ErrEmptyStream
	}
	for _, tr := range stream {
		if err := tr.ValidateDaylong(); err != nil {
			return nil, err
		}
	}

	tic := time.Now()
	res, err := ChannelLoop(templates, delays, stream, p.Engine, log)
	if err != nil {
		return nil, err
	}
	if len(res.CCCSums) == 0 || len(res.CCCSums[0]) == 0 {
		return nil, ErrZeroLengthCCCSum
	}
	log.Infof("looping over templates and stream took %s", time.Since(tic))

	sr := stream[0].SamplingRate
	start := stream[0].StartTime
	trigInt := int(p.TrigInt * sr)

	var detections []Detection
	for i, cccsum := range res.CCCSums {
		t := templates[i]
		thresh, ok := rawThreshold(p.ThresholdType, cccsum, res.NoChans[i], p.Threshold)
		if !ok {
			thresh = p.Threshold * meanAbs(cccsum)
			log.Warnf("unknown threshold type %q, falling back to mean-based threshold %.4f",
				p.ThresholdType, thresh)
		}
		log.Infof("template %q: threshold %.4f, max cccsum %.4f", t.Name, thresh, maxOf(cccsum))

		if p.Plotter != nil {
			if err := p.Plotter.PlotCCCSum(t.Name, cccsum, thresh, stream[0]); err != nil {
				log.Warnf("plotting template %q: %v", t.Name, err)
			}
		}

		peaks := findpeaks.FindPeaks(cccsum, thresh, trigInt)
		if len(peaks) == 0 {
			log.Debugf("template %q: no peaks above threshold", t.Name)
			continue
		}
		for _, peak := range peaks {
			detectTime := start.Add(time.Duration(float64(peak.Index) / sr * float64(time.Second)))
			detections = append(detections,
				newDetection(t.Name, detectTime, res.NoChans[i], res.Chans[i], peak.Value, thresh))
		}
	}
	log.Infof("match filter produced %d detections from %d templates over %d channels",
		len(detections), len(templates), len(stream))
	return detections, nil
}

func maxOf(x []float64) float64 {
	m := math.Inf(-1)
	for _, v := range x {
		if v > m {
			m = v
		}
	}
	return m
}
