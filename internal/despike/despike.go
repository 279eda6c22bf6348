// Package despike removes transient spikes from waveform traces, either by a
// windowed median-absolute-deviation test or by matching a known spike
// template, replacing each hit with a straight line.
package despike

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kahikatea/seiscan/internal/findpeaks"
	"github.com/kahikatea/seiscan/internal/waveform"
	"github.com/kahikatea/seiscan/internal/xcorr"
	"github.com/kahikatea/seiscan/pkg/logger"
)

// Logger is the subset of the seiscan logger the despiker reports through.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

var (
	// ErrBadWindowLength indicates a window shorter than one sample
	ErrBadWindowLength = errors.New("window length must cover at least one sample")
	// ErrBadMultiplier indicates a non-positive MAD multiplier
	ErrBadMultiplier = errors.New("multiplier must be positive")
)

// lowCut is the band-pass low corner (Hz) used to suppress long-period
// content before spike hunting.
const lowCut = 10.0

// Config tunes the windowed-MAD despiker.
type Config struct {
	// Multiplier of the window MAD above which a sample is a spike.
	Multiplier float64
	// WindowLength of the independent MAD windows, seconds.
	WindowLength float64
	// InterpLen is the span replaced around each spike, seconds.
	InterpLen float64
	// Workers caps the window fan-out; zero means one per CPU.
	Workers int
	// Log receives diagnostics; nil uses the default logger.
	Log Logger
}

// MedianFilter flags samples exceeding Multiplier times the local median
// absolute deviation and replaces a symmetric window around each with a
// straight line. Spike hunting happens on a detrended, band-passed copy; the
// interpolation is applied to the trace's original samples in place. The
// returned peaks are the flagged spike locations.
func MedianFilter(tr *waveform.Trace, cfg Config) ([]findpeaks.Peak, error) {
	log := cfg.Log
	if log == nil {
		log = logger.GetLogger()
	}
	if err := tr.Validate(); err != nil {
		return nil, err
	}
	if cfg.Multiplier <= 0 {
		return nil, ErrBadMultiplier
	}
	winLen := int(cfg.WindowLength * tr.SamplingRate)
	if winLen < 1 {
		return nil, fmt.Errorf("window of %.3fs at %.1fHz: %w",
			cfg.WindowLength, tr.SamplingRate, ErrBadWindowLength)
	}

	tic := time.Now()
	filt := detrend(tr.Data)
	filt = bandpass(filt, lowCut, tr.SamplingRate/2-1, tr.SamplingRate)

	// Non-overlapping windows are independent; each job owns its output
	// slot and the merge below is a plain concatenation.
	nWin := len(filt) / winLen
	perWindow := make([][]findpeaks.Peak, nWin)
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > nWin {
		workers = nWin
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				start := i * winLen
				perWindow[i] = medianWindow(filt[start:start+winLen], start, cfg.Multiplier)
			}
		}()
	}
	for i := 0; i < nWin; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var peaks []findpeaks.Peak
	for _, p := range perWindow {
		peaks = append(peaks, p...)
	}
	sort.Slice(peaks, func(i, j int) bool { return peaks[i].Index < peaks[j].Index })

	interpLen := int(cfg.InterpLen * tr.SamplingRate)
	for _, peak := range peaks {
		interpGap(tr.Data, peak.Index, interpLen)
	}
	log.Infof("despiking %s took %s, removed %d spikes", tr.ID(), time.Since(tic), len(peaks))
	return peaks, nil
}

// medianWindow flags the spikes in one window. Indices in the returned peaks
// are absolute positions in the full trace.
func medianWindow(window []float64, windowStart int, multiplier float64) []findpeaks.Peak {
	abs := make([]float64, len(window))
	for i, v := range window {
		abs[i] = math.Abs(v)
	}
	sort.Float64s(abs)
	mad := stat.Quantile(0.5, stat.LinInterp, abs, nil)

	peaks := findpeaks.FindPeaksWindow(window, multiplier*mad)
	for i := range peaks {
		peaks[i].Index += windowStart
	}
	return peaks
}

// TemplateRemove finds instances of a known spike template in the trace by
// normalized cross-correlation and interpolates them away in place. The
// returned peaks are the matched correlation offsets.
func TemplateRemove(tr *waveform.Trace, template []float64, ccThresh, interpLen float64,
	log Logger) ([]findpeaks.Peak, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if err := tr.Validate(); err != nil {
		return nil, err
	}

	tic := time.Now()
	ccc, err := xcorr.NormXCorr(xcorr.ToFloat32(template), xcorr.ToFloat32(tr.Data))
	if err != nil {
		return nil, fmt.Errorf("correlating spike template: %w", err)
	}
	cc := make([]float64, len(ccc))
	for i, v := range ccc {
		cc[i] = float64(v)
	}

	peaks := findpeaks.FindPeaks(cc, ccThresh, len(template))
	span := int(interpLen * tr.SamplingRate)
	for _, peak := range peaks {
		// The correlation offset marks the template start; centre the
		// interpolation on the template body.
		interpGap(tr.Data, peak.Index+len(template)/2, span)
	}
	log.Infof("template despiking %s took %s, removed %d spikes", tr.ID(), time.Since(tic), len(peaks))
	return peaks, nil
}

// interpGap draws a straight line through data across a window of interpLen
// samples centred on loc, clamped to the buffer.
func interpGap(data []float64, loc, interpLen int) {
	start := loc - interpLen/2
	end := loc + interpLen/2
	if start < 0 {
		start = 0
	}
	if end > len(data)-1 {
		end = len(data) - 1
	}
	if end <= start {
		return
	}
	d0 := data[start]
	slope := (data[end] - d0) / float64(end-start)
	for i := start + 1; i < end; i++ {
		data[i] = d0 + slope*float64(i-start)
	}
}
