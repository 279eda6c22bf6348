// Package matchfilter correlates event templates against continuous
// multi-channel data and turns correlation-sum peaks into detections.
package matchfilter

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/kahikatea/seiscan/internal/waveform"
	"github.com/kahikatea/seiscan/internal/xcorr"
	"github.com/kahikatea/seiscan/pkg/logger"
)

var (
	// ErrNoTemplates indicates an empty template set
	ErrNoTemplates = errors.New("no templates given")
	// ErrEmptyStream indicates a stream with no channels
	ErrEmptyStream = errors.New("stream has no channels")
	// ErrTemplateLengths indicates templates of differing per-channel length
	ErrTemplateLengths = errors.New("all templates must share per-channel length")
	// ErrStreamLengths indicates stream channels of differing length
	ErrStreamLengths = errors.New("all stream channels must share length")
	// ErrZeroLengthCCCSum indicates the correlation produced no output
	ErrZeroLengthCCCSum = errors.New("correlation has not run, zero length cccsum")
)

// Logger is the subset of the seiscan logger the match filter reports
// through.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

// DefaultParallelThreshold is the template count above which the engine fans
// correlation jobs out across workers. Below it the dispatch overhead is not
// worth paying.
const DefaultParallelThreshold = 4

// EngineConfig tunes the correlation fan-out.
type EngineConfig struct {
	// ParallelThreshold is the template count above which per-template
	// correlation jobs run concurrently. Zero means DefaultParallelThreshold.
	ParallelThreshold int
	// Workers caps the worker count in the parallel case. Zero means one per
	// CPU.
	Workers int
}

func (c EngineConfig) parallelThreshold() int {
	if c.ParallelThreshold > 0 {
		return c.ParallelThreshold
	}
	return DefaultParallelThreshold
}

func (c EngineConfig) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// EngineResult is the output of one ChannelLoop run: per-template correlation
// sums, the number of stream channels that contributed to each, and their
// identifiers.
type EngineResult struct {
	CCCSums [][]float64
	NoChans []int
	Chans   [][]string
}

// ChannelLoop correlates every template against every channel of a
// continuous stream and accumulates per-template correlation sums.
//
// A stream channel with no matching station.channel entry in a template
// contributes nothing to that template's sum and does not count toward its
// channel total. The merge is sequential and order-independent: each
// correlation job owns its output vector and the sums are accumulated one
// stream channel at a time.
func ChannelLoop(templates []*waveform.Template, delays [][]float64,
	stream waveform.Stream, cfg EngineConfig, log Logger) (*EngineResult, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if len(templates) == 0 {
		return nil, ErrNoTemplates
	}
	if len(stream) == 0 {
		return nil, ErrEmptyStream
	}
	if len(delays) != len(templates) {
		return nil, fmt.Errorf("have %d delay sets for %d templates", len(delays), len(templates))
	}

	tlen := templates[0].Length()
	for i, t := range templates {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if t.Length() != tlen {
			return nil, fmt.Errorf("template %q: %w", t.Name, ErrTemplateLengths)
		}
		if len(delays[i]) != len(t.Traces) {
			return nil, fmt.Errorf("template %q: %d delays for %d channels",
				t.Name, len(delays[i]), len(t.Traces))
		}
	}

	slen := len(stream[0].Data)
	for _, tr := range stream {
		if err := tr.Validate(); err != nil {
			return nil, err
		}
		if len(tr.Data) != slen {
			return nil, fmt.Errorf("channel %s: %w", tr.ID(), ErrStreamLengths)
		}
	}
	if tlen > slen {
		return nil, fmt.Errorf("template length %d exceeds stream length %d", tlen, slen)
	}

	outLen := slen - tlen + 1
	res := &EngineResult{
		CCCSums: make([][]float64, len(templates)),
		NoChans: make([]int, len(templates)),
		Chans:   make([][]string, len(templates)),
	}
	for i := range res.CCCSums {
		res.CCCSums[i] = make([]float64, outLen)
	}

	parallel := len(templates) > cfg.parallelThreshold()
	for _, tr := range stream {
		// One correlation vector per template for this channel;
		// nil marks the no-matching-channel case.
		results := make([][]float32, len(templates))
		if parallel {
			runTemplateJobs(templates, delays, tr, results, cfg.workers(), log)
		} else {
			for i := range templates {
				results[i] = templateCorr(templates[i], delays[i], tr, log)
			}
		}

		// Sequential merge; summation across channels is commutative so
		// channel order does not matter.
		for i, ccc := range results {
			if allNaN(ccc) {
				continue
			}
			res.NoChans[i]++
			res.Chans[i] = append(res.Chans[i], tr.ID())
			for j, v := range ccc {
				f := float64(v)
				if math.IsNaN(f) {
					continue
				}
				res.CCCSums[i][j] += f
			}
		}
		log.Debugf("correlated %s against %d templates", tr.ID(), len(templates))
	}
	return res, nil
}

// runTemplateJobs fans per-template correlation out over a bounded worker
// pool. Each job writes only its own slot of results.
func runTemplateJobs(templates []*waveform.Template, delays [][]float64,
	tr *waveform.Trace, results [][]float32, workers int, log Logger) {
	if workers > len(templates) {
		workers = len(templates)
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = templateCorr(templates[i], delays[i], tr, log)
			}
		}()
	}
	for i := range templates {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// templateCorr correlates one template with one continuous channel. A nil
// return stands for the all-NaN vector of the no-matching-channel case.
func templateCorr(t *waveform.Template, delays []float64, tr *waveform.Trace,
	log Logger) []float32 {
	for i, ttr := range t.Traces {
		if ttr.Station != tr.Station || ttr.Channel != tr.Channel {
			continue
		}
		image := xcorr.AlignDelay(tr.Data, delays[i], tr.SamplingRate)
		ccc, err := xcorr.NormXCorr(xcorr.ToFloat32(ttr.Data), xcorr.ToFloat32(image))
		if err != nil {
			log.Warnf("template %q channel %s: %v", t.Name, tr.ID(), err)
			return nil
		}
		return ccc
	}
	return nil
}

// allNaN reports whether the correlation vector carries no information: nil
// (no matching channel) or every element NaN.
func allNaN(ccc []float32) bool {
	if ccc == nil {
		return true
	}
	for _, v := range ccc {
		if !math.IsNaN(float64(v)) {
			return false
		}
	}
	return true
}
