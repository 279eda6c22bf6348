package waveform

import (
	"errors"
	"fmt"
	"time"
)

const daylongSeconds = 86400

var (
	// ErrNoData indicates a trace with an empty sample buffer
	ErrNoData = errors.New("trace has no samples")
	// ErrBadSamplingRate indicates a non-positive sampling rate
	ErrBadSamplingRate = errors.New("sampling rate must be positive")
	// ErrNotDaylong indicates a continuous trace whose sample count does not
	// match one full day at its sampling rate
	ErrNotDaylong = errors.New("trace is not daylong")
	// ErrUnevenChannels indicates template channels of differing lengths
	ErrUnevenChannels = errors.New("template channels must share length")
	// ErrEmptyTemplate indicates a template with no channels
	ErrEmptyTemplate = errors.New("template has no channels")
)

// Trace is a single-channel waveform: an ordered run of samples at a fixed
// sampling rate, tagged with its station/channel identity and absolute start
// time.
type Trace struct {
	Station      string
	Channel      string
	SamplingRate float64 // Hz
	StartTime    time.Time
	Data         []float64
}

// ID returns the station.channel identifier used to match template channels
// against stream channels.
func (tr *Trace) ID() string {
	return tr.Station + "." + tr.Channel
}

// Duration returns the trace length as wall time.
func (tr *Trace) Duration() time.Duration {
	if tr.SamplingRate <= 0 {
		return 0
	}
	secs := float64(len(tr.Data)) / tr.SamplingRate
	return time.Duration(secs * float64(time.Second))
}

// Copy returns a deep copy of the trace.
func (tr *Trace) Copy() *Trace {
	data := make([]float64, len(tr.Data))
	copy(data, tr.Data)
	out := *tr
	out.Data = data
	return &out
}

// Validate checks the basic trace invariants.
func (tr *Trace) Validate() error {
	if tr.SamplingRate <= 0 {
		return fmt.Errorf("%s: %w", tr.ID(), ErrBadSamplingRate)
	}
	if len(tr.Data) == 0 {
		return fmt.Errorf("%s: %w", tr.ID(), ErrNoData)
	}
	return nil
}

// ValidateDaylong checks the continuous-data contract: sample count must
// equal exactly one day at the trace's sampling rate.
func (tr *Trace) ValidateDaylong() error {
	if err := tr.Validate(); err != nil {
		return err
	}
	want := tr.SamplingRate * daylongSeconds
	if want != float64(len(tr.Data)) {
		return fmt.Errorf("%s: have %d samples, want %.0f: %w",
			tr.ID(), len(tr.Data), want, ErrNotDaylong)
	}
	return nil
}

// Stream is a set of continuous single-channel traces covering the same time
// span, one per station/channel.
type Stream []*Trace

// Find returns the trace whose station.channel identifier matches id, or nil.
func (st Stream) Find(id string) *Trace {
	for _, tr := range st {
		if tr.ID() == id {
			return tr
		}
	}
	return nil
}

// Template is a named set of short traces, one per channel, describing a
// known event waveform. All channels share the same sample count.
type Template struct {
	Name   string
	Traces []*Trace
}

// Validate checks that the template has channels and that they share length.
func (t *Template) Validate() error {
	if len(t.Traces) == 0 {
		return fmt.Errorf("template %q: %w", t.Name, ErrEmptyTemplate)
	}
	n := len(t.Traces[0].Data)
	for _, tr := range t.Traces {
		if err := tr.Validate(); err != nil {
			return fmt.Errorf("template %q: %w", t.Name, err)
		}
		if len(tr.Data) != n {
			return fmt.Errorf("template %q channel %s: %w", t.Name, tr.ID(), ErrUnevenChannels)
		}
	}
	return nil
}

// Length returns the per-channel sample count of the template.
func (t *Template) Length() int {
	if len(t.Traces) == 0 {
		return 0
	}
	return len(t.Traces[0].Data)
}
