// Package plotting renders correlation-sum figures. It is a pure consumer of
// match-filter output; nothing in the detection path depends on it.
package plotting

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/kahikatea/seiscan/internal/waveform"
)

// plotRate is the sample rate figures are decimated to before rendering;
// daylong traces are far too dense to draw at full rate.
const plotRate = 25.0

// CCCSumPlotter writes one PNG per template into OutDir, named
// cccsum_plot_<template>_<date>.png after the stream start date.
type CCCSumPlotter struct {
	OutDir string
}

// PlotCCCSum draws the correlation sum, its threshold line and the reference
// waveform (normalized and offset above) on a shared time axis.
func (cp *CCCSumPlotter) PlotCCCSum(templateName string, cccsum []float64,
	threshold float64, reference *waveform.Trace) error {
	if err := os.MkdirAll(cp.OutDir, 0o755); err != nil {
		return fmt.Errorf("creating plot dir: %w", err)
	}

	step := 1
	if reference.SamplingRate > plotRate {
		step = int(reference.SamplingRate / plotRate)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Correlation sum: %s", templateName)
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "cccsum"

	ccLine, err := plotter.NewLine(decimate(cccsum, step, reference.SamplingRate, 1, 0))
	if err != nil {
		return fmt.Errorf("cccsum line: %w", err)
	}
	ccLine.Color = color.RGBA{B: 200, A: 255}
	p.Add(ccLine)
	p.Legend.Add("cccsum", ccLine)

	// Waveform scaled to the cccsum range and drawn above it.
	span := math.Abs(threshold) * 2
	if span == 0 {
		span = 1
	}
	wfLine, err := plotter.NewLine(decimate(normalize(reference.Data), step,
		reference.SamplingRate, span, span*2))
	if err != nil {
		return fmt.Errorf("waveform line: %w", err)
	}
	wfLine.Color = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	p.Add(wfLine)
	p.Legend.Add(reference.ID(), wfLine)

	thLine, err := plotter.NewLine(plotter.XYs{
		{X: 0, Y: threshold},
		{X: float64(len(cccsum)) / reference.SamplingRate, Y: threshold},
	})
	if err != nil {
		return fmt.Errorf("threshold line: %w", err)
	}
	thLine.Color = color.RGBA{R: 200, A: 255}
	thLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(thLine)
	p.Legend.Add("threshold", thLine)

	name := fmt.Sprintf("cccsum_plot_%s_%s.png",
		templateName, reference.StartTime.Format("2006-01-02"))
	return p.Save(10*vg.Inch, 6*vg.Inch, filepath.Join(cp.OutDir, name))
}

func decimate(data []float64, step int, samplingRate, scale, offset float64) plotter.XYs {
	xys := make(plotter.XYs, 0, len(data)/step+1)
	for i := 0; i < len(data); i += step {
		xys = append(xys, plotter.XY{
			X: float64(i) / samplingRate,
			Y: data[i]*scale + offset,
		})
	}
	return xys
}

func normalize(data []float64) []float64 {
	var peak float64
	for _, v := range data {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	out := make([]float64, len(data))
	if peak == 0 {
		return out
	}
	for i, v := range data {
		out[i] = v / peak
	}
	return out
}
