package plotting

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kahikatea/seiscan/internal/waveform"
)

func TestPlotCCCSumWritesFile(t *testing.T) {
	dir := t.TempDir()
	cp := &CCCSumPlotter{OutDir: filepath.Join(dir, "plots")}

	n := 2000
	cccsum := make([]float64, n)
	data := make([]float64, n)
	for i := range cccsum {
		cccsum[i] = 0.2 * math.Sin(float64(i)/50)
		data[i] = math.Sin(float64(i) / 10)
	}
	cccsum[700] = 1.4

	tr := &waveform.Trace{
		Station:      "KAIK",
		Channel:      "HHZ",
		SamplingRate: 100,
		StartTime:    time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		Data:         data,
	}
	if err := cp.PlotCCCSum("event-test", cccsum, 0.9, tr); err != nil {
		t.Fatalf("PlotCCCSum failed: %v", err)
	}

	want := filepath.Join(cp.OutDir, "cccsum_plot_event-test_2026-08-30.png")
	info, err := os.Stat(want)
	if err != nil {
		t.Fatalf("figure not written at %s: %v", want, err)
	}
	if info.Size() == 0 {
		t.Error("figure file is empty")
	}
}

func TestNormalize(t *testing.T) {
	out := normalize([]float64{2, -4, 1})
	want := []float64{0.5, -1, 0.25}
	for i, v := range want {
		if out[i] != v {
			t.Errorf("index %d: %v, want %v", i, out[i], v)
		}
	}
	for _, v := range normalize([]float64{0, 0}) {
		if v != 0 {
			t.Error("all-zero input must normalize to zeros")
		}
	}
}

func TestDecimate(t *testing.T) {
	data := []float64{0, 1, 2, 3, 4, 5, 6, 7}
	xys := decimate(data, 4, 2, 1, 0)
	if len(xys) != 2 {
		t.Fatalf("want 2 points, have %d", len(xys))
	}
	if xys[0].X != 0 || xys[0].Y != 0 {
		t.Errorf("first point = %+v", xys[0])
	}
	if xys[1].X != 2 || xys[1].Y != 4 {
		t.Errorf("second point = %+v", xys[1])
	}
}
