package waveform

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var testStart = time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

func writeTestWAV(t *testing.T, dir, name string, data []float64, sr float64) string {
	t.Helper()
	tr := &Trace{
		Station:      "X",
		Channel:      "X",
		SamplingRate: sr,
		StartTime:    testStart,
		Data:         data,
	}
	path := filepath.Join(dir, name)
	if err := WriteTrace(tr, path); err != nil {
		t.Fatalf("WriteTrace(%s) failed: %v", name, err)
	}
	return path
}

func TestTraceRoundTrip(t *testing.T) {
	// Integer-valued samples survive the 16-bit encoding exactly.
	data := []float64{0, 100, -200, 300, 32000, -32000, 7}
	path := writeTestWAV(t, t.TempDir(), "KAIK.HHZ.wav", data, 100)

	tr, err := ReadTrace(path, testStart)
	if err != nil {
		t.Fatalf("ReadTrace failed: %v", err)
	}
	if tr.Station != "KAIK" || tr.Channel != "HHZ" {
		t.Errorf("identity = %s, want KAIK.HHZ", tr.ID())
	}
	if tr.SamplingRate != 100 {
		t.Errorf("SamplingRate = %v, want 100", tr.SamplingRate)
	}
	if !tr.StartTime.Equal(testStart) {
		t.Errorf("StartTime = %v, want %v", tr.StartTime, testStart)
	}
	if len(tr.Data) != len(data) {
		t.Fatalf("sample count = %d, want %d", len(tr.Data), len(data))
	}
	for i, v := range data {
		if tr.Data[i] != v {
			t.Errorf("sample %d: %v, want %v", i, tr.Data[i], v)
		}
	}
}

func TestWriteTraceRounds(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWAV(t, dir, "KAIK.HHZ.wav", []float64{1.4, 1.6, -1.4, -1.6}, 100)
	tr, err := ReadTrace(path, testStart)
	if err != nil {
		t.Fatalf("ReadTrace failed: %v", err)
	}
	want := []float64{1, 2, -1, -2}
	for i, v := range want {
		if tr.Data[i] != v {
			t.Errorf("sample %d: %v, want %v", i, tr.Data[i], v)
		}
	}
}

func TestReadTraceBadName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "badname.wav")
	if err := os.WriteFile(path, []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadTrace(path, testStart); err == nil {
		t.Error("want error for a name without station.channel")
	}
}

func TestReadTraceNotWAV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "KAIK.HHZ.wav")
	if err := os.WriteFile(path, []byte("not a wav"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadTrace(path, testStart); err == nil {
		t.Error("want error for a file that is not WAV")
	}
}

func TestReadStream(t *testing.T) {
	dir := t.TempDir()
	writeTestWAV(t, dir, "WEL.HHN.wav", []float64{4, 5, 6}, 50)
	writeTestWAV(t, dir, "KAIK.HHZ.wav", []float64{1, 2, 3}, 50)

	st, err := ReadStream(dir, testStart)
	if err != nil {
		t.Fatalf("ReadStream failed: %v", err)
	}
	if len(st) != 2 {
		t.Fatalf("want 2 channels, have %d", len(st))
	}
	// Lexical file-name order.
	if st[0].ID() != "KAIK.HHZ" || st[1].ID() != "WEL.HHN" {
		t.Errorf("order = %s, %s", st[0].ID(), st[1].ID())
	}
}

func TestReadStreamEmptyDir(t *testing.T) {
	if _, err := ReadStream(t.TempDir(), testStart); err == nil {
		t.Error("want error for a directory without WAV files")
	}
}

func TestReadTemplate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "event-2026-001")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeTestWAV(t, dir, "KAIK.HHZ.wav", []float64{1, 2, 3, 2, 1}, 100)
	writeTestWAV(t, dir, "WEL.HHN.wav", []float64{0, 1, 0, -1, 0}, 100)
	csv := "KAIK.HHZ,0.25\nWEL.HHN,-0.5\n"
	if err := os.WriteFile(filepath.Join(dir, DelayFile), []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	tmpl, delays, err := ReadTemplate(dir)
	if err != nil {
		t.Fatalf("ReadTemplate failed: %v", err)
	}
	if tmpl.Name != "event-2026-001" {
		t.Errorf("Name = %q", tmpl.Name)
	}
	if len(tmpl.Traces) != 2 || len(delays) != 2 {
		t.Fatalf("have %d channels, %d delays", len(tmpl.Traces), len(delays))
	}
	// Delays line up positionally with the channel list.
	for i, tr := range tmpl.Traces {
		want := map[string]float64{"KAIK.HHZ": 0.25, "WEL.HHN": -0.5}[tr.ID()]
		if delays[i] != want {
			t.Errorf("delay for %s = %v, want %v", tr.ID(), delays[i], want)
		}
	}
}

func TestReadTemplateNoDelayFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bare")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeTestWAV(t, dir, "KAIK.HHZ.wav", []float64{1, 2, 3}, 100)

	_, delays, err := ReadTemplate(dir)
	if err != nil {
		t.Fatalf("ReadTemplate failed: %v", err)
	}
	if len(delays) != 1 || delays[0] != 0 {
		t.Errorf("delays = %v, want [0]", delays)
	}
}

func TestReadTemplateBadDelays(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bad")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeTestWAV(t, dir, "KAIK.HHZ.wav", []float64{1, 2, 3}, 100)
	if err := os.WriteFile(filepath.Join(dir, DelayFile), []byte("KAIK.HHZ,not-a-number\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ReadTemplate(dir); err == nil {
		t.Error("want error for an unparseable delay")
	}
}
