package waveform

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// DelayFile is the per-template CSV listing channel delays. Each row is
// "STA.CHN,delaySeconds". Channels missing from the file get a zero delay.
const DelayFile = "delays.csv"

// ReadTemplate reads a template from a directory of STA.CHN.wav files plus an
// optional delays.csv. The template name is the directory base name. The
// returned delays are aligned positionally with the template's channel list.
func ReadTemplate(dir string) (*Template, []float64, error) {
	st, err := ReadStream(dir, time.Time{})
	if err != nil {
		return nil, nil, fmt.Errorf("reading template %s: %w", dir, err)
	}

	byID, err := readDelays(filepath.Join(dir, DelayFile))
	if err != nil {
		return nil, nil, err
	}

	t := &Template{
		Name:   filepath.Base(dir),
		Traces: st,
	}
	if err := t.Validate(); err != nil {
		return nil, nil, err
	}

	delays := make([]float64, len(t.Traces))
	for i, tr := range t.Traces {
		delays[i] = byID[tr.ID()]
	}
	return t, delays, nil
}

func readDelays(path string) (map[string]float64, error) {
	byID := make(map[string]float64)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return byID, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for i, row := range rows {
		if len(row) != 2 {
			return nil, fmt.Errorf("%s row %d: want 2 fields, have %d", path, i+1, len(row))
		}
		delay, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad delay %q: %w", path, i+1, row[1], err)
		}
		byID[row[0]] = delay
	}
	return byID, nil
}
