package waveform

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ReadTrace reads a mono WAV file into a Trace. The station and channel are
// taken from the file name, which must look like STA.CHN.wav (for example
// WEL.HHZ.wav). Samples are kept as raw counts, not normalised.
func ReadTrace(path string, start time.Time) (*Trace, error) {
	station, channel, err := splitTraceName(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: not a valid WAV file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if buf.Format.NumChannels != 1 {
		return nil, fmt.Errorf("%s: want mono, have %d channels", path, buf.Format.NumChannels)
	}

	data := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		data[i] = float64(v)
	}

	tr := &Trace{
		Station:      station,
		Channel:      channel,
		SamplingRate: float64(buf.Format.SampleRate),
		StartTime:    start,
		Data:         data,
	}
	if err := tr.Validate(); err != nil {
		return nil, err
	}
	return tr, nil
}

// WriteTrace writes a trace back out as a 16-bit mono WAV file. Samples are
// rounded to the nearest integer count.
func WriteTrace(tr *Trace, path string) error {
	if err := tr.Validate(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, int(tr.SamplingRate), 16, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  int(tr.SamplingRate),
		},
		Data:           make([]int, len(tr.Data)),
		SourceBitDepth: 16,
	}
	for i, v := range tr.Data {
		if v >= 0 {
			buf.Data[i] = int(v + 0.5)
		} else {
			buf.Data[i] = int(v - 0.5)
		}
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// ReadStream reads every *.wav file in dir into a Stream sharing the given
// start time. Channel order is the lexical order of the file names.
func ReadStream(dir string, start time.Time) (Stream, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".wav") {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no WAV files found in %s", dir)
	}
	sort.Strings(paths)

	st := make(Stream, 0, len(paths))
	for _, p := range paths {
		tr, err := ReadTrace(p, start)
		if err != nil {
			return nil, err
		}
		st = append(st, tr)
	}
	return st, nil
}

func splitTraceName(path string) (station, channel string, err error) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	parts := strings.Split(base, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%s: file name must look like STA.CHN.wav", path)
	}
	return parts[0], parts[1], nil
}
