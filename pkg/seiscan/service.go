// Package seiscan is the library entry point for matched-filter earthquake
// detection: template scanning, despiking and stored-detection access behind
// one Service.
package seiscan

import (
	"context"
	"fmt"
	"time"

	"github.com/kahikatea/seiscan/internal/despike"
	"github.com/kahikatea/seiscan/internal/matchfilter"
	"github.com/kahikatea/seiscan/internal/plotting"
	"github.com/kahikatea/seiscan/internal/waveform"
	"github.com/kahikatea/seiscan/pkg/logger"
)

type scanService struct {
	storage Storage
	log     Logger
	config  *Config
}

// NewService builds a Service from options; unset options keep their
// defaults.
func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	stor := cfg.Storage
	if stor == nil {
		var err error
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &scanService{
		storage: stor,
		log:     cfg.Logger,
		config:  cfg,
	}, nil
}

func (s *scanService) Scan(ctx context.Context, streamDir string,
	templateDirs []string, start time.Time) ([]Detection, error) {
	s.log.Infof("scanning %s against %d templates", streamDir, len(templateDirs))

	stream, err := waveform.ReadStream(streamDir, start)
	if err != nil {
		return nil, fmt.Errorf("loading stream: %w", err)
	}
	templates := make([]*waveform.Template, 0, len(templateDirs))
	delays := make([][]float64, 0, len(templateDirs))
	for _, dir := range templateDirs {
		t, d, err := waveform.ReadTemplate(dir)
		if err != nil {
			return nil, fmt.Errorf("loading template: %w", err)
		}
		templates = append(templates, t)
		delays = append(delays, d)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := matchfilter.Params{
		Threshold:     s.config.Threshold,
		ThresholdType: matchfilter.ThresholdType(s.config.ThresholdType),
		TrigInt:       s.config.TrigInt,
		Engine: matchfilter.EngineConfig{
			ParallelThreshold: s.config.ParallelThreshold,
			Workers:           s.config.Workers,
		},
		Log: s.log,
	}
	if s.config.PlotEnabled {
		params.Plotter = &plotting.CCCSumPlotter{OutDir: s.config.PlotDir}
	}

	dets, err := matchfilter.MatchFilter(templates, delays, stream, params)
	if err != nil {
		return nil, fmt.Errorf("match filter failed: %w", err)
	}

	results := fromInternal(dets)
	if err := s.storage.SaveDetections(results); err != nil {
		return nil, fmt.Errorf("storing detections: %w", err)
	}
	s.log.Infof("stored %d detections", len(results))
	return results, nil
}

func (s *scanService) Despike(ctx context.Context, wavPath, outPath string) (*DespikeReport, error) {
	tr, err := waveform.ReadTrace(wavPath, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("loading trace: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tic := time.Now()
	peaks, err := despike.MedianFilter(tr, despike.Config{
		Multiplier:   s.config.DespikeMultiplier,
		WindowLength: s.config.DespikeWindow,
		InterpLen:    s.config.DespikeInterp,
		Workers:      s.config.Workers,
		Log:          s.log,
	})
	if err != nil {
		return nil, fmt.Errorf("despiking failed: %w", err)
	}
	if err := waveform.WriteTrace(tr, outPath); err != nil {
		return nil, fmt.Errorf("writing despiked trace: %w", err)
	}
	return &DespikeReport{
		Station: tr.Station,
		Channel: tr.Channel,
		Spikes:  len(peaks),
		Elapsed: time.Since(tic),
	}, nil
}

func (s *scanService) DespikeTemplate(ctx context.Context, wavPath, templatePath,
	outPath string, ccThresh float64) (*DespikeReport, error) {
	tr, err := waveform.ReadTrace(wavPath, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("loading trace: %w", err)
	}
	spike, err := waveform.ReadTrace(templatePath, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("loading spike template: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tic := time.Now()
	peaks, err := despike.TemplateRemove(tr, spike.Data, ccThresh, s.config.DespikeInterp, s.log)
	if err != nil {
		return nil, fmt.Errorf("despiking failed: %w", err)
	}
	if err := waveform.WriteTrace(tr, outPath); err != nil {
		return nil, fmt.Errorf("writing despiked trace: %w", err)
	}
	return &DespikeReport{
		Station: tr.Station,
		Channel: tr.Channel,
		Spikes:  len(peaks),
		Elapsed: time.Since(tic),
	}, nil
}

func (s *scanService) ListDetections(templateName string) ([]Detection, error) {
	return s.storage.ListDetections(templateName)
}

func (s *scanService) DeleteDetections(templateName string) (int64, error) {
	return s.storage.DeleteDetections(templateName)
}

func (s *scanService) Close() error {
	return s.storage.Close()
}
