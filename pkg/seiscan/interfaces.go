package seiscan

import (
	"context"
	"time"
)

// Service is the seiscan entry point: matched-filter scanning, despiking and
// access to stored detections.
type Service interface {
	// Scan runs the match filter: continuous WAV traces from streamDir are
	// correlated against the templates in templateDirs (one directory per
	// template, WAV channels plus optional delays.csv). start is the
	// absolute start time of the stream. Detections are persisted and
	// returned.
	Scan(ctx context.Context, streamDir string, templateDirs []string, start time.Time) ([]Detection, error)
	// Despike removes spikes from a WAV trace by the windowed-MAD test and
	// writes the cleaned trace to outPath.
	Despike(ctx context.Context, wavPath, outPath string) (*DespikeReport, error)
	// DespikeTemplate removes spikes matching a known spike template
	// (a WAV file) above the given correlation threshold.
	DespikeTemplate(ctx context.Context, wavPath, templatePath, outPath string, ccThresh float64) (*DespikeReport, error)
	// ListDetections returns stored detections, optionally filtered by
	// template name.
	ListDetections(templateName string) ([]Detection, error)
	// DeleteDetections removes stored detections for a template (all when
	// empty) and reports how many went.
	DeleteDetections(templateName string) (int64, error)
	Close() error
}

// Storage persists detection result sets.
type Storage interface {
	SaveDetections(dets []Detection) error
	ListDetections(templateName string) ([]Detection, error)
	DeleteDetections(templateName string) (int64, error)
	Count() (int64, error)
	Close() error
}

// Logger is the logging surface seiscan needs; pkg/logger satisfies it.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
