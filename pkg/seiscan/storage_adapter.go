package seiscan

import (
	"fmt"

	"github.com/kahikatea/seiscan/internal/matchfilter"
	"github.com/kahikatea/seiscan/internal/storage"
)

// sqliteStorage adapts the internal gorm client to the facade Storage
// interface.
type sqliteStorage struct {
	client *storage.Client
}

// NewSQLiteStorage opens the detection database at dbPath.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	client, err := storage.NewClient(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening detection storage: %w", err)
	}
	return &sqliteStorage{client: client}, nil
}

func (s *sqliteStorage) SaveDetections(dets []Detection) error {
	return s.client.SaveDetections(toInternal(dets))
}

func (s *sqliteStorage) ListDetections(templateName string) ([]Detection, error) {
	dets, err := s.client.ListDetections(templateName)
	if err != nil {
		return nil, err
	}
	return fromInternal(dets), nil
}

func (s *sqliteStorage) DeleteDetections(templateName string) (int64, error) {
	return s.client.DeleteDetections(templateName)
}

func (s *sqliteStorage) Count() (int64, error) {
	return s.client.Count()
}

func (s *sqliteStorage) Close() error {
	return s.client.Close()
}

func toInternal(dets []Detection) []matchfilter.Detection {
	out := make([]matchfilter.Detection, len(dets))
	for i, d := range dets {
		out[i] = matchfilter.Detection(d)
	}
	return out
}

func fromInternal(dets []matchfilter.Detection) []Detection {
	out := make([]Detection, len(dets))
	for i, d := range dets {
		out[i] = Detection(d)
	}
	return out
}
