// Package storage persists match-filter detections in SQLite.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kahikatea/seiscan/internal/matchfilter"
)

// DefaultDBFile is used when no database path is configured.
const DefaultDBFile = "seiscan.sqlite3"

var errClientNil = errors.New("storage client is nil")

// DetectionRecord is the stored form of a match-filter detection.
type DetectionRecord struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)"`
	TemplateName string    `gorm:"index:idx_template" json:"template_name"`
	DetectTime   time.Time `gorm:"index:idx_detect_time" json:"detect_time"`
	NoChans      int       `json:"no_chans"`
	Chans        string    `json:"chans"` // comma-joined station.channel ids
	DetectVal    float64   `json:"detect_val"`
	Threshold    float64   `json:"threshold"`
	TypeOfDet    string    `json:"type_of_det"`
	CreatedAt    time.Time
}

// Client wraps the gorm handle for detection persistence.
type Client struct {
	DB *gorm.DB
	db *sql.DB
}

// NewClient opens (creating if needed) the SQLite database at dbPath and
// migrates the detection schema.
func NewClient(dbPath string) (*Client, error) {
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	db, err := gorm.Open(sqlite.Open(dbPath), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&DetectionRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &Client{DB: db, db: sqlDB}, nil
}

func (c *Client) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// SaveDetections stores a result set in one transaction.
func (c *Client) SaveDetections(dets []matchfilter.Detection) error {
	if c == nil || c.DB == nil {
		return errClientNil
	}
	if len(dets) == 0 {
		return nil
	}
	records := make([]DetectionRecord, len(dets))
	for i, d := range dets {
		records[i] = toRecord(d)
	}
	if err := c.DB.Create(&records).Error; err != nil {
		return fmt.Errorf("storing detections: %w", err)
	}
	return nil
}

// ListDetections returns stored detections ordered by detection time.
// An empty templateName lists everything.
func (c *Client) ListDetections(templateName string) ([]matchfilter.Detection, error) {
	if c == nil || c.DB == nil {
		return nil, errClientNil
	}
	var records []DetectionRecord
	q := c.DB.Order("detect_time")
	if templateName != "" {
		q = q.Where("template_name = ?", templateName)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("listing detections: %w", err)
	}
	dets := make([]matchfilter.Detection, len(records))
	for i, r := range records {
		dets[i] = fromRecord(r)
	}
	return dets, nil
}

// DeleteDetections removes detections for a template (or all when empty) and
// reports how many went.
func (c *Client) DeleteDetections(templateName string) (int64, error) {
	if c == nil || c.DB == nil {
		return 0, errClientNil
	}
	q := c.DB
	if templateName != "" {
		q = q.Where("template_name = ?", templateName)
	} else {
		q = q.Where("1 = 1")
	}
	res := q.Delete(&DetectionRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("deleting detections: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Count reports the number of stored detections.
func (c *Client) Count() (int64, error) {
	if c == nil || c.DB == nil {
		return 0, errClientNil
	}
	var n int64
	if err := c.DB.Model(&DetectionRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting detections: %w", err)
	}
	return n, nil
}

func toRecord(d matchfilter.Detection) DetectionRecord {
	return DetectionRecord{
		ID:           d.ID,
		TemplateName: d.TemplateName,
		DetectTime:   d.DetectTime,
		NoChans:      d.NoChans,
		Chans:        strings.Join(d.Chans, ","),
		DetectVal:    d.DetectVal,
		Threshold:    d.Threshold,
		TypeOfDet:    d.TypeOfDet,
	}
}

func fromRecord(r DetectionRecord) matchfilter.Detection {
	var chans []string
	if r.Chans != "" {
		chans = strings.Split(r.Chans, ",")
	}
	return matchfilter.Detection{
		ID:           r.ID,
		TemplateName: r.TemplateName,
		DetectTime:   r.DetectTime,
		NoChans:      r.NoChans,
		Chans:        chans,
		DetectVal:    r.DetectVal,
		Threshold:    r.Threshold,
		TypeOfDet:    r.TypeOfDet,
	}
}
