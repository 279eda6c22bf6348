package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kahikatea/seiscan/internal/matchfilter"
)

// Helper function to create a temporary test database
func setupTestDB(t *testing.T) (*Client, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test_seiscan.sqlite3")
	client, err := NewClient(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test DB client: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})
	return client, dbPath
}

func testDetection(template string, at time.Time) matchfilter.Detection {
	return matchfilter.Detection{
		ID:           uuid.NewString(),
		TemplateName: template,
		DetectTime:   at,
		NoChans:      2,
		Chans:        []string{"KAIK.HHZ", "WEL.HHN"},
		DetectVal:    1.42,
		Threshold:    0.9,
		TypeOfDet:    matchfilter.DetectCorr,
	}
}

// TestNewClient tests database initialization
func TestNewClient(t *testing.T) {
	client, dbPath := setupTestDB(t)

	if client.DB == nil {
		t.Fatal("Expected non-nil GORM DB handle")
	}
	if client.db == nil {
		t.Fatal("Expected non-nil sql.DB handle")
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("Database file was not created at %s", dbPath)
	}
}

// TestNewClientNestedPath tests database creation in a missing directory
func TestNewClientNestedPath(t *testing.T) {
	customPath := filepath.Join(t.TempDir(), "subdir", "custom.sqlite3")

	client, err := NewClient(customPath)
	if err != nil {
		t.Fatalf("Failed to create DB with nested path: %v", err)
	}
	defer client.Close()

	if _, err := os.Stat(customPath); os.IsNotExist(err) {
		t.Errorf("Database file was not created at %s", customPath)
	}
}

// TestSaveAndListDetections tests the round trip of a detection set
func TestSaveAndListDetections(t *testing.T) {
	client, _ := setupTestDB(t)

	base := time.Date(2026, 8, 30, 3, 0, 0, 0, time.UTC)
	dets := []matchfilter.Detection{
		testDetection("event-a", base.Add(2*time.Hour)),
		testDetection("event-a", base),
		testDetection("event-b", base.Add(time.Hour)),
	}
	if err := client.SaveDetections(dets); err != nil {
		t.Fatalf("Failed to save detections: %v", err)
	}

	all, err := client.ListDetections("")
	if err != nil {
		t.Fatalf("Failed to list detections: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 detections, got %d", len(all))
	}
	// Ordered by detection time.
	for i := 1; i < len(all); i++ {
		if all[i].DetectTime.Before(all[i-1].DetectTime) {
			t.Errorf("Detections out of time order: %v after %v",
				all[i].DetectTime, all[i-1].DetectTime)
		}
	}

	got := all[0]
	if got.TemplateName != "event-a" {
		t.Errorf("Expected template 'event-a', got '%s'", got.TemplateName)
	}
	if got.NoChans != 2 {
		t.Errorf("Expected 2 channels, got %d", got.NoChans)
	}
	if len(got.Chans) != 2 || got.Chans[0] != "KAIK.HHZ" || got.Chans[1] != "WEL.HHN" {
		t.Errorf("Channel list mangled: %v", got.Chans)
	}
	if got.DetectVal != 1.42 || got.Threshold != 0.9 {
		t.Errorf("Values mangled: val=%v thresh=%v", got.DetectVal, got.Threshold)
	}
	if got.TypeOfDet != matchfilter.DetectCorr {
		t.Errorf("Expected detection type %q, got %q", matchfilter.DetectCorr, got.TypeOfDet)
	}
}

// TestListDetectionsByTemplate tests filtered listing
func TestListDetectionsByTemplate(t *testing.T) {
	client, _ := setupTestDB(t)

	base := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	err := client.SaveDetections([]matchfilter.Detection{
		testDetection("event-a", base),
		testDetection("event-b", base.Add(time.Minute)),
		testDetection("event-a", base.Add(2*time.Minute)),
	})
	if err != nil {
		t.Fatalf("Failed to save detections: %v", err)
	}

	dets, err := client.ListDetections("event-a")
	if err != nil {
		t.Fatalf("Failed to list detections: %v", err)
	}
	if len(dets) != 2 {
		t.Fatalf("Expected 2 detections for event-a, got %d", len(dets))
	}
	for _, d := range dets {
		if d.TemplateName != "event-a" {
			t.Errorf("Filter leaked template %q", d.TemplateName)
		}
	}
}

// TestDeleteDetections tests deletion by template and wholesale
func TestDeleteDetections(t *testing.T) {
	client, _ := setupTestDB(t)

	base := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	err := client.SaveDetections([]matchfilter.Detection{
		testDetection("event-a", base),
		testDetection("event-a", base.Add(time.Minute)),
		testDetection("event-b", base.Add(2*time.Minute)),
	})
	if err != nil {
		t.Fatalf("Failed to save detections: %v", err)
	}

	n, err := client.DeleteDetections("event-a")
	if err != nil {
		t.Fatalf("Failed to delete detections: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 rows deleted, got %d", n)
	}

	count, err := client.Count()
	if err != nil {
		t.Fatalf("Failed to count detections: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 detection left, got %d", count)
	}

	n, err = client.DeleteDetections("")
	if err != nil {
		t.Fatalf("Failed to delete all detections: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 row deleted, got %d", n)
	}
}

// TestSaveEmpty tests storing an empty result set
func TestSaveEmpty(t *testing.T) {
	client, _ := setupTestDB(t)

	if err := client.SaveDetections(nil); err != nil {
		t.Errorf("Expected no error for empty detection set, got: %v", err)
	}
	count, err := client.Count()
	if err != nil {
		t.Fatalf("Failed to count detections: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected empty table, got %d rows", count)
	}
}

// TestClose tests closing the database connection
func TestClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "close_test.sqlite3")
	client, err := NewClient(dbPath)
	if err != nil {
		t.Fatalf("Failed to create DB client: %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("Failed to close DB connection: %v", err)
	}
	// Closing again should be safe (nil check)
	if err := client.Close(); err != nil {
		t.Errorf("Second close should not error: %v", err)
	}
}

// TestNilClientMethods tests that methods handle nil client gracefully
func TestNilClientMethods(t *testing.T) {
	var client *Client

	if err := client.SaveDetections([]matchfilter.Detection{testDetection("x", time.Now())}); err == nil {
		t.Error("Expected error for nil client in SaveDetections")
	}
	if _, err := client.ListDetections(""); err == nil {
		t.Error("Expected error for nil client in ListDetections")
	}
	if _, err := client.DeleteDetections(""); err == nil {
		t.Error("Expected error for nil client in DeleteDetections")
	}
	if _, err := client.Count(); err == nil {
		t.Error("Expected error for nil client in Count")
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close on nil client should return nil, got: %v", err)
	}
}
