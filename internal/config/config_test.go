package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

// chdirTemp isolates viper's "." search path and the XDG config dir so Init
// never touches a real user config.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Chdir(old)
		viper.Reset()
	})
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	return dir
}

func TestInitCreatesDefaultConfig(t *testing.T) {
	dir := chdirTemp(t)

	if err := Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	written := filepath.Join(dir, "xdg", AppName, "config.yaml")
	if _, err := os.Stat(written); err != nil {
		t.Errorf("default config not written at %s: %v", written, err)
	}

	s, err := Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if s.Threshold != 8.0 || s.ThresholdType != "MAD" || s.TrigInt != 6.0 {
		t.Errorf("match filter defaults wrong: %+v", s)
	}
	if s.DespikeMultiplier != 10.0 || s.DespikeWindow != 0.5 || s.DespikeInterp != 0.05 {
		t.Errorf("despike defaults wrong: %+v", s)
	}
	if s.DBPath != "seiscan.sqlite3" || s.ServerAddr != ":8137" {
		t.Errorf("output defaults wrong: %+v", s)
	}
	if len(s.AllowedOrigins) != 1 || s.AllowedOrigins[0] != "*" {
		t.Errorf("allowed_origins default wrong: %v", s.AllowedOrigins)
	}
}

func TestInitReadsLocalConfig(t *testing.T) {
	dir := chdirTemp(t)

	local := "threshold: 12.5\nthreshold_type: absolute\ndb_path: other.sqlite3\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(local), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	s, err := Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if s.Threshold != 12.5 || s.ThresholdType != "absolute" || s.DBPath != "other.sqlite3" {
		t.Errorf("local overrides not applied: %+v", s)
	}
	// Untouched keys keep their defaults.
	if s.TrigInt != 6.0 {
		t.Errorf("default trig_int lost: %v", s.TrigInt)
	}
}

func TestDefaultConfigParses(t *testing.T) {
	chdirTemp(t)

	if err := os.WriteFile("config.yaml", []byte(DefaultConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Init(); err != nil {
		t.Fatalf("Init failed on the shipped default config: %v", err)
	}
	if _, err := Get(); err != nil {
		t.Fatalf("Get failed on the shipped default config: %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := Settings{
		Threshold:         8,
		ThresholdType:     "MAD",
		TrigInt:           6,
		DespikeMultiplier: 10,
		DespikeWindow:     0.5,
		DespikeInterp:     0.05,
	}

	tests := []struct {
		name string
		mod  func(*Settings)
		ok   bool
	}{
		{"valid", func(*Settings) {}, true},
		{"zero threshold", func(s *Settings) { s.Threshold = 0 }, false},
		{"negative trig_int", func(s *Settings) { s.TrigInt = -1 }, false},
		{"negative parallel_threshold", func(s *Settings) { s.ParallelThreshold = -1 }, false},
		{"zero despike_multiplier", func(s *Settings) { s.DespikeMultiplier = 0 }, false},
		{"zero despike_window", func(s *Settings) { s.DespikeWindow = 0 }, false},
		{"zero despike_interp", func(s *Settings) { s.DespikeInterp = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mod(&s)
			err := s.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("want validation error")
			}
		})
	}
}
