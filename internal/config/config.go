// Package config loads seiscan settings from a YAML file via viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	AppName    = "seiscan"
	ConfigType = "yaml"

	DefaultConfig = `# seiscan configuration

# Match filter
threshold: 8.0            # Threshold multiplier (meaning depends on threshold_type)
threshold_type: "MAD"     # MAD, absolute, or av_chan_corr
trig_int: 6.0             # Minimum interval between detections, seconds
parallel_threshold: 4     # Template count above which correlation jobs fan out
workers: 0                # Worker cap for parallel sections (0 = one per CPU)

# Despiker
despike_multiplier: 10.0  # MAD multiplier for spike flagging
despike_window: 0.5       # MAD window length, seconds
despike_interp: 0.05      # Interpolation span around each spike, seconds

# Output
db_path: "seiscan.sqlite3" # Detection database
plot_enabled: false        # Render correlation-sum figures
plot_dir: "plots"          # Where figures go

# Server
server_addr: ":8137"       # HTTP API listen address
allowed_origins: ["*"]     # CORS origins for the HTTP API

debug: false               # Verbose diagnostics
`
)

// Settings holds all application configuration.
type Settings struct {
	// Match filter
	Threshold         float64 `mapstructure:"threshold"`
	ThresholdType     string  `mapstructure:"threshold_type"`
	TrigInt           float64 `mapstructure:"trig_int"`
	ParallelThreshold int     `mapstructure:"parallel_threshold"`
	Workers           int     `mapstructure:"workers"`

	// Despiker
	DespikeMultiplier float64 `mapstructure:"despike_multiplier"`
	DespikeWindow     float64 `mapstructure:"despike_window"`
	DespikeInterp     float64 `mapstructure:"despike_interp"`

	// Output
	DBPath      string `mapstructure:"db_path"`
	PlotEnabled bool   `mapstructure:"plot_enabled"`
	PlotDir     string `mapstructure:"plot_dir"`

	// Server
	ServerAddr     string   `mapstructure:"server_addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	Debug bool `mapstructure:"debug"`
}

// Init initializes viper with defaults and the config file. Search order:
// current directory, then the XDG config dir. A missing file is created with
// the defaults.
func Init() error {
	viper.SetDefault("threshold", 8.0)
	viper.SetDefault("threshold_type", "MAD")
	viper.SetDefault("trig_int", 6.0)
	viper.SetDefault("parallel_threshold", 4)
	viper.SetDefault("workers", 0)
	viper.SetDefault("despike_multiplier", 10.0)
	viper.SetDefault("despike_window", 0.5)
	viper.SetDefault("despike_interp", 0.05)
	viper.SetDefault("db_path", "seiscan.sqlite3")
	viper.SetDefault("plot_enabled", false)
	viper.SetDefault("plot_dir", "plots")
	viper.SetDefault("server_addr", ":8137")
	viper.SetDefault("allowed_origins", []string{"*"})
	viper.SetDefault("debug", false)

	viper.SetConfigType(ConfigType)
	viper.AddConfigPath(".")

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	viper.AddConfigPath(filepath.Join(configDir, AppName))
	viper.SetConfigName("config")

	if err = viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			xdgConfigPath := filepath.Join(configDir, AppName)
			if err = ensureConfigExists(xdgConfigPath); err != nil {
				return err
			}
			if err = viper.ReadInConfig(); err != nil {
				return fmt.Errorf("read config: %w", err)
			}
		} else {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func ensureConfigExists(configPath string) error {
	configFile := filepath.Join(configPath, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err = os.MkdirAll(configPath, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		if err = os.WriteFile(configFile, []byte(DefaultConfig), 0o644); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	}
	return nil
}

// Get returns the current settings.
func Get() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &s, nil
}

// Validate checks that all settings are within acceptable ranges.
func (s *Settings) Validate() error {
	if s.Threshold <= 0 {
		return fmt.Errorf("threshold must be positive, have %v", s.Threshold)
	}
	if s.TrigInt < 0 {
		return fmt.Errorf("trig_int must not be negative, have %v", s.TrigInt)
	}
	if s.ParallelThreshold < 0 {
		return fmt.Errorf("parallel_threshold must not be negative, have %d", s.ParallelThreshold)
	}
	if s.DespikeMultiplier <= 0 {
		return fmt.Errorf("despike_multiplier must be positive, have %v", s.DespikeMultiplier)
	}
	if s.DespikeWindow <= 0 {
		return fmt.Errorf("despike_window must be positive, have %v", s.DespikeWindow)
	}
	if s.DespikeInterp <= 0 {
		return fmt.Errorf("despike_interp must be positive, have %v", s.DespikeInterp)
	}
	return nil
}
