package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kahikatea/seiscan/internal/config"
	"github.com/kahikatea/seiscan/pkg/logger"
	"github.com/kahikatea/seiscan/pkg/seiscan"
)

var rootCmd = &cobra.Command{
	Use:   "seiscan",
	Short: "Matched-filter earthquake detection in continuous waveform data",
	Long: `seiscan cross-correlates known event templates against daylong
continuous recordings, detects correlation-sum peaks above a statistical
threshold, and stores the resulting detections. It also removes transient
spikes from waveform traces.`,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags (override config file)
	rootCmd.PersistentFlags().String("db", "seiscan.sqlite3", "detection database path")
	rootCmd.PersistentFlags().Float64P("threshold", "t", 8.0, "threshold multiplier")
	rootCmd.PersistentFlags().String("threshold-type", "MAD", "threshold policy: MAD, absolute or av_chan_corr")
	rootCmd.PersistentFlags().Float64("trig-int", 6.0, "minimum interval between detections in seconds")
	rootCmd.PersistentFlags().BoolP("debug", "D", false, "enable debug output")

	viper.BindPFlag("db_path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("threshold", rootCmd.PersistentFlags().Lookup("threshold"))
	viper.BindPFlag("threshold_type", rootCmd.PersistentFlags().Lookup("threshold-type"))
	viper.BindPFlag("trig_int", rootCmd.PersistentFlags().Lookup("trig-int"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if viper.GetBool("debug") {
		logger.GetLogger().SetLevel(logger.DEBUG)
	}
}

// newService builds a Service from the resolved settings.
func newService() (seiscan.Service, *config.Settings, error) {
	settings, err := config.Get()
	if err != nil {
		return nil, nil, err
	}
	opts := []seiscan.Option{
		seiscan.WithDBPath(settings.DBPath),
		seiscan.WithThreshold(settings.Threshold, settings.ThresholdType),
		seiscan.WithTrigInt(settings.TrigInt),
		seiscan.WithParallel(settings.ParallelThreshold, settings.Workers),
		seiscan.WithDespike(settings.DespikeMultiplier, settings.DespikeWindow, settings.DespikeInterp),
	}
	if settings.PlotEnabled {
		opts = append(opts, seiscan.WithPlotting(settings.PlotDir))
	}
	svc, err := seiscan.NewService(opts...)
	if err != nil {
		return nil, nil, err
	}
	return svc, settings, nil
}
