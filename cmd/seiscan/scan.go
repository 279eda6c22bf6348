package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var scanStart string

var scanCmd = &cobra.Command{
	Use:   "scan <stream-dir> <template-dir>...",
	Short: "Run the match filter over a day of continuous data",
	Long: `Correlates each template directory (STA.CHN.wav channels plus an
optional delays.csv) against the continuous WAV traces in stream-dir,
and stores detections for every correlation-sum peak above threshold.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := time.Parse(time.RFC3339, scanStart)
		if err != nil {
			return fmt.Errorf("parsing --start: %w", err)
		}

		svc, _, err := newService()
		if err != nil {
			return err
		}
		defer svc.Close()

		dets, err := svc.Scan(context.Background(), args[0], args[1:], start)
		if err != nil {
			return err
		}

		if len(dets) == 0 {
			fmt.Println("no detections")
			return nil
		}
		for _, d := range dets {
			fmt.Printf("%s  %s  val=%.3f  thresh=%.3f  chans=%d\n",
				d.DetectTime.Format(time.RFC3339), d.TemplateName,
				d.DetectVal, d.Threshold, d.NoChans)
		}
		fmt.Printf("%d detections\n", len(dets))
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanStart, "start", "", "stream start time (RFC3339, required)")
	scanCmd.MarkFlagRequired("start")
	rootCmd.AddCommand(scanCmd)
}
