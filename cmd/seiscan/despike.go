package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kahikatea/seiscan/pkg/seiscan"
)

var (
	despikeOut      string
	despikeTemplate string
	despikeCCThresh float64
)

var despikeCmd = &cobra.Command{
	Use:   "despike <trace.wav>",
	Short: "Remove transient spikes from a waveform trace",
	Long: `Flags outlier samples by the windowed median-absolute-deviation test
(or, with --template, by matching a known spike waveform) and replaces
each with a straight-line interpolation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := newService()
		if err != nil {
			return err
		}
		defer svc.Close()

		out := despikeOut
		if out == "" {
			out = args[0]
		}

		ctx := context.Background()
		var report *seiscan.DespikeReport
		if despikeTemplate != "" {
			report, err = svc.DespikeTemplate(ctx, args[0], despikeTemplate, out, despikeCCThresh)
		} else {
			report, err = svc.Despike(ctx, args[0], out)
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s.%s: removed %d spikes in %s\n",
			report.Station, report.Channel, report.Spikes, report.Elapsed.Round(0))
		return nil
	},
}

func init() {
	despikeCmd.Flags().StringVarP(&despikeOut, "out", "o", "", "output WAV path (default: overwrite input)")
	despikeCmd.Flags().StringVar(&despikeTemplate, "template", "", "spike template WAV for template-match mode")
	despikeCmd.Flags().Float64Var(&despikeCCThresh, "cc-thresh", 0.7, "correlation threshold for template-match mode")
	rootCmd.AddCommand(despikeCmd)
}
