package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var detectionsCmd = &cobra.Command{
	Use:   "detections",
	Short: "Inspect stored detections",
}

var detectionsListCmd = &cobra.Command{
	Use:   "list [template-name]",
	Short: "List stored detections, optionally for one template",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := newService()
		if err != nil {
			return err
		}
		defer svc.Close()

		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		dets, err := svc.ListDetections(name)
		if err != nil {
			return err
		}
		for _, d := range dets {
			fmt.Printf("%s  %-20s %-5s val=%.3f thresh=%.3f chans=%s\n",
				d.DetectTime.Format(time.RFC3339), d.TemplateName, d.TypeOfDet,
				d.DetectVal, d.Threshold, strings.Join(d.Chans, ","))
		}
		fmt.Printf("%d detections\n", len(dets))
		return nil
	},
}

var detectionsDeleteCmd = &cobra.Command{
	Use:   "delete [template-name]",
	Short: "Delete stored detections, optionally for one template",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := newService()
		if err != nil {
			return err
		}
		defer svc.Close()

		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		n, err := svc.DeleteDetections(name)
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d detections\n", n)
		return nil
	},
}

func init() {
	detectionsCmd.AddCommand(detectionsListCmd, detectionsDeleteCmd)
	rootCmd.AddCommand(detectionsCmd)
}
