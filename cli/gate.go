package cli

import (
	"fmt"

	"mlpipe/core/training"
	"mlpipe/storage"

	"github.com/spf13/cobra"
)

var (
	gateInfoFile  string
	gateThreshold float64
)

var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Fail unless the recorded model meets the accuracy threshold",
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := storage.ReadTrainingJobInfo(gateInfoFile)
		if err != nil {
			return err
		}

		threshold := cfg.AccuracyThreshold
		if cmd.Flags().Changed("threshold") {
			threshold = gateThreshold
		}

		if err := training.CheckQuality(info, threshold); err != nil {
			return fmt.Errorf("%s: %w", info.JobName, err)
		}
		fmt.Printf("%s passed: accuracy %.4f >= %.4f\n", info.JobName, info.Metrics.Accuracy, threshold)
		return nil
	},
}

func init() {
	gateCmd.Flags().StringVar(&gateInfoFile, "info-file", storage.TrainingJobInfoFile, "Training record to check")
	gateCmd.Flags().Float64Var(&gateThreshold, "threshold", 0, "Minimum accuracy (default ACCURACY_THRESHOLD)")
	rootCmd.AddCommand(gateCmd)
}
