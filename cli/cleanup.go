package cli

import (
	"errors"
	"fmt"
	"time"

	"mlpipe/core/cleanup"
	"mlpipe/core/models"

	"github.com/spf13/cobra"
)

var (
	cleanupEndpointName string
	cleanupAllEndpoints bool
	cleanupOldModels    bool
	cleanupDays         int
	cleanupDryRun       bool
	cleanupFilter       string
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete endpoints and old models that match the naming filter",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cleanupDays <= 0 {
			return errors.New("--days must be positive")
		}
		ctx := cmd.Context()

		client, err := newPlatform(ctx)
		if err != nil {
			return err
		}
		history, closeHistory := openHistory()
		defer closeHistory()

		reaper := newReaper(client, history, cleanup.Options{
			Filter:      filterOrDefault(cleanupFilter),
			DryRun:      cleanupDryRun,
			ModelMaxAge: time.Duration(cleanupDays) * 24 * time.Hour,
		})

		if cleanupDryRun {
			fmt.Println("\nDRY RUN MODE - No resources will be deleted")
		}

		inv, err := reaper.Inventory(ctx)
		if err != nil {
			return err
		}
		printInventory("Current SageMaker Resources", inv)

		report := &cleanup.SweepReport{DryRun: cleanupDryRun}

		if cleanupEndpointName != "" {
			report.Results = append(report.Results, reaper.DeleteEndpoint(ctx, cleanupEndpointName))
		}
		if cleanupAllEndpoints {
			sweep, err := reaper.SweepEndpoints(ctx)
			if err != nil {
				return err
			}
			report.Results = append(report.Results, sweep.Results...)
		}
		if cleanupOldModels {
			sweep, err := reaper.SweepModels(ctx)
			if err != nil {
				return err
			}
			report.Results = append(report.Results, sweep.Results...)
		}

		printSweep(report)

		endpoints := 0
		for _, res := range report.Results {
			if res.Kind == models.ResourceEndpoint && (res.Action == cleanup.ActionDeleted || res.Action == cleanup.ActionWouldDelete) {
				endpoints++
			}
		}
		if endpoints > 0 {
			fmt.Printf("\nEstimated Monthly Savings: $%.2f (%d endpoint(s))\n", reaper.EstimateSavings(ctx, endpoints), endpoints)
		}

		acted := cleanupEndpointName != "" || cleanupAllEndpoints || cleanupOldModels
		if acted && !cleanupDryRun {
			if inv, err := reaper.Inventory(ctx); err == nil {
				printInventory("Updated Resources", inv)
			}
		}
		if cleanupDryRun {
			fmt.Println("Run without --dry-run to actually delete resources")
		}

		return report.Err()
	},
}

func printSweep(report *cleanup.SweepReport) {
	if len(report.Results) == 0 {
		return
	}
	fmt.Println("Cleanup results:")
	for _, res := range report.Results {
		line := fmt.Sprintf("  %-12s %-10s %s", res.Action, res.Kind, res.Name)
		if res.ConfigName != "" {
			line += " (config " + res.ConfigName + ")"
		}
		if res.Error != "" {
			line += ": " + res.Error
		}
		fmt.Println(line)
	}
}

func init() {
	cleanupCmd.Flags().StringVar(&cleanupEndpointName, "endpoint-name", "", "Delete this endpoint and its config")
	cleanupCmd.Flags().BoolVar(&cleanupAllEndpoints, "delete-all-endpoints", false, "Delete every endpoint matching the filter")
	cleanupCmd.Flags().BoolVar(&cleanupOldModels, "delete-old-models", false, "Delete matching models older than --days")
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 7, "Age threshold in days for old models")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "Show what would be deleted without deleting")
	cleanupCmd.Flags().StringVar(&cleanupFilter, "filter", "", "Case-insensitive name filter (default NAME_FILTER)")
	rootCmd.AddCommand(cleanupCmd)
}
