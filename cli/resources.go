package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"mlpipe/core/cleanup"
	"mlpipe/core/models"
	"mlpipe/core/monitoring"
	"mlpipe/providers/aws"

	"github.com/spf13/cobra"
)

// inventoryModelLimit is how many models the listing prints before summarizing
const inventoryModelLimit = 5

var (
	resourcesFilter string
	resourcesJSON   bool
)

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "List endpoints, models and training jobs matching the naming filter",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, err := newPlatform(ctx)
		if err != nil {
			return err
		}
		reaper := newReaper(client, nil, cleanup.Options{Filter: filterOrDefault(resourcesFilter)})

		inv, err := reaper.Inventory(ctx)
		if err != nil {
			return err
		}

		if resourcesJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(inv)
		}
		printInventory("Current SageMaker Resources", inv)
		return nil
	},
}

func filterOrDefault(filter string) string {
	if filter != "" {
		return filter
	}
	return cfg.Naming.Filter
}

func newReaper(client *aws.Client, recorder monitoring.EventRecorder, opts cleanup.Options) *cleanup.Reaper {
	if opts.InstanceType == "" {
		opts.InstanceType = cfg.Endpoint.InstanceType
	}
	costs := monitoring.NewCostTracker(client, cfg.Endpoint.HourlyPrice)
	return cleanup.NewReaper(client, costs, recorder, opts)
}

func printInventory(title string, inv *models.Inventory) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nEndpoints: %d\n", len(inv.Endpoints))
	for _, ep := range inv.Endpoints {
		fmt.Printf("  - %s (%s)\n", ep.Name, ep.Status)
	}

	fmt.Printf("\nModels: %d\n", len(inv.Models))
	for i, m := range inv.Models {
		if i == inventoryModelLimit {
			fmt.Printf("  ... and %d more\n", len(inv.Models)-inventoryModelLimit)
			break
		}
		fmt.Printf("  - %s (%d days old)\n", m.Name, ageDays(inv.GeneratedAt, m.CreatedAt))
	}

	fmt.Printf("\nRecent Training Jobs: %d\n", len(inv.TrainingJobs))
	for _, j := range inv.TrainingJobs {
		fmt.Printf("  - %s (%s, %d days ago)\n", j.Name, j.Status, ageDays(inv.GeneratedAt, j.CreatedAt))
	}

	fmt.Printf("\nEstimated monthly cost of listed endpoints: $%.2f\n\n", inv.MonthlyCostUSD)
}

func ageDays(now, then time.Time) int {
	if then.IsZero() {
		return 0
	}
	return int(now.Sub(then).Hours() / 24)
}

func init() {
	resourcesCmd.Flags().StringVar(&resourcesFilter, "filter", "", "Case-insensitive name filter (default NAME_FILTER)")
	resourcesCmd.Flags().BoolVar(&resourcesJSON, "json", false, "Print the inventory as JSON")
	rootCmd.AddCommand(resourcesCmd)
}
