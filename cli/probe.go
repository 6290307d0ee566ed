package cli

import (
	"fmt"

	"mlpipe/core/probe"
	"mlpipe/storage"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	probeEndpointName string
	probeInfoFile     string
	probeStrict       bool
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Send smoke-test requests to a live endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		name := probeEndpointName
		if name == "" {
			name = cfg.Endpoint.Name
			if info, err := storage.ReadEndpointInfo(probeInfoFile); err == nil && info.EndpointName != "" {
				name = info.EndpointName
			} else if err != nil {
				log.WithError(err).Debug("No endpoint record, using ENDPOINT_NAME")
			}
		}

		client, err := newPlatform(ctx)
		if err != nil {
			return err
		}

		report := probe.NewProber(client, name).Run(ctx)

		printChecks("Single predictions", report.Single)
		printChecks("Batch prediction", report.Batch)
		printChecks("Invalid inputs", report.Negative)

		return report.Err(probeStrict)
	},
}

func printChecks(title string, results []probe.CheckResult) {
	passed, failed := probe.Tally(results)
	fmt.Printf("%s: %d passed, %d failed\n", title, passed, failed)
	for _, r := range results {
		mark := "PASS"
		if !r.Passed {
			mark = "FAIL"
		}
		line := fmt.Sprintf("  [%s] %s", mark, r.Name)
		if r.Expected != "" || r.Got != "" {
			line += fmt.Sprintf(" expected=%s got=%s", r.Expected, r.Got)
		}
		if r.Error != "" {
			line += " error=" + r.Error
		}
		fmt.Println(line)
	}
}

func init() {
	probeCmd.Flags().StringVar(&probeEndpointName, "endpoint-name", "", "Endpoint to probe (default: from the endpoint record, then ENDPOINT_NAME)")
	probeCmd.Flags().StringVar(&probeInfoFile, "info-file", storage.EndpointInfoFile, "Endpoint record to read the name from")
	probeCmd.Flags().BoolVar(&probeStrict, "strict", false, "Also fail when an invalid input is accepted")
	rootCmd.AddCommand(probeCmd)
}
