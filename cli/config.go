package cli

import (
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.Display()
		return cfg.Validate()
	},
}

func init() { rootCmd.AddCommand(configCmd) }
