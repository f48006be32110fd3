package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/grovetools/devdash/internal/display"
	"github.com/spf13/cobra"
)

func newResourcesCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "resources",
		Short: "Sample CPU, memory and disk utilization once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sample := (&app{cfg: cfg}).monitor().Sample(commandContext(cmd))

			if jsonOutput {
				data, err := json.MarshalIndent(sample, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal sample: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			display.PrintResourcesTable(sample, cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}
