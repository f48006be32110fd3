package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/grovetools/devdash/config"
	"github.com/grovetools/devdash/internal/store"
	"github.com/grovetools/devdash/internal/timelog"
	"github.com/grovetools/devdash/internal/todo"
	"github.com/spf13/cobra"
)

func newPathsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Show where devdash reads and writes its files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := store.Open(cfg.Dashboard.ResolvedDataDir())
			if err != nil {
				return err
			}

			todosPath, _ := filepath.Abs(s.Path(todo.StoreKey))
			entriesPath, _ := filepath.Abs(s.Path(timelog.StoreKey))
			paths := struct {
				Config      string `json:"config"`
				Todos       string `json:"todos"`
				TimeEntries string `json:"time_entries"`
			}{
				Config:      config.ExpandPath(config.DefaultFilePath),
				Todos:       todosPath,
				TimeEntries: entriesPath,
			}

			if jsonOutput {
				data, err := json.MarshalIndent(paths, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal paths: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config:       %s\n", paths.Config)
			fmt.Fprintf(cmd.OutOrStdout(), "todos:        %s\n", paths.Todos)
			fmt.Fprintf(cmd.OutOrStdout(), "time entries: %s\n", paths.TimeEntries)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}
