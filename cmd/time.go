package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/grovetools/devdash/internal/display"
	"github.com/grovetools/devdash/internal/timelog"
	grovelogging "github.com/grovetools/core/logging"
	"github.com/spf13/cobra"
)

var ulogTime = grovelogging.NewUnifiedLogger("devdash.cmd.time")

func newTimeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "time",
		Short: "Track time without opening the dashboard",
	}
	cmd.AddCommand(newTimeListCmd())
	cmd.AddCommand(newTimeStartCmd())
	cmd.AddCommand(newTimeStopCmd())
	return cmd
}

func newTimeListCmd() *cobra.Command {
	var all bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show recent time entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			entries := a.times.Recent(a.cfg.Dashboard.RecentEntries)
			if all {
				entries = a.times.Entries()
			}

			if jsonOutput {
				data, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal time entries to JSON: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No time entries.")
				return nil
			}
			display.PrintEntriesTable(entries, time.Now(), cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Show every entry instead of the most recent ones")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func newTimeStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <description>",
		Short: "Start a new time entry",
		Long:  "Start a new time entry. A running entry is not stopped first; stop only ever closes the newest entry.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			description := strings.Join(args, " ")
			if err := a.times.Start(description); err != nil {
				return fmt.Errorf("failed to start time entry: %w", err)
			}

			ulogTime.Info("Time entry started").
				Field("description", description).
				Pretty(fmt.Sprintf("Started: %s\n", description)).
				PrettyOnly().
				Emit()
			return nil
		},
	}
}

func newTimeStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the newest time entry if it is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			stopped, err := a.times.Stop()
			if err != nil {
				return fmt.Errorf("failed to stop time entry: %w", err)
			}

			if !stopped {
				ulogTime.Info("No running entry").
					Field("stopped", false).
					Pretty("No running time entry.\n").
					PrettyOnly().
					Emit()
				return nil
			}

			entries := a.times.Entries()
			last := entries[len(entries)-1]
			duration := timelog.FormatDuration(last.Duration(time.Now()))
			ulogTime.Info("Time entry stopped").
				Field("description", last.Description).
				Field("duration", duration).
				Field("stopped", true).
				Pretty(fmt.Sprintf("Stopped: %s (%s)\n", last.Description, duration)).
				PrettyOnly().
				Emit()
			return nil
		},
	}
}
