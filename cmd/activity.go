package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/grovetools/devdash/internal/display"
	grovelogging "github.com/grovetools/core/logging"
	"github.com/spf13/cobra"
)

var ulogActivity = grovelogging.NewUnifiedLogger("devdash.cmd.activity")

func newActivityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity [user]",
		Short: "Show recent public GitHub activity",
		Long:  "Show the most recent public GitHub events for a user. Defaults to the configured github_user.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			user := cfg.Dashboard.GitHubUser
			if len(args) == 1 {
				user = args[0]
			}
			if user == "" {
				return fmt.Errorf("no GitHub user: pass one or set github_user / $DEVDASH_GITHUB_USER")
			}

			ctx, cancel := context.WithTimeout(commandContext(cmd), cfg.Dashboard.FetchTimeoutDuration())
			defer cancel()
			events := (&app{cfg: cfg}).feed().Fetch(ctx, user)

			if jsonOutput {
				data, err := json.MarshalIndent(events, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal events: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			ulogActivity.Info("Activity results").
				Field("user", user).
				Field("event_count", len(events)).
				Pretty(fmt.Sprintf("Found %d recent events for %s\n\n", len(events), user)).
				PrettyOnly().
				Log(ctx)
			if len(events) > 0 {
				display.PrintEventsTable(events, cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Output in JSON format")
	return cmd
}
