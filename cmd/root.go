package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/grovetools/core/cli"
	"github.com/grovetools/devdash/config"
	"github.com/grovetools/devdash/internal/activity"
	"github.com/grovetools/devdash/internal/dashboard"
	"github.com/grovetools/devdash/internal/resources"
	"github.com/grovetools/devdash/internal/store"
	"github.com/grovetools/devdash/internal/timelog"
	"github.com/grovetools/devdash/internal/todo"
	"github.com/spf13/cobra"
)

var dataDirFlag string

// NewRootCmd creates the root command for devdash. Run without a
// subcommand it starts the interactive dashboard.
func NewRootCmd() *cobra.Command {
	rootCmd := cli.NewStandardCommand(
		"devdash",
		"Terminal dashboard for todos, time tracking, GitHub activity and system load",
	)
	rootCmd.Long = "Shows your to-do list, recent time entries, public GitHub activity and system resource usage, " +
		"redrawn after every command. Commands: add, complete, remove, start, stop, quit."
	rootCmd.Args = cobra.NoArgs
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		loop := dashboard.New(a.todos, a.times, a.feed(), a.monitor(), dashboard.Options{
			Username:      a.cfg.Dashboard.GitHubUser,
			RecentEntries: a.cfg.Dashboard.RecentEntries,
			FetchTimeout:  a.cfg.Dashboard.FetchTimeoutDuration(),
			SampleTimeout: a.cfg.Dashboard.SampleWindowDuration() + sampleGrace,
		})
		return loop.Run(commandContext(cmd), cmd.InOrStdin(), cmd.OutOrStdout())
	}

	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Directory holding todos.json and time_entries.json (overrides config)")

	rootCmd.AddCommand(newTodoCmd())
	rootCmd.AddCommand(newTimeCmd())
	rootCmd.AddCommand(newActivityCmd())
	rootCmd.AddCommand(newResourcesCmd())
	rootCmd.AddCommand(newPathsCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// sampleGrace is added to the CPU window when bounding a resource sample.
const sampleGrace = time.Second

// app bundles the resolved configuration and the opened ledgers.
type app struct {
	cfg   *config.Config
	store *store.Store
	todos *todo.Ledger
	times *timelog.Ledger
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dataDirFlag != "" {
		cfg.Dashboard.DataDir = dataDirFlag
	}
	return cfg, nil
}

func loadApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	s, err := store.Open(cfg.Dashboard.ResolvedDataDir())
	if err != nil {
		return nil, err
	}
	todos, err := todo.Open(s)
	if err != nil {
		return nil, fmt.Errorf("failed to load todos: %w", err)
	}
	times, err := timelog.Open(s, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load time entries: %w", err)
	}
	return &app{cfg: cfg, store: s, todos: todos, times: times}, nil
}

func (a *app) feed() *activity.Client {
	return activity.NewClient(activity.WithLimit(a.cfg.Dashboard.FeedLimit))
}

func (a *app) monitor() *resources.Monitor {
	return resources.NewMonitor(a.cfg.Dashboard.SampleWindowDuration(), a.cfg.Dashboard.DiskPath)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
