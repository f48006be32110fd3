package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grovetools/devdash/internal/dashboard"
	"github.com/grovetools/devdash/internal/display"
	"github.com/grovetools/devdash/internal/formatters"
	grovelogging "github.com/grovetools/core/logging"
	"github.com/spf13/cobra"
)

var ulogTodo = grovelogging.NewUnifiedLogger("devdash.cmd.todo")

func newTodoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Manage the to-do list without opening the dashboard",
	}
	cmd.AddCommand(newTodoListCmd())
	cmd.AddCommand(newTodoAddCmd())
	cmd.AddCommand(newTodoIndexCmd("complete", "Mark a task as done"))
	cmd.AddCommand(newTodoIndexCmd("remove", "Delete a task, shifting later IDs down"))
	return cmd
}

func newTodoListCmd() *cobra.Command {
	var jsonOutput bool
	var checklist bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks with their IDs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			items := a.todos.Items()

			switch {
			case jsonOutput:
				data, err := json.MarshalIndent(items, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal todos to JSON: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			case checklist:
				fmt.Fprint(cmd.OutOrStdout(), formatters.FormatChecklist(items))
			case len(items) == 0:
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks.")
			default:
				display.PrintTodosTable(items, cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&checklist, "checklist", false, "Output as a checklist")
	return cmd
}

func newTodoAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <task>",
		Short: "Append a pending task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			task := strings.Join(args, " ")
			if err := a.todos.Add(task); err != nil {
				return fmt.Errorf("failed to add task: %w", err)
			}

			index := a.todos.Len() - 1
			ulogTodo.Info("Task added").
				Field("index", index).
				Field("task", task).
				Pretty(fmt.Sprintf("Added task %d: %s\n", index, task)).
				PrettyOnly().
				Emit()
			return nil
		},
	}
}

// newTodoIndexCmd builds the complete and remove subcommands, which share
// index parsing and the silent out-of-range policy.
func newTodoIndexCmd(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := dashboard.ParseIndex(args[0])
			if err != nil {
				return err
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			before := a.todos.Len()

			apply := a.todos.Complete
			if name == "remove" {
				apply = a.todos.Remove
			}
			if err := apply(index); err != nil {
				return fmt.Errorf("failed to %s task: %w", name, err)
			}

			inRange := index >= 0 && index < before
			msg := fmt.Sprintf("Task %d: %sd\n", index, name)
			if !inRange {
				msg = fmt.Sprintf("No task with ID %d, nothing changed\n", index)
			}
			ulogTodo.Info("Task "+name).
				Field("index", index).
				Field("in_range", inRange).
				Pretty(msg).
				PrettyOnly().
				Emit()
			return nil
		},
	}
}
