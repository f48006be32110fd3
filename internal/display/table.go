package display

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/grovetools/devdash/internal/activity"
	"github.com/grovetools/devdash/internal/formatters"
	"github.com/grovetools/devdash/internal/resources"
	"github.com/grovetools/devdash/internal/timelog"
	"github.com/grovetools/devdash/internal/todo"
)

// PrintTodosTable prints the to-do list with display indexes.
func PrintTodosTable(todos []todo.Record, writer io.Writer) {
	w := tabwriter.NewWriter(writer, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tTASK\tSTATUS")
	for i, r := range todos {
		status := "Pending"
		if r.Done {
			status = "Done"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", i, r.Task, status)
	}
	w.Flush()
}

// PrintEntriesTable prints time entries with their durations as of now.
func PrintEntriesTable(entries []timelog.Entry, now time.Time, writer io.Writer) {
	w := tabwriter.NewWriter(writer, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "DESCRIPTION\tSTARTED\tDURATION\tSTATE")
	for _, e := range entries {
		state := "stopped"
		if e.Open() {
			state = "running"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.Description,
			e.Start.Local().Format("2006-01-02 15:04"),
			timelog.FormatDuration(e.Duration(now)),
			state)
	}
	w.Flush()
}

// PrintEventsTable prints activity events.
func PrintEventsTable(events []activity.Event, writer io.Writer) {
	w := tabwriter.NewWriter(writer, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TYPE\tREPO\tTIME")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.DisplayType(), e.RepoName, formatters.EventTime(e.CreatedAt))
	}
	w.Flush()
}

// PrintResourcesTable prints one resource sample.
func PrintResourcesTable(s resources.Sample, writer io.Writer) {
	w := tabwriter.NewWriter(writer, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "RESOURCE\tUSAGE")
	fmt.Fprintf(w, "CPU\t%s\n", formatters.Percent(s.CPUPercent))
	fmt.Fprintf(w, "Memory\t%s\n", formatters.Percent(s.MemoryPercent))
	fmt.Fprintf(w, "Disk\t%s\n", formatters.Percent(s.DiskPercent))
	w.Flush()
}
