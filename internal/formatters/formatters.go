package formatters

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/core/tui/theme"
	"github.com/grovetools/devdash/internal/todo"
)

// EventTimeLayout is how activity timestamps are shown.
const EventTimeLayout = "2006-01-02 15:04"

// TodoStatus returns the styled Done/Pending label for a record.
func TodoStatus(r todo.Record) string {
	if r.Done {
		return lipgloss.NewStyle().Foreground(theme.DefaultColors.Green).Render("Done")
	}
	return lipgloss.NewStyle().Foreground(theme.DefaultColors.Red).Render("Pending")
}

// Percent formats a utilization value as "12.3%".
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// EventTime formats an activity timestamp in UTC.
func EventTime(t time.Time) string {
	return t.UTC().Format(EventTimeLayout)
}

// FormatChecklist renders the to-do list as a checklist, one task per line,
// prefixed with its display index.
func FormatChecklist(records []todo.Record) string {
	var checklist strings.Builder
	checklist.WriteString(fmt.Sprintf("%s To-Do List:\n", theme.IconChecklist))
	if len(records) == 0 {
		mutedStyle := lipgloss.NewStyle().Foreground(theme.DefaultColors.MutedText)
		checklist.WriteString("  " + mutedStyle.Render("(none)") + "\n")
		return checklist.String()
	}
	for i, item := range records {
		checkbox := "[ ]"
		if item.Done {
			checkbox = "[✓]"
		}
		checklist.WriteString(fmt.Sprintf("  %d %s %s\n", i, checkbox, item.Task))
	}
	return checklist.String()
}
