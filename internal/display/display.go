package display

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/grovetools/core/tui/theme"
	"github.com/grovetools/devdash/internal/activity"
	"github.com/grovetools/devdash/internal/formatters"
	"github.com/grovetools/devdash/internal/resources"
	"github.com/grovetools/devdash/internal/timelog"
	"github.com/grovetools/devdash/internal/todo"
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 100

// Panel titles.
const (
	TitleHeader    = "Developer Dashboard"
	TitleTasks     = "Tasks"
	TitleTime      = "Time Tracking"
	TitleActivity  = "GitHub"
	TitleResources = "System"
)

// Snapshot is everything one frame shows.
type Snapshot struct {
	Todos     []todo.Record
	Entries   []timelog.Entry
	Events    []activity.Event
	Resources resources.Sample
	Now       time.Time
	Width     int
}

// Render writes a frame for snap to w.
func Render(w io.Writer, snap Snapshot) error {
	_, err := fmt.Fprintln(w, Dashboard(snap))
	return err
}

// Dashboard lays out one titled panel per data source:
//
//	header
//	tasks | time tracking
//	      | github | system
func Dashboard(snap Snapshot) string {
	width := snap.Width
	if width <= 0 {
		width = DefaultWidth
	}
	leftWidth := width / 2
	rightWidth := width - leftWidth
	activityWidth := rightWidth * 3 / 5
	systemWidth := rightWidth - activityWidth

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.DefaultColors.Violet)
	header := panel("", headerStyle.Render(TitleHeader), width)

	timePanel := panel(TitleTime, timeTable(snap.Entries, snap.Now), rightWidth)
	activityPanel := panel(TitleActivity, activityTable(snap.Events), activityWidth)
	systemPanel := panel(TitleResources, resourceTable(snap.Resources), systemWidth)
	right := lipgloss.JoinVertical(lipgloss.Left,
		timePanel,
		lipgloss.JoinHorizontal(lipgloss.Top, activityPanel, systemPanel),
	)

	left := panel(TitleTasks, todoTable(snap.Todos), leftWidth)
	// Stretch the tasks panel so both columns end on the same line.
	if h := lipgloss.Height(right); lipgloss.Height(left) < h {
		left = panelWithHeight(TitleTasks, todoTable(snap.Todos), leftWidth, h)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func panelStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.DefaultColors.Violet).
		Padding(0, 1).
		Width(max(width-2, 1))
}

func panelContent(title, content string) string {
	if title == "" {
		return content
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.DefaultColors.Yellow)
	return titleStyle.Render(title) + "\n" + content
}

func panel(title, content string, width int) string {
	return panelStyle(width).Render(panelContent(title, content))
}

func panelWithHeight(title, content string, width, height int) string {
	return panelStyle(width).Height(max(height-2, 1)).Render(panelContent(title, content))
}

func newTable(headers ...string) *table.Table {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.DefaultColors.Violet).PaddingRight(2)
	cellStyle := lipgloss.NewStyle().PaddingRight(2)
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func emptyLine() string {
	return lipgloss.NewStyle().Foreground(theme.DefaultColors.MutedText).Render("(none)")
}

func todoTable(todos []todo.Record) string {
	if len(todos) == 0 {
		return emptyLine()
	}
	t := newTable("ID", "Task", "Status")
	for i, r := range todos {
		t.Row(strconv.Itoa(i), r.Task, formatters.TodoStatus(r))
	}
	return t.Render()
}

func timeTable(entries []timelog.Entry, now time.Time) string {
	if len(entries) == 0 {
		return emptyLine()
	}
	t := newTable("Description", "Duration")
	for _, e := range entries {
		t.Row(e.Description, timelog.FormatDuration(e.Duration(now)))
	}
	return t.Render()
}

func activityTable(events []activity.Event) string {
	if len(events) == 0 {
		return emptyLine()
	}
	t := newTable("Type", "Repo", "Time")
	for _, e := range events {
		t.Row(e.DisplayType(), e.RepoName, formatters.EventTime(e.CreatedAt))
	}
	return t.Render()
}

func resourceTable(s resources.Sample) string {
	t := newTable("Resource", "Usage")
	t.Row("CPU", formatters.Percent(s.CPUPercent))
	t.Row("Memory", formatters.Percent(s.MemoryPercent))
	t.Row("Disk", formatters.Percent(s.DiskPercent))
	return strings.TrimRight(t.Render(), "\n")
}
