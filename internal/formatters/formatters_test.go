package formatters

import (
	"strings"
	"testing"
	"time"

	"github.com/grovetools/devdash/internal/todo"
	"github.com/stretchr/testify/assert"
)

func TestFormatChecklist(t *testing.T) {
	out := FormatChecklist([]todo.Record{
		{Task: "write docs", Done: true},
		{Task: "ship it"},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "To-Do List:")
	assert.Equal(t, "  0 [✓] write docs", lines[1])
	assert.Equal(t, "  1 [ ] ship it", lines[2])
}

func TestFormatChecklistEmpty(t *testing.T) {
	out := FormatChecklist(nil)
	assert.Contains(t, out, "To-Do List:")
	assert.Contains(t, out, "(none)")
}

func TestTodoStatus(t *testing.T) {
	assert.Contains(t, TodoStatus(todo.Record{Done: true}), "Done")
	assert.Contains(t, TodoStatus(todo.Record{}), "Pending")
}

func TestPercentAndEventTime(t *testing.T) {
	assert.Equal(t, "12.3%", Percent(12.34))
	assert.Equal(t, "100.0%", Percent(100))

	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	assert.Equal(t, "2024-05-06 07:08", EventTime(ts))
}
