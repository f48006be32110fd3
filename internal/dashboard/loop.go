// Package dashboard runs the interactive render/read/dispatch loop.
package dashboard

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/core/logging"
	"github.com/grovetools/core/tui/theme"
	"github.com/grovetools/devdash/internal/activity"
	"github.com/grovetools/devdash/internal/display"
	"github.com/grovetools/devdash/internal/resources"
	"github.com/grovetools/devdash/internal/timelog"
	"github.com/grovetools/devdash/internal/todo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Prompts shown to the operator.
const (
	CommandPrompt     = "Enter command (add/complete/remove/start/stop/quit): "
	TaskPrompt        = "Enter task: "
	CompletePrompt    = "Enter task ID to complete: "
	RemovePrompt      = "Enter task ID to remove: "
	DescriptionPrompt = "Enter time entry description: "

	InvalidCommandMessage = "Invalid command. Try again."
)

// ErrInvalidIndex is reported when an index argument is not an integer.
var ErrInvalidIndex = errors.New("invalid index")

// State is the loop's lifecycle state.
type State int

const (
	Running State = iota
	Terminated
)

func (s State) String() string {
	if s == Terminated {
		return "TERMINATED"
	}
	return "RUNNING"
}

// TodoLedger is the to-do state the loop mutates.
type TodoLedger interface {
	Items() []todo.Record
	Add(task string) error
	Complete(index int) error
	Remove(index int) error
}

// TimeLedger is the time-tracking state the loop mutates.
type TimeLedger interface {
	Recent(n int) []timelog.Entry
	Start(description string) error
	Stop() (bool, error)
}

// Feed supplies remote activity. It must not fail; an unavailable feed is empty.
type Feed interface {
	Fetch(ctx context.Context, username string) []activity.Event
}

// Sampler supplies system utilization.
type Sampler interface {
	Sample(ctx context.Context) resources.Sample
}

// Options tune the loop.
type Options struct {
	// Username whose public activity is shown.
	Username string
	// RecentEntries is how many time entries are shown. Defaults to 5.
	RecentEntries int
	// FetchTimeout bounds the activity fetch. Defaults to 10s.
	FetchTimeout time.Duration
	// SampleTimeout bounds the resource sample. Defaults to 2s.
	SampleTimeout time.Duration
	// Width of the rendered frame. Zero uses the renderer default.
	Width int
	// Now supplies the current time. Defaults to time.Now.
	Now func() time.Time
}

// Loop owns one interactive session.
type Loop struct {
	todos   TodoLedger
	times   TimeLedger
	feed    Feed
	sampler Sampler
	opts    Options
	state   State
	logger  *logrus.Entry
}

// New creates a loop over the given sources.
func New(todos TodoLedger, times TimeLedger, feed Feed, sampler Sampler, opts Options) *Loop {
	if opts.RecentEntries <= 0 {
		opts.RecentEntries = 5
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}
	if opts.SampleTimeout <= 0 {
		opts.SampleTimeout = 2 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Loop{
		todos:   todos,
		times:   times,
		feed:    feed,
		sampler: sampler,
		opts:    opts,
		state:   Running,
		logger:  logging.NewLogger("devdash-dashboard"),
	}
}

// State returns the current lifecycle state.
func (l *Loop) State() State {
	return l.state
}

// Gather pulls fresh data from every source. The resource sample and the
// activity fetch run concurrently, each under its own timeout.
func (l *Loop) Gather(ctx context.Context) display.Snapshot {
	var (
		sample resources.Sample
		events []activity.Event
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sctx, cancel := context.WithTimeout(gctx, l.opts.SampleTimeout)
		defer cancel()
		sample = l.sampler.Sample(sctx)
		return nil
	})
	g.Go(func() error {
		fctx, cancel := context.WithTimeout(gctx, l.opts.FetchTimeout)
		defer cancel()
		events = l.feed.Fetch(fctx, l.opts.Username)
		return nil
	})
	g.Wait()

	return display.Snapshot{
		Todos:     l.todos.Items(),
		Entries:   l.times.Recent(l.opts.RecentEntries),
		Events:    events,
		Resources: sample,
		Now:       l.opts.Now(),
		Width:     l.opts.Width,
	}
}

// Run renders a frame, reads a command, dispatches it, and repeats until
// quit or end of input. Only ledger write failures end the loop with an error.
func (l *Loop) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	for l.state == Running {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := display.Render(out, l.Gather(ctx)); err != nil {
			return fmt.Errorf("rendering dashboard: %w", err)
		}

		line, err := prompt(reader, out, promptStyle().Render(CommandPrompt))
		if err != nil {
			l.state = Terminated
			return nil
		}
		if err := l.Dispatch(line, reader, out); err != nil {
			return err
		}
	}
	return nil
}

// Dispatch executes one command line. Arguments may follow the command on
// the same line; otherwise the operator is prompted for them.
func (l *Loop) Dispatch(line string, reader *bufio.Reader, out io.Writer) error {
	command, rest := splitCommand(line)
	l.logger.WithField("command", command).Debug("Dispatching command")

	argument := func(text string) (string, bool) {
		if rest != "" {
			return rest, true
		}
		value, err := prompt(reader, out, text)
		if err != nil {
			l.state = Terminated
			return "", false
		}
		return value, true
	}

	switch command {
	case "add":
		task, ok := argument(TaskPrompt)
		if !ok {
			return nil
		}
		return l.mutation(command, l.todos.Add(task))

	case "complete", "remove":
		text := CompletePrompt
		apply := l.todos.Complete
		if command == "remove" {
			text = RemovePrompt
			apply = l.todos.Remove
		}
		raw, ok := argument(text)
		if !ok {
			return nil
		}
		index, err := ParseIndex(raw)
		if err != nil {
			fmt.Fprintln(out, errorStyle().Render(err.Error()))
			return nil
		}
		return l.mutation(command, apply(index))

	case "start":
		description, ok := argument(DescriptionPrompt)
		if !ok {
			return nil
		}
		return l.mutation(command, l.times.Start(description))

	case "stop":
		_, err := l.times.Stop()
		return l.mutation(command, err)

	case "quit":
		l.state = Terminated
		return nil

	default:
		fmt.Fprintln(out, errorStyle().Render(InvalidCommandMessage))
		return nil
	}
}

// mutation turns a ledger failure into a fatal loop error.
func (l *Loop) mutation(command string, err error) error {
	if err == nil {
		return nil
	}
	l.state = Terminated
	return fmt.Errorf("%s: %w", command, err)
}

// ParseIndex parses an operator-supplied task index.
func ParseIndex(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	index, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w %q: must be an integer", ErrInvalidIndex, trimmed)
	}
	return index, nil
}

func splitCommand(line string) (command, rest string) {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", ""
	}
	command = fields[0]
	rest = strings.TrimSpace(strings.TrimPrefix(line, command))
	return command, rest
}

// prompt writes text and reads one line. A final line without a newline is
// returned as-is; io.EOF is only returned when nothing was read.
func prompt(reader *bufio.Reader, out io.Writer, text string) (string, error) {
	fmt.Fprint(out, text)
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		fmt.Fprintln(out)
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func promptStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(theme.DefaultColors.Yellow)
}

func errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(theme.DefaultColors.Red)
}
