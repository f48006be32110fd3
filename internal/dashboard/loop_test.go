package dashboard

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/grovetools/devdash/internal/activity"
	"github.com/grovetools/devdash/internal/display"
	"github.com/grovetools/devdash/internal/resources"
	"github.com/grovetools/devdash/internal/store"
	"github.com/grovetools/devdash/internal/timelog"
	"github.com/grovetools/devdash/internal/todo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeed struct {
	events []activity.Event
	delay  time.Duration
	calls  int32
	user   atomic.Value
}

func (f *fakeFeed) Fetch(ctx context.Context, username string) []activity.Event {
	atomic.AddInt32(&f.calls, 1)
	f.user.Store(username)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return []activity.Event{}
		}
	}
	return f.events
}

type fakeSampler struct {
	sample resources.Sample
	delay  time.Duration
	calls  int32
}

func (s *fakeSampler) Sample(ctx context.Context) resources.Sample {
	atomic.AddInt32(&s.calls, 1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return resources.Sample{}
		}
	}
	return s.sample
}

type fixture struct {
	store   *store.Store
	todos   *todo.Ledger
	times   *timelog.Ledger
	feed    *fakeFeed
	sampler *fakeSampler
	loop    *Loop
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	todos, err := todo.Open(s)
	require.NoError(t, err)
	now := func() time.Time { return time.Unix(1700000000, 0) }
	times, err := timelog.Open(s, now)
	require.NoError(t, err)

	f := &fixture{
		store:   s,
		todos:   todos,
		times:   times,
		feed:    &fakeFeed{events: []activity.Event{{Type: "PushEvent", RepoName: "octo/repo"}}},
		sampler: &fakeSampler{sample: resources.Sample{CPUPercent: 10, MemoryPercent: 20, DiskPercent: 30}},
	}
	f.loop = New(todos, times, f.feed, f.sampler, Options{Username: "octocat", Width: 160, Now: now})
	return f
}

func (f *fixture) run(t *testing.T, input string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, f.loop.Run(context.Background(), strings.NewReader(input), &out))
	return out.String()
}

func tasks(records []todo.Record) []string {
	var out []string
	for _, r := range records {
		mark := " "
		if r.Done {
			mark = "x"
		}
		out = append(out, mark+r.Task)
	}
	return out
}

func TestRunQuit(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "quit\n")

	assert.Equal(t, Terminated, f.loop.State())
	assert.Equal(t, 1, strings.Count(out, display.TitleHeader))
	assert.Contains(t, out, CommandPrompt)
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.feed.calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.sampler.calls))
	assert.Equal(t, "octocat", f.feed.user.Load())
}

func TestRunEOFTerminates(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "")
	assert.Equal(t, Terminated, f.loop.State())
	assert.Equal(t, 1, strings.Count(out, display.TitleHeader))
}

func TestRunTodoCommands(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "add\nwrite docs\nadd\nreview\ncomplete\n0\nremove\n1\nquit\n")

	assert.Equal(t, []string{"xwrite docs"}, tasks(f.todos.Items()))
	assert.Contains(t, out, TaskPrompt)
	assert.Contains(t, out, CompletePrompt)
	assert.Contains(t, out, RemovePrompt)
	// one frame per command plus the initial frame
	assert.Equal(t, 5, strings.Count(out, display.TitleHeader))

	reloaded, err := todo.Open(f.store)
	require.NoError(t, err)
	assert.Equal(t, f.todos.Items(), reloaded.Items())
}

func TestRunInlineArguments(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "add buy milk\nadd  call   mom \ncomplete 1\nquit\n")

	assert.Equal(t, []string{" buy milk", "xcall   mom"}, tasks(f.todos.Items()))
	assert.NotContains(t, out, TaskPrompt)
	assert.NotContains(t, out, CompletePrompt)
}

func TestRunInvalidIndexContinues(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "add\na\ncomplete\nfirst\nremove\n1.5\nquit\n")

	assert.Contains(t, out, `invalid index "first": must be an integer`)
	assert.Contains(t, out, `invalid index "1.5": must be an integer`)
	assert.Equal(t, []string{" a"}, tasks(f.todos.Items()))
	assert.Equal(t, Terminated, f.loop.State())
}

func TestRunOutOfRangeIndexIgnored(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "add\na\ncomplete\n7\nremove\n-1\nquit\n")

	assert.Equal(t, []string{" a"}, tasks(f.todos.Items()))
	assert.NotContains(t, out, "invalid index")
}

func TestRunInvalidCommand(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "dance\n\nQUIT\nquit\n")

	assert.Equal(t, 3, strings.Count(out, InvalidCommandMessage))
	assert.Equal(t, Terminated, f.loop.State())
}

func TestRunTimeCommands(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "start\ndesign review\nstop\nstop\nquit\n")

	assert.Contains(t, out, DescriptionPrompt)
	entries := f.times.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "design review", entries[0].Description)
	assert.False(t, entries[0].Open())
	assert.Contains(t, out, "0:00:00")
}

func TestRunEOFDuringPrompt(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "add\n")
	assert.Equal(t, Terminated, f.loop.State())
	assert.Empty(t, f.todos.Items())
	assert.Contains(t, out, TaskPrompt)
}

func TestRunLastLineWithoutNewline(t *testing.T) {
	f := newFixture(t)
	f.run(t, "add\nno newline")
	assert.Equal(t, []string{" no newline"}, tasks(f.todos.Items()))
}

func TestRunSaveFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	blocker := f.store.Path(todo.StoreKey)
	require.NoError(t, os.MkdirAll(filepath.Join(blocker, "x"), 0755))

	var out bytes.Buffer
	err := f.loop.Run(context.Background(), strings.NewReader("add\nlost\nquit\n"), &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrIO)
	assert.Equal(t, Terminated, f.loop.State())
	assert.Empty(t, f.todos.Items())
}

func TestRunCancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.loop.Run(ctx, strings.NewReader("quit\n"), &bytes.Buffer{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestGatherRunsSourcesConcurrently(t *testing.T) {
	f := newFixture(t)
	f.feed.delay = 200 * time.Millisecond
	f.sampler.delay = 200 * time.Millisecond

	start := time.Now()
	snap := f.loop.Gather(context.Background())
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 350*time.Millisecond)
	assert.Len(t, snap.Events, 1)
	assert.Equal(t, 30.0, snap.Resources.DiskPercent)
}

func TestGatherBoundsSlowSources(t *testing.T) {
	f := newFixture(t)
	f.feed.delay = time.Hour
	f.sampler.delay = time.Hour
	f.loop = New(f.todos, f.times, f.feed, f.sampler, Options{
		FetchTimeout:  50 * time.Millisecond,
		SampleTimeout: 50 * time.Millisecond,
	})

	start := time.Now()
	snap := f.loop.Gather(context.Background())
	assert.Less(t, time.Since(start), time.Second)
	assert.Empty(t, snap.Events)
	assert.Equal(t, resources.Sample{}, snap.Resources)
}

func TestGatherRecentEntries(t *testing.T) {
	f := newFixture(t)
	for _, d := range []string{"1", "2", "3", "4", "5", "6"} {
		require.NoError(t, f.times.Start(d))
	}
	snap := f.loop.Gather(context.Background())
	require.Len(t, snap.Entries, 5)
	assert.Equal(t, "2", snap.Entries[0].Description)
	assert.Equal(t, "6", snap.Entries[4].Description)
}

func TestParseIndex(t *testing.T) {
	i, err := ParseIndex(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, 3, i)

	i, err = ParseIndex("-2")
	require.NoError(t, err)
	assert.Equal(t, -2, i)

	_, err = ParseIndex("")
	assert.ErrorIs(t, err, ErrInvalidIndex)
	_, err = ParseIndex("two")
	assert.ErrorIs(t, err, ErrInvalidIndex)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "RUNNING", Running.String())
	assert.Equal(t, "TERMINATED", Terminated.String())
}
