// Package timelog implements the time-tracking ledger.
package timelog

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/grovetools/core/logging"
	"github.com/grovetools/devdash/internal/store"
	"github.com/sirupsen/logrus"
)

// StoreKey is the store name the ledger persists under.
const StoreKey = "time_entries"

// Timestamp is a point in time stored as fractional epoch seconds.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

// MarshalJSON implements the json.Marshaler interface for Timestamp.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	secs := float64(ts.Time.UnixNano()) / float64(time.Second)
	return []byte(strconv.FormatFloat(secs, 'f', -1, 64)), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface for Timestamp.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	secs, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("timestamp %s is not epoch seconds: %w", b, err)
	}
	whole, frac := math.Modf(secs)
	ts.Time = time.Unix(int64(whole), int64(math.Round(frac*float64(time.Second))))
	return nil
}

// Entry is one tracked block of time. End is nil while the entry is open.
type Entry struct {
	Description string     `json:"description"`
	Start       Timestamp  `json:"start"`
	End         *Timestamp `json:"end"`
}

// Open reports whether the entry has not been stopped.
func (e Entry) Open() bool {
	return e.End == nil
}

// Duration returns the elapsed time of the entry in whole seconds, measured
// against now while the entry is open.
func (e Entry) Duration(now time.Time) time.Duration {
	end := now
	if e.End != nil {
		end = e.End.Time
	}
	d := end.Sub(e.Start.Time)
	if d < 0 {
		return 0
	}
	return d.Truncate(time.Second)
}

// FormatDuration renders d as H:MM:SS.
func FormatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// Ledger holds time entries in memory and persists them after each mutation.
type Ledger struct {
	store   *store.Store
	entries []Entry
	now     func() time.Time
	logger  *logrus.Entry
}

// Open loads the ledger from s. now supplies the current time; nil means time.Now.
func Open(s *store.Store, now func() time.Time) (*Ledger, error) {
	entries, err := store.Load[Entry](s, StoreKey)
	if err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &Ledger{
		store:   s,
		entries: entries,
		now:     now,
		logger:  logging.NewLogger("devdash-timelog"),
	}, nil
}

// Entries returns a copy of all entries, oldest first.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Recent returns the last n entries, oldest first.
func (l *Ledger) Recent(n int) []Entry {
	if n <= 0 {
		return []Entry{}
	}
	start := 0
	if len(l.entries) > n {
		start = len(l.entries) - n
	}
	out := make([]Entry, len(l.entries)-start)
	copy(out, l.entries[start:])
	return out
}

// Start appends a new open entry. An entry that is already open is left
// open; only the newest entry is ever closed by Stop.
func (l *Ledger) Start(description string) error {
	if n := len(l.entries); n > 0 && l.entries[n-1].Open() {
		l.logger.WithField("open_entry", l.entries[n-1].Description).
			Warn("Starting a new entry while the previous one is still running")
	}

	prev := l.entries
	next := make([]Entry, len(prev), len(prev)+1)
	copy(next, prev)
	next = append(next, Entry{Description: description, Start: Timestamp{Time: l.now()}})
	return l.commit(prev, next)
}

// Stop closes the newest entry if it is open and reports whether it did.
// Earlier open entries are not searched for.
func (l *Ledger) Stop() (bool, error) {
	n := len(l.entries)
	if n == 0 || !l.entries[n-1].Open() {
		return false, nil
	}

	prev := l.entries
	next := l.Entries()
	next[n-1].End = NewTimestamp(l.now())
	if err := l.commit(prev, next); err != nil {
		return false, err
	}
	return true, nil
}

func (l *Ledger) commit(prev, next []Entry) error {
	if err := store.Save(l.store, StoreKey, next); err != nil {
		l.entries = prev
		return err
	}
	l.entries = next
	return nil
}
