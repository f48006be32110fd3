// Package todo implements the to-do ledger: an ordered list of tasks written
// through to the store on every change.
package todo

import (
	"github.com/google/uuid"
	"github.com/grovetools/devdash/internal/store"
)

// StoreKey is the store name the ledger persists under.
const StoreKey = "todos"

// Record is a single to-do item. Commands address records by their
// position in the ledger; ID is informational.
type Record struct {
	ID   string `json:"id,omitempty"`
	Task string `json:"task"`
	Done bool   `json:"done"`
}

// Ledger holds the to-do list in memory and persists it after each mutation.
type Ledger struct {
	store *store.Store
	items []Record
}

// Open loads the ledger from s.
func Open(s *store.Store) (*Ledger, error) {
	items, err := store.Load[Record](s, StoreKey)
	if err != nil {
		return nil, err
	}
	return &Ledger{store: s, items: items}, nil
}

// Items returns a copy of the current list in display order.
func (l *Ledger) Items() []Record {
	out := make([]Record, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	return len(l.items)
}

// Add appends a pending task. Any string is accepted, including "".
func (l *Ledger) Add(task string) error {
	prev := l.items
	next := make([]Record, len(prev), len(prev)+1)
	copy(next, prev)
	next = append(next, Record{ID: uuid.NewString(), Task: task})
	return l.commit(prev, next)
}

// Complete marks the task at index as done. Out-of-range indexes are ignored.
func (l *Ledger) Complete(index int) error {
	if !l.inRange(index) {
		return nil
	}
	prev := l.items
	next := l.Items()
	next[index].Done = true
	return l.commit(prev, next)
}

// Remove deletes the task at index, shifting later tasks down by one.
// Out-of-range indexes are ignored.
func (l *Ledger) Remove(index int) error {
	if !l.inRange(index) {
		return nil
	}
	prev := l.items
	next := make([]Record, 0, len(prev)-1)
	next = append(next, prev[:index]...)
	next = append(next, prev[index+1:]...)
	return l.commit(prev, next)
}

func (l *Ledger) inRange(index int) bool {
	return index >= 0 && index < len(l.items)
}

// commit persists next and makes it current. On failure the ledger keeps prev.
func (l *Ledger) commit(prev, next []Record) error {
	if err := store.Save(l.store, StoreKey, next); err != nil {
		l.items = prev
		return err
	}
	l.items = next
	return nil
}
