package register

import (
	"strings"
	"sync"
)

// Table is the in-memory read view of the register consulted on the
// recognition hot path. It is safe for concurrent use and replaced wholesale
// whenever the backing store changes.
type Table struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewTable creates an empty Table. It satisfies lookups immediately (as
// misses) so recognition can run before the first load completes.
func NewTable() *Table {
	return &Table{entries: make(map[string]Entry)}
}

// LookupCode returns the handler code registered for a stem.
func (t *Table) LookupCode(stem string) (string, bool) {
	e, ok := t.Lookup(stem)
	if !ok {
		return "", false
	}
	return e.Handler, true
}

// Lookup returns the full entry for a stem.
func (t *Table) Lookup(stem string) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[strings.TrimSpace(stem)]
	return e, ok
}

// Replace swaps in a new entry set.
func (t *Table) Replace(entries []Entry) {
	next := make(map[string]Entry, len(entries))
	for _, e := range entries {
		next[e.Stem] = e
	}

	t.mu.Lock()
	t.entries = next
	t.mu.Unlock()
}

// Len reports the number of loaded entries.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
