// Package history keeps a bounded, newest-first log of signal changes.
package history

import (
	"sync"
	"time"
)

// DefaultCapacity is the number of entries kept when no capacity is given.
const DefaultCapacity = 100

// Entry records one path changing value. Entries are immutable once recorded.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
	OldValue  any       `json:"old_value"`
	NewValue  any       `json:"new_value"`
}

// History is a capacity-bounded change log. When full, the oldest entry is
// dropped silently.
type History struct {
	mu       sync.RWMutex
	entries  []Entry // newest first
	capacity int
}

// New creates a log holding at most capacity entries.
func New(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{
		entries:  make([]Entry, 0, capacity+1),
		capacity: capacity,
	}
}

// Record prepends an entry, evicting the oldest one if the log is over capacity.
func (h *History) Record(path string, oldValue, newValue any, ts time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, Entry{})
	copy(h.entries[1:], h.entries)
	h.entries[0] = Entry{
		Timestamp: ts,
		Path:      path,
		OldValue:  oldValue,
		NewValue:  newValue,
	}
	if len(h.entries) > h.capacity {
		h.entries = h.entries[:h.capacity]
	}
}

// List returns up to limit entries, newest first. A limit <= 0 returns all.
func (h *History) List(limit int) []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := len(h.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Entry, n)
	copy(out, h.entries[:n])
	return out
}

// Clear empties the log.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = h.entries[:0]
}

// Len returns the number of entries held.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Capacity returns the maximum number of entries held.
func (h *History) Capacity() int {
	return h.capacity
}
