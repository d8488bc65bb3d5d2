// Package expanded tracks which signal paths the presentation layer has
// expanded. The set is independent of the snapshot: rebuilding the snapshot
// never clears it, and entries for paths that disappear simply go unused.
package expanded

import (
	"sort"
	"sync"
)

// Tracker is a concurrency-safe set of expanded paths.
type Tracker struct {
	mu    sync.RWMutex
	paths map[string]struct{}
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{paths: make(map[string]struct{})}
}

// Toggle flips membership of path and returns whether it is now expanded.
func (t *Tracker) Toggle(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.paths[path]; ok {
		delete(t.paths, path)
		return false
	}
	t.paths[path] = struct{}{}
	return true
}

// IsExpanded reports whether path is expanded.
func (t *Tracker) IsExpanded(path string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.paths[path]
	return ok
}

// AddAll marks every given path as expanded. It is used to re-seed the set
// from what the presentation layer currently shows before a rebuild.
func (t *Tracker) AddAll(paths []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range paths {
		t.paths[p] = struct{}{}
	}
}

// Paths returns the expanded paths in lexicographic order.
func (t *Tracker) Paths() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.paths))
	for p := range t.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of expanded paths.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.paths)
}
