// Package snapshot holds the inspector's local copy of every known signal path.
package snapshot

import (
	"sort"
	"sync"

	"github.com/grovetools/sigscope/pkg/flatten"
	"github.com/grovetools/sigscope/pkg/signal"
)

// Patch is an externally delivered partial update mapping paths to new values.
type Patch map[string]any

// Paths returns the patch's paths in lexicographic order, the order in which
// entries are applied.
func (p Patch) Paths() []string {
	paths := make([]string, 0, len(p))
	for path := range p {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Change describes one path whose value was replaced by a patch.
type Change struct {
	Path string
	Old  any
	New  any
}

// Store is the source of truth for the current snapshot. Reads are safe from
// any goroutine; Rescan and ApplyPatch must be serialized by the caller.
type Store struct {
	mu      sync.RWMutex
	signals signal.Snapshot
	opts    []flatten.Option
}

// New creates an empty store. The options are applied on every rescan.
func New(opts ...flatten.Option) *Store {
	return &Store{
		signals: make(signal.Snapshot),
		opts:    opts,
	}
}

// Rescan flattens root, replaces the stored snapshot unconditionally and
// reports whether anything observable differs from the previous one: the
// number of paths, or the canonical value of any path.
func (s *Store) Rescan(root any) bool {
	next := flatten.Flatten(root, s.opts...)

	s.mu.Lock()
	prev := s.signals
	s.signals = next
	s.mu.Unlock()

	return differs(prev, next)
}

func differs(prev, next signal.Snapshot) bool {
	if len(prev) != len(next) {
		return true
	}
	for path, v := range next {
		old, ok := prev[path]
		if !ok || !signal.Equal(old, v) {
			return true
		}
	}
	return false
}

// ApplyPatch overlays p onto the snapshot. Paths absent from the patch are
// kept. For each entry, in path order, the prior value (or signal.Unset) is
// captured; entries whose value is unchanged are stored but not reported.
func (s *Store) ApplyPatch(p Patch) []Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changes []Change
	for _, path := range p.Paths() {
		value := signal.Normalize(p[path])
		old, existed := s.signals[path]
		s.signals[path] = value

		if !existed {
			changes = append(changes, Change{Path: path, Old: signal.Unset, New: value})
			continue
		}
		if !signal.Equal(old, value) {
			changes = append(changes, Change{Path: path, Old: old, New: value})
		}
	}
	return changes
}

// Get returns the value stored for path.
func (s *Store) Get(path string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.signals[path]
	return v, ok
}

// All returns a copy of the current snapshot.
func (s *Store) All() signal.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signals.Clone()
}

// Paths returns every stored path in lexicographic order.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signals.Paths()
}

// Len returns the number of stored paths.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.signals)
}
