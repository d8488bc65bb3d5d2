// Package flatten walks a host's signal tree and produces a flat mapping from
// dotted path to value.
//
// For every enumerable key of a container the flattener reads the property,
// invoking it first when it is callable. Containers are recorded and then
// descended; sequences and primitives are recorded as leaves; undefined values
// are skipped. An accessor that fails records the Computed sentinel and stops
// descent at that path. A container that refers back to one of its ancestors
// records the Circular sentinel instead of recursing forever.
package flatten

import (
	"github.com/grovetools/sigscope/pkg/signal"
)

// Option configures a traversal.
type Option func(*walker)

// WithSkip excludes paths for which skip returns true. A skipped path is
// neither recorded nor descended.
func WithSkip(skip func(path string) bool) Option {
	return func(w *walker) {
		w.skip = skip
	}
}

type walker struct {
	out        signal.Snapshot
	skip       func(path string) bool
	leavesOnly bool
	ancestors  map[uintptr]struct{}
}

// Flatten produces one entry per reachable node of root, keyed by the dotted
// key chain from root. Container entries hold the materialized mapping of
// their recorded children. Flatten never panics and never mutates root.
func Flatten(root any, opts ...Option) signal.Snapshot {
	return run(root, false, opts)
}

// Leaves is like Flatten but records only terminal values; a container is
// recorded only when it has no recorded children. It turns a nested partial
// update into path-level entries without overwriting whole containers.
func Leaves(root any, opts ...Option) signal.Snapshot {
	return run(root, true, opts)
}

func run(root any, leavesOnly bool, opts []Option) signal.Snapshot {
	w := &walker{
		out:        make(signal.Snapshot),
		leavesOnly: leavesOnly,
		ancestors:  make(map[uintptr]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	node, ok := Container(root)
	if !ok {
		return w.out
	}
	if id, ok := identity(root); ok {
		w.ancestors[id] = struct{}{}
	}
	w.walk(node, "")
	return w.out
}

func (w *walker) walk(node Traversable, prefix string) map[string]any {
	materialized := make(map[string]any)

	for _, key := range safeKeys(node) {
		path := signal.Join(prefix, key)
		if w.skip != nil && w.skip(path) {
			continue
		}

		raw, ok := safeLookup(node, key)
		if !ok {
			continue
		}

		value := raw
		if Classify(raw) == KindCallable {
			v, err := Invoke(raw)
			if err != nil {
				w.record(path, signal.Computed, false)
				materialized[key] = signal.Computed
				continue
			}
			value = v
		}

		switch Classify(value) {
		case KindUndefined:
			continue
		case KindContainer:
			child, _ := Container(value)
			id, hasID := identity(value)
			if hasID {
				if _, seen := w.ancestors[id]; seen {
					w.record(path, signal.Circular, false)
					materialized[key] = signal.Circular
					continue
				}
				w.ancestors[id] = struct{}{}
			}
			nested := w.walk(child, path)
			if hasID {
				delete(w.ancestors, id)
			}
			w.record(path, nested, len(nested) > 0)
			materialized[key] = nested
		default:
			v := signal.Normalize(value)
			w.record(path, v, false)
			materialized[key] = v
		}
	}
	return materialized
}

func (w *walker) record(path string, value any, hasChildren bool) {
	if w.leavesOnly && hasChildren {
		return
	}
	w.out[path] = value
}

// safeKeys and safeLookup shield the walk from host containers that panic.
func safeKeys(node Traversable) (keys []string) {
	defer func() {
		if recover() != nil {
			keys = nil
		}
	}()
	return node.Keys()
}

func safeLookup(node Traversable, key string) (v any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			v, ok = signal.Computed, true
		}
	}()
	return node.Lookup(key)
}
