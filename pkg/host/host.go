// Package host adapts values exposed by a host reactivity runtime to the shapes
// the flattener understands: traversable containers, computed accessors and
// writable cells.
package host

import (
	"sort"
	"sync"
)

type undefined struct{}

// Undefined marks a property that exists but holds no value. The flattener
// skips it entirely.
var Undefined any = undefined{}

// IsUndefined reports whether v is the Undefined marker.
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

// Getter is a computed accessor: reading it may run arbitrary host code and fail.
type Getter interface {
	Get() (any, error)
}

// Setter is implemented by accessors that accept writes.
type Setter interface {
	Set(value any) error
}

// Func adapts a plain function to a Getter.
type Func func() any

// Get invokes the function.
func (f Func) Get() (any, error) { return f(), nil }

// FuncE adapts a fallible function to a Getter.
type FuncE func() (any, error)

// Get invokes the function.
func (f FuncE) Get() (any, error) { return f() }

// Map is a traversable container over a generic mapping. Keys are enumerated
// in sorted order.
type Map map[string]any

// Keys returns the mapping's keys in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup returns the raw property stored under key.
func (m Map) Lookup(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// FromDocument wraps a decoded document (JSON, YAML or TOML) as a root. A
// document whose top level is not a mapping yields an empty root.
func FromDocument(doc any) Map {
	switch d := doc.(type) {
	case Map:
		return d
	case map[string]any:
		return Map(d)
	}
	return Map{}
}

// Var is a mutable cell that is both readable and writable, the simplest form
// of a signal a host can expose.
type Var struct {
	mu    sync.RWMutex
	value any
}

// NewVar creates a cell holding value.
func NewVar(value any) *Var {
	return &Var{value: value}
}

// Get returns the current value.
func (v *Var) Get() (any, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value, nil
}

// Set replaces the current value.
func (v *Var) Set(value any) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.value = value
	return nil
}
