package flatten

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/grovetools/sigscope/pkg/host"
)

// Traversable is the capability the flattener needs from a host container:
// enumerate its keys and read one raw property.
type Traversable interface {
	Keys() []string
	Lookup(key string) (any, bool)
}

// Kind is the traversal category of a value.
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindPrimitive
	KindSequence
	KindContainer
	KindCallable
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindPrimitive:
		return "primitive"
	case KindSequence:
		return "sequence"
	case KindContainer:
		return "container"
	case KindCallable:
		return "callable"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Classify returns the traversal category of v.
func Classify(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case host.Getter, func() any, func() (any, error):
		return KindCallable
	case Traversable, map[string]any:
		if isNilRef(v) {
			return KindNull
		}
		return KindContainer
	case []any:
		return KindSequence
	}
	if host.IsUndefined(v) {
		return KindUndefined
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func:
		if rv.IsNil() {
			return KindNull
		}
		if rv.Type().NumIn() == 0 && rv.Type().NumOut() > 0 {
			return KindCallable
		}
	case reflect.Map:
		if rv.IsNil() {
			return KindNull
		}
		if rv.Type().Key().Kind() == reflect.String {
			return KindContainer
		}
	case reflect.Slice, reflect.Array:
		return KindSequence
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return KindNull
		}
	}
	return KindPrimitive
}

// isNilRef reports whether v is a typed nil map or pointer.
func isNilRef(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Pointer:
		return rv.IsNil()
	}
	return false
}

// Invoke reads a callable. A returned error or a panic inside the accessor is
// reported as an error; neither escapes.
func Invoke(v any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("accessor panicked: %v", r)
		}
	}()

	switch f := v.(type) {
	case host.Getter:
		return f.Get()
	case func() any:
		return f(), nil
	case func() (any, error):
		return f()
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func || rv.Type().NumIn() != 0 || rv.Type().NumOut() == 0 {
		return v, nil
	}
	out := rv.Call(nil)
	last := out[len(out)-1]
	if len(out) > 1 && last.Type().Implements(errorType) {
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
	}
	return out[0].Interface(), nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Container returns v as a Traversable when it is a container.
func Container(v any) (Traversable, bool) {
	switch c := v.(type) {
	case Traversable:
		return c, true
	case map[string]any:
		return host.Map(c), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && !rv.IsNil() && rv.Type().Key().Kind() == reflect.String {
		return reflectMap{rv}, true
	}
	return nil, false
}

// reflectMap adapts any string-keyed map.
type reflectMap struct {
	rv reflect.Value
}

func (m reflectMap) Keys() []string {
	keys := make([]string, 0, m.rv.Len())
	for _, k := range m.rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return keys
}

func (m reflectMap) Lookup(key string) (any, bool) {
	v := m.rv.MapIndex(reflect.ValueOf(key).Convert(m.rv.Type().Key()))
	if !v.IsValid() {
		return nil, false
	}
	return v.Interface(), true
}

// identity returns a stable identity for reference-typed values, used to
// detect a container that contains one of its ancestors.
func identity(v any) (uintptr, bool) {
	if r, ok := v.(reflectMap); ok {
		return r.rv.Pointer(), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Pointer, reflect.UnsafePointer, reflect.Chan:
		if rv.IsNil() {
			return 0, false
		}
		return rv.Pointer(), true
	}
	return 0, false
}
