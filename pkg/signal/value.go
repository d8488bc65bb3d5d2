// Package signal defines the value model shared by the snapshot, history and
// export layers: sentinels, canonical encoding and display helpers.
package signal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

const (
	// Computed is recorded for a path whose accessor failed while being read.
	Computed = "<computed>"

	// Circular is recorded for a path that refers back to one of its ancestors.
	Circular = "<circular>"

	// Separator joins nested keys into a path.
	Separator = "."
)

type unset struct{}

func (unset) MarshalJSON() ([]byte, error) { return []byte("null"), nil }
func (unset) String() string               { return "undefined" }

// Unset is the old value reported for a path that had no prior entry.
var Unset any = unset{}

// IsUnset reports whether v is the Unset marker.
func IsUnset(v any) bool {
	_, ok := v.(unset)
	return ok
}

// Snapshot maps a path to its current value.
type Snapshot map[string]any

// Paths returns the snapshot's paths in lexicographic order.
func (s Snapshot) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Clone returns a shallow copy. Values are never mutated in place, so sharing them is safe.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Join appends key to prefix using the path separator.
func Join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + Separator + key
}

// Split breaks a path into its keys.
func Split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, Separator)
}

// Encode renders v as compact JSON without HTML escaping, so sentinels such as
// "<computed>" stay readable.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Unserializable is the placeholder used for a value that cannot be encoded.
func Unserializable(v any) string {
	return fmt.Sprintf("[unserializable %T]", v)
}

// Canonical returns the canonical encoding of v. Object keys are sorted, so two
// mappings with the same content encode identically regardless of key order.
// A value that cannot be encoded canonicalizes to a quoted rendering of its
// type and contents, which keeps Equal total and symmetric while still telling
// NaN from +Inf.
func Canonical(v any) []byte {
	data, _ := canonical(v)
	return data
}

// canonical also reports whether v encoded as JSON.
func canonical(v any) ([]byte, bool) {
	data, err := Encode(v)
	if err == nil {
		return data, true
	}
	var buf strings.Builder
	fmt.Fprintf(&buf, "[unserializable %T: ", v)
	describe(&buf, reflect.ValueOf(v), map[uintptr]struct{}{}, 0)
	buf.WriteString("]")
	return []byte(strconv.Quote(buf.String())), false
}

// maxDescribeDepth bounds describe on deep or pathological graphs.
const maxDescribeDepth = 64

// describe writes a deterministic rendering of rv. Map keys are sorted and a
// container seen again on the current descent is written as Circular.
func describe(b *strings.Builder, rv reflect.Value, ancestors map[uintptr]struct{}, depth int) {
	if !rv.IsValid() {
		b.WriteString("null")
		return
	}
	if depth > maxDescribeDepth {
		b.WriteString("...")
		return
	}

	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			b.WriteString("null")
			return
		}
		describe(b, rv.Elem(), ancestors, depth+1)
	case reflect.Pointer:
		if rv.IsNil() {
			b.WriteString("null")
			return
		}
		if !enter(ancestors, rv.Pointer()) {
			b.WriteString(Circular)
			return
		}
		defer delete(ancestors, rv.Pointer())
		b.WriteString("&")
		describe(b, rv.Elem(), ancestors, depth+1)
	case reflect.Map:
		if rv.IsNil() {
			b.WriteString("null")
			return
		}
		if !enter(ancestors, rv.Pointer()) {
			b.WriteString(Circular)
			return
		}
		defer delete(ancestors, rv.Pointer())

		type entry struct {
			key string
			val reflect.Value
		}
		entries := make([]entry, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			var kb strings.Builder
			describe(&kb, iter.Key(), ancestors, depth+1)
			entries = append(entries, entry{kb.String(), iter.Value()})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

		b.WriteString("{")
		for i, e := range entries {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(e.key)
			b.WriteString(":")
			describe(b, e.val, ancestors, depth+1)
		}
		b.WriteString("}")
	case reflect.Slice:
		if rv.IsNil() {
			b.WriteString("null")
			return
		}
		if rv.Len() > 0 {
			if !enter(ancestors, rv.Pointer()) {
				b.WriteString(Circular)
				return
			}
			defer delete(ancestors, rv.Pointer())
		}
		describeSeq(b, rv, ancestors, depth)
	case reflect.Array:
		describeSeq(b, rv, ancestors, depth)
	case reflect.Struct:
		b.WriteString("{")
		for i := 0; i < rv.NumField(); i++ {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(rv.Type().Field(i).Name)
			b.WriteString(":")
			describe(b, rv.Field(i), ancestors, depth+1)
		}
		b.WriteString("}")
	case reflect.Float32, reflect.Float64:
		b.WriteString(strconv.FormatFloat(rv.Float(), 'g', -1, 64))
	case reflect.Complex64, reflect.Complex128:
		b.WriteString(strconv.FormatComplex(rv.Complex(), 'g', -1, 128))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		b.WriteString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Bool:
		b.WriteString(strconv.FormatBool(rv.Bool()))
	case reflect.String:
		b.WriteString(strconv.Quote(rv.String()))
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		// Identity is all that can be compared.
		fmt.Fprintf(b, "<%s %#x>", rv.Type(), rv.Pointer())
	default:
		b.WriteString(rv.Type().String())
	}
}

func describeSeq(b *strings.Builder, rv reflect.Value, ancestors map[uintptr]struct{}, depth int) {
	b.WriteString("[")
	for i := 0; i < rv.Len(); i++ {
		if i > 0 {
			b.WriteString(",")
		}
		describe(b, rv.Index(i), ancestors, depth+1)
	}
	b.WriteString("]")
}

func enter(ancestors map[uintptr]struct{}, id uintptr) bool {
	if _, seen := ancestors[id]; seen {
		return false
	}
	ancestors[id] = struct{}{}
	return true
}

// Equal compares two values by canonical encoding. An unserializable value
// never equals a serializable one, even a string spelling its placeholder.
func Equal(a, b any) bool {
	ca, okA := canonical(a)
	cb, okB := canonical(b)
	return okA == okB && bytes.Equal(ca, cb)
}

// Normalize returns a detached copy of v. Generic mappings and sequences are
// copied recursively so later mutation of the host's objects cannot reach a
// stored value; a reference back to an enclosing container becomes Circular.
func Normalize(v any) any {
	return normalize(v, map[uintptr]struct{}{})
}

func normalize(v any, ancestors map[uintptr]struct{}) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		id := rv.Pointer()
		if _, seen := ancestors[id]; seen {
			return Circular
		}
		ancestors[id] = struct{}{}
		defer delete(ancestors, id)

		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = normalize(iter.Value().Interface(), ancestors)
		}
		return out
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		id := rv.Pointer()
		if _, seen := ancestors[id]; seen && rv.Len() > 0 {
			return Circular
		}
		ancestors[id] = struct{}{}
		defer delete(ancestors, id)

		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface(), ancestors)
		}
		return out
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface(), ancestors)
		}
		return out
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return v
	}
	return v
}
