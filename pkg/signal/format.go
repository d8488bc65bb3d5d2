package signal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Value types as shown next to each signal.
const (
	TypeNull    = "null"
	TypeBoolean = "boolean"
	TypeNumber  = "number"
	TypeString  = "string"
	TypeObject  = "object"
)

// TypeOf classifies a value for display.
func TypeOf(v any) string {
	if v == nil || IsUnset(v) {
		return TypeNull
	}
	switch v.(type) {
	case bool:
		return TypeBoolean
	case string:
		return TypeString
	case json.Number:
		return TypeNumber
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer:
		if rv.IsNil() {
			return TypeNull
		}
		return TypeObject
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return TypeNumber
	case reflect.Array, reflect.Struct:
		return TypeObject
	}
	return TypeString
}

// Format renders a value for display. Objects are pretty-printed with two-space
// indentation; ones that cannot be encoded render as "[Object]".
func Format(v any) string {
	if v == nil {
		return "null"
	}
	if IsUnset(v) {
		return "undefined"
	}
	switch TypeOf(v) {
	case TypeNull:
		return "null"
	case TypeObject:
		data, err := Encode(v)
		if err != nil {
			return "[Object]"
		}
		var out bytes.Buffer
		if err := json.Indent(&out, data, "", "  "); err != nil {
			return "[Object]"
		}
		return out.String()
	}
	return fmt.Sprint(v)
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
