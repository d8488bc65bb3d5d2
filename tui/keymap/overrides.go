package keymap

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
)

// Overrides maps snake_case binding names to replacement keys, e.g.
// "toggle_theme" -> ["T"]. An empty key list disables the binding.
type Overrides map[string][]string

// ApplyOverrides replaces the keys of every key.Binding field of km (a
// pointer to a struct) named in overrides, keeping the help description.
func ApplyOverrides(km interface{}, overrides Overrides) {
	if len(overrides) == 0 {
		return
	}

	v := reflect.ValueOf(km)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return
	}
	v = v.Elem()

	bindingType := reflect.TypeOf(key.Binding{})
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() || t.Field(i).Type != bindingType {
			continue
		}
		keys, ok := overrides[camelToSnake(t.Field(i).Name)]
		if !ok {
			continue
		}

		current := field.Interface().(key.Binding)
		if len(keys) == 0 {
			current.SetEnabled(false)
			field.Set(reflect.ValueOf(current))
			continue
		}
		field.Set(reflect.ValueOf(key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(keys[0], current.Help().Desc),
		)))
	}
}

// camelToSnake converts a CamelCase field name to snake_case.
func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
