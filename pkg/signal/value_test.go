package signal

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalIgnoresKeyOrderAtDepth(t *testing.T) {
	a := map[string]any{"user": map[string]any{"name": "Amy", "age": 3, "tags": []any{"x", map[string]any{"b": 1, "a": 2}}}}
	b := map[string]any{"user": map[string]any{"tags": []any{"x", map[string]any{"a": 2, "b": 1}}, "age": 3, "name": "Amy"}}

	assert.Equal(t, `{"user":{"age":3,"name":"Amy","tags":["x",{"a":2,"b":1}]}}`, string(Canonical(a)))
	assert.Equal(t, Canonical(a), Canonical(b))
	assert.True(t, Equal(a, b))
}

func TestEncodeKeepsSentinelsReadable(t *testing.T) {
	data, err := Encode(map[string]any{"x": Computed})
	require.NoError(t, err)
	assert.Equal(t, `{"x":"<computed>"}`, string(data))
}

func TestEqualUnserializableValues(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)

	assert.False(t, Equal(nan, inf))
	assert.False(t, Equal(inf, nan))
	assert.True(t, Equal(nan, math.NaN()), "NaN leaves must compare stable across rescans")
	assert.True(t, Equal(inf, math.Inf(1)))
	assert.False(t, Equal(math.Inf(1), math.Inf(-1)))

	assert.False(t, Equal(map[string]any{"v": nan}, map[string]any{"v": inf}))
	assert.True(t, Equal(map[string]any{"v": nan, "w": 1}, map[string]any{"w": 1, "v": nan}))

	canon := Canonical(nan)
	assert.True(t, json.Valid(canon))
	assert.Contains(t, string(canon), "NaN")

	var placeholder string
	require.NoError(t, json.Unmarshal(canon, &placeholder))
	assert.False(t, Equal(nan, placeholder))
	assert.False(t, Equal(placeholder, nan))
}

func TestCanonicalSelfReference(t *testing.T) {
	m := map[string]any{"n": 1}
	m["self"] = m

	canon := Canonical(m)
	assert.Contains(t, string(canon), Circular)
	assert.True(t, Equal(m, m))
	assert.False(t, Equal(m, map[string]any{"n": 1}))
}

func TestUnserializableKeepsDisplayPlaceholder(t *testing.T) {
	assert.Equal(t, "[unserializable float64]", Unserializable(math.NaN()))
}

func TestNormalizeDetaches(t *testing.T) {
	inner := map[string]any{"a": 1}
	list := []any{1, inner}
	orig := map[string]any{"inner": inner, "list": list}

	norm := Normalize(orig).(map[string]any)
	inner["a"] = 2
	list[0] = 9

	assert.Equal(t, map[string]any{
		"inner": map[string]any{"a": 1},
		"list":  []any{1, map[string]any{"a": 1}},
	}, norm)
}

func TestNormalizeSelfContaining(t *testing.T) {
	s := []any{"head", nil}
	s[1] = s
	assert.Equal(t, []any{"head", Circular}, Normalize(s))

	m := map[string]any{"n": 1}
	m["self"] = m
	assert.Equal(t, map[string]any{"n": 1, "self": Circular}, Normalize(m))

	var nilMap map[string]any
	assert.Nil(t, Normalize(nilMap))
	assert.Equal(t, []any{1, 2}, Normalize([2]int{1, 2}))
}

func TestTypeOf(t *testing.T) {
	var nilMap map[string]any
	var nilSlice []any
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, TypeNull},
		{"unset", Unset, TypeNull},
		{"nil map", nilMap, TypeNull},
		{"nil slice", nilSlice, TypeNull},
		{"bool", true, TypeBoolean},
		{"string", "s", TypeString},
		{"int", 3, TypeNumber},
		{"float", 1.5, TypeNumber},
		{"json number", json.Number("7"), TypeNumber},
		{"map", map[string]any{}, TypeObject},
		{"slice", []any{1}, TypeObject},
		{"struct", struct{ A int }{1}, TypeObject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeOf(tt.value))
		})
	}
}

func TestFormat(t *testing.T) {
	var nilMap map[string]any
	assert.Equal(t, "undefined", Format(Unset))
	assert.Equal(t, "null", Format(nil))
	assert.Equal(t, "null", Format(nilMap))
	assert.Equal(t, "3", Format(3))
	assert.Equal(t, "Amy", Format("Amy"))
	assert.Equal(t, "{\n  \"a\": 1\n}", Format(map[string]any{"a": 1}))
	assert.Equal(t, "[Object]", Format(map[string]any{"c": make(chan int)}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "hé...", Truncate("héllo", 2))
	assert.Equal(t, "abc", Truncate("abc", 0))

	long := strings.Repeat("x", 60)
	assert.Len(t, []rune(Truncate(long, 50)), 53)
}

func TestPathHelpers(t *testing.T) {
	assert.Equal(t, "a", Join("", "a"))
	assert.Equal(t, "a.b", Join("a", "b"))
	assert.Equal(t, []string{"a", "b"}, Split("a.b"))
	assert.Nil(t, Split(""))
	assert.Equal(t, []string{"a", "b", "c"}, Snapshot{"c": 1, "a": 2, "b": 3}.Paths())
}
