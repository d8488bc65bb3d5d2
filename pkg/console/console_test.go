package console

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/sigscope/errors"
	"github.com/grovetools/sigscope/pkg/history"
	"github.com/grovetools/sigscope/pkg/signal"
)

type fakeBackend struct {
	values   map[string]any
	changes  []history.Entry
	expanded []string
}

func (f *fakeBackend) GetSignal(path string) (any, bool) {
	v, ok := f.values[path]
	return v, ok
}

func (f *fakeBackend) SetSignal(path string, value any) error {
	if path == "locked" {
		return fmt.Errorf("signal %s is read-only", path)
	}
	f.values[path] = value
	return nil
}

func (f *fakeBackend) Paths() []string {
	paths := make([]string, 0, len(f.values))
	for p := range f.values {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (f *fakeBackend) Changes(limit int) []history.Entry {
	if limit < len(f.changes) {
		return f.changes[:limit]
	}
	return f.changes
}

func (f *fakeBackend) ExpandedPaths() []string { return f.expanded }

func newBackend() *fakeBackend {
	ts := time.Date(2024, 5, 1, 9, 30, 15, 0, time.Local)
	return &fakeBackend{
		values: map[string]any{
			"count":     float64(3),
			"user.name": "Amy",
			"user.prefs": map[string]any{
				"dark": true,
			},
		},
		changes: []history.Entry{
			{Timestamp: ts, Path: "count", OldValue: float64(2), NewValue: float64(3)},
			{Timestamp: ts, Path: "user.name", OldValue: signal.Unset, NewValue: "Amy"},
		},
		expanded: []string{"user.prefs"},
	}
}

func TestEval(t *testing.T) {
	b := newBackend()
	e := New(b)

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"get count", "3"},
		{"  get user.name  ", "Amy"},
		{"$signals.count", "3"},
		{"$signals.user.name()", "Amy"},
		{"get user.prefs", "{\n  \"dark\": true\n}"},
		{"keys", "count\nuser.name\nuser.prefs"},
		{"keys USER", "user.name\nuser.prefs"},
		{"count", "3"},
		{"changes 1", "09:30:15 count: 2 → 3"},
		{"changes", "09:30:15 count: 2 → 3\n09:30:15 user.name: undefined → Amy"},
		{"expanded", "user.prefs"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := e.Eval(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalSet(t *testing.T) {
	b := newBackend()
	e := New(b)

	out, err := e.Eval(`set user.name "Bob Smith"`)
	require.NoError(t, err)
	assert.Equal(t, "user.name = Bob Smith", out)
	assert.Equal(t, "Bob Smith", b.values["user.name"])

	_, err = e.Eval(`set filters {"tags": ["a", "b"]}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"tags": []any{"a", "b"}}, b.values["filters"])

	_, err = e.Eval("set mode dark")
	require.NoError(t, err)
	assert.Equal(t, "dark", b.values["mode"])

	_, err = e.Eval("set locked 1")
	assert.EqualError(t, err, "signal locked is read-only")
}

func TestEvalErrors(t *testing.T) {
	e := New(newBackend())

	tests := []struct {
		input string
		code  errors.ErrorCode
	}{
		{"rm -rf /", errors.ErrCodeInvalidInput},
		{"window.location", errors.ErrCodeInvalidInput},
		{"get", errors.ErrCodeInvalidInput},
		{"get missing", errors.ErrCodeInvalidInput},
		{"$signals.missing", errors.ErrCodeInvalidInput},
		{"set count", errors.ErrCodeInvalidInput},
		{"changes zero", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := e.Eval(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestHelpListsEveryCommand(t *testing.T) {
	out, err := New(newBackend()).Eval("help")
	require.NoError(t, err)
	for name := range commands {
		assert.Contains(t, out, commands[name].usage)
	}
	assert.Contains(t, out, "$signals.<path>")
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, float64(42), ParseValue("42"))
	assert.Equal(t, true, ParseValue("true"))
	assert.Nil(t, ParseValue("null"))
	assert.Equal(t, "hello", ParseValue("hello"))
}
