package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIgnore(t *testing.T) {
	ig, err := NewIgnore([]string{"_internal", "user.*.token", " "})
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		{"_internal", true},
		{"_internal.cache.size", true},
		{"user.alice.token", true},
		{"user.alice.name", false},
		{"count", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ig.Match(tt.path))
		})
	}
}

func TestEmptyIgnore(t *testing.T) {
	ig, err := NewIgnore(nil)
	require.NoError(t, err)
	assert.False(t, ig.Match("anything"))

	var nilIgnore *Ignore
	assert.False(t, nilIgnore.Match("anything"))
}

func TestSearchSubstring(t *testing.T) {
	paths := []string{"count", "user.Name", "user.email", "total"}
	assert.Equal(t, []string{"user.Name"}, Search(paths, "NAME", false))
	assert.Equal(t, []string{"count", "total"}, Search(paths, "t", false))
	assert.Equal(t, paths, Search(paths, "  ", false))
	assert.Empty(t, Search(paths, "zzz", false))
}

func TestSearchFuzzyKeepsOrder(t *testing.T) {
	paths := []string{"user.email", "count", "user.name"}
	got := Search(paths, "usn", true)
	assert.Equal(t, []string{"user.name"}, got)

	got = Search(paths, "user", true)
	assert.Equal(t, []string{"user.email", "user.name"}, got)
}
