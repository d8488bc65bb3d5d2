package expanded

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleTwiceRestoresMembership(t *testing.T) {
	tr := New()

	assert.True(t, tr.Toggle("user.name"))
	assert.True(t, tr.IsExpanded("user.name"))
	assert.False(t, tr.Toggle("user.name"))
	assert.False(t, tr.IsExpanded("user.name"))

	tr.AddAll([]string{"count"})
	tr.Toggle("count")
	tr.Toggle("count")
	assert.True(t, tr.IsExpanded("count"))
}

func TestAddAllIsIdempotent(t *testing.T) {
	tr := New()
	tr.AddAll([]string{"b", "a"})
	tr.AddAll([]string{"a"})

	assert.Equal(t, []string{"a", "b"}, tr.Paths())
	assert.Equal(t, 2, tr.Len())
}
