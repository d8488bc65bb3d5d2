package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordNewestFirst(t *testing.T) {
	h := New(0)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	h.Record("a", nil, 1, base)
	h.Record("b", 1, 2, base.Add(time.Second))

	entries := h.List(0)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Path)
	assert.Equal(t, 1, entries[0].OldValue)
	assert.Equal(t, 2, entries[0].NewValue)
	assert.Equal(t, "a", entries[1].Path)
}

func TestCapacityEvictsOldest(t *testing.T) {
	h := New(DefaultCapacity)
	base := time.Now()
	for i := 0; i < 150; i++ {
		h.Record(fmt.Sprintf("p%d", i), i, i+1, base.Add(time.Duration(i)*time.Millisecond))
	}

	require.Equal(t, 100, h.Len())
	entries := h.List(0)
	assert.Equal(t, "p149", entries[0].Path)
	assert.Equal(t, "p50", entries[99].Path)
	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i-1].Timestamp.After(entries[i].Timestamp))
	}
}

func TestListLimit(t *testing.T) {
	h := New(10)
	for i := 0; i < 5; i++ {
		h.Record("p", i, i+1, time.Now())
	}
	assert.Len(t, h.List(3), 3)
	assert.Len(t, h.List(50), 5)
	assert.Equal(t, 4, h.List(1)[0].OldValue)
}

func TestListReturnsCopy(t *testing.T) {
	h := New(5)
	h.Record("a", nil, 1, time.Now())
	list := h.List(0)
	list[0].Path = "mutated"
	assert.Equal(t, "a", h.List(0)[0].Path)
}

func TestClear(t *testing.T) {
	h := New(5)
	h.Record("a", nil, 1, time.Now())
	h.Clear()
	assert.Equal(t, 0, h.Len())
	assert.Empty(t, h.List(0))

	h.Record("b", nil, 1, time.Now())
	assert.Equal(t, 1, h.Len())
}
