package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/sigscope/pkg/history"
	"github.com/grovetools/sigscope/pkg/signal"
)

func TestAppendAndRecent(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	ts := time.UnixMilli(1700000000000)
	require.NoError(t, j.Append(ctx, "s1", []history.Entry{
		{Timestamp: ts, Path: "count", OldValue: signal.Unset, NewValue: 1},
		{Timestamp: ts.Add(time.Millisecond), Path: "user", OldValue: nil, NewValue: map[string]any{"b": 1, "a": 2}},
	}))
	require.NoError(t, j.Append(ctx, "s2", []history.Entry{
		{Timestamp: ts.Add(2 * time.Millisecond), Path: "count", OldValue: 1, NewValue: 2},
	}))
	require.NoError(t, j.Append(ctx, "s2", nil))

	all, err := j.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "s2", all[0].Session)
	assert.Equal(t, "1", all[0].OldValue)
	assert.Equal(t, "2", all[0].NewValue)
	assert.Equal(t, `{"a":2,"b":1}`, all[1].NewValue)
	assert.Equal(t, "null", all[2].OldValue)
	assert.Equal(t, ts, all[2].Timestamp)

	limited, err := j.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	s1, err := j.Session(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, s1, 2)
	assert.Equal(t, "user", s1[0].Path)
}

func TestInMemoryJournal(t *testing.T) {
	j, err := Open(":memory:")
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	require.NoError(t, j.Append(ctx, "s", []history.Entry{{Timestamp: time.Now(), Path: "a", NewValue: true}}))
	recs, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "true", recs[0].NewValue)
}
