package snapshot

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/sigscope/pkg/flatten"
	"github.com/grovetools/sigscope/pkg/host"
	"github.com/grovetools/sigscope/pkg/signal"
)

func TestRescanDetectsChanges(t *testing.T) {
	count := host.NewVar(1)
	root := host.Map{"count": count, "user": map[string]any{"name": "Amy"}}
	s := New()

	assert.True(t, s.Rescan(root), "first scan of a non-empty root is a change")
	assert.False(t, s.Rescan(root), "unchanged root")
	assert.False(t, s.Rescan(root), "still unchanged")

	require.NoError(t, count.Set(2))
	assert.True(t, s.Rescan(root), "leaf value changed")
	v, ok := s.Get("count")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	root["extra"] = true
	assert.True(t, s.Rescan(root), "path set grew")

	delete(root, "extra")
	root["other"] = true
	assert.True(t, s.Rescan(root), "same count but a different path")
}

func TestRescanToleratesKeyOrder(t *testing.T) {
	s := New()
	s.Rescan(host.Map{"obj": map[string]any{"a": 1, "b": 2}})
	assert.False(t, s.Rescan(host.Map{"obj": map[string]any{"b": 2, "a": 1}}))
}

func TestRescanEmptyRoot(t *testing.T) {
	s := New()
	assert.False(t, s.Rescan(host.Map{}))
	assert.Equal(t, 0, s.Len())
}

func TestRescanReplacesPatchedPaths(t *testing.T) {
	s := New()
	s.ApplyPatch(Patch{"ghost": 1})
	assert.True(t, s.Rescan(host.Map{"real": 1}))
	_, ok := s.Get("ghost")
	assert.False(t, ok)
}

func TestRescanWithSkip(t *testing.T) {
	s := New(flatten.WithSkip(func(p string) bool { return p == "hidden" }))
	s.Rescan(host.Map{"hidden": 1, "shown": 2})
	assert.Equal(t, []string{"shown"}, s.Paths())
}

func TestApplyPatchOnEmptyStore(t *testing.T) {
	s := New()
	changes := s.ApplyPatch(Patch{"a.b": 5})

	require.Len(t, changes, 1)
	assert.Equal(t, "a.b", changes[0].Path)
	assert.True(t, signal.IsUnset(changes[0].Old))
	assert.Equal(t, 5, changes[0].New)

	v, ok := s.Get("a.b")
	require.True(t, ok)
	assert.Equal(t, 5, v)
}

func TestApplyPatchIsOverlay(t *testing.T) {
	s := New()
	s.Rescan(host.Map{"a": 1, "b": 2})

	changes := s.ApplyPatch(Patch{"b": 3, "a": 1, "c": nil})

	assert.Equal(t, []Change{
		{Path: "b", Old: 2, New: 3},
		{Path: "c", Old: signal.Unset, New: nil},
	}, changes)
	assert.Equal(t, []string{"a", "b", "c"}, s.Paths())
}

func TestApplyPatchDetachesValues(t *testing.T) {
	s := New()
	live := map[string]any{"n": 1}
	s.ApplyPatch(Patch{"obj": live})
	live["n"] = 2

	v, _ := s.Get("obj")
	assert.Equal(t, map[string]any{"n": 1}, v)
}

func TestAllReturnsCopy(t *testing.T) {
	s := New()
	s.ApplyPatch(Patch{"a": 1})
	all := s.All()
	all["b"] = 2
	assert.Equal(t, 1, s.Len())
}

func TestUnserializableLeafChangesAreDetected(t *testing.T) {
	val := host.NewVar(math.NaN())
	root := host.Map{"ratio": val}
	s := New()

	s.Rescan(root)
	assert.False(t, s.Rescan(root), "NaN compared with NaN is unchanged")

	require.NoError(t, val.Set(math.Inf(1)))
	assert.True(t, s.Rescan(root), "NaN to +Inf is a change")

	changes := s.ApplyPatch(Patch{"ratio": math.Inf(-1)})
	require.Len(t, changes, 1)
	assert.Equal(t, "ratio", changes[0].Path)
	assert.True(t, math.IsInf(changes[0].Old.(float64), 1))
	assert.True(t, math.IsInf(changes[0].New.(float64), -1))
}
