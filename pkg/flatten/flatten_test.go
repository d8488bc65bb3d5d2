package flatten

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/sigscope/pkg/host"
	"github.com/grovetools/sigscope/pkg/signal"
)

func TestFlattenNestedTree(t *testing.T) {
	root := host.Map{
		"count": host.Func(func() any { return 1 }),
		"user": map[string]any{
			"name": "Amy",
			"tags": []any{"a", map[string]any{"deep": true}},
		},
		"missing": host.Undefined,
		"nothing": nil,
	}

	snap := Flatten(root)

	assert.Equal(t, []string{"count", "nothing", "user", "user.name", "user.tags"}, snap.Paths())
	assert.Equal(t, 1, snap["count"])
	assert.Nil(t, snap["nothing"])
	assert.Equal(t, "Amy", snap["user.name"])
	assert.Equal(t, []any{"a", map[string]any{"deep": true}}, snap["user.tags"])
	assert.Equal(t, map[string]any{
		"name": "Amy",
		"tags": []any{"a", map[string]any{"deep": true}},
	}, snap["user"])
	_, recorded := snap["missing"]
	assert.False(t, recorded, "undefined properties must not be recorded")
}

func TestFlattenComputedFailures(t *testing.T) {
	root := host.Map{
		"broken": host.FuncE(func() (any, error) { return nil, errors.New("needs deps") }),
		"panics": host.Func(func() any { panic("boom") }),
		"nested": host.FuncE(func() (any, error) {
			return nil, errors.New("no")
		}),
		"ok": host.Func(func() any { return "fine" }),
	}

	snap := Flatten(root)

	assert.Equal(t, signal.Computed, snap["broken"])
	assert.Equal(t, signal.Computed, snap["panics"])
	assert.Equal(t, signal.Computed, snap["nested"])
	assert.Equal(t, "fine", snap["ok"])
	assert.Len(t, snap, 4)
}

func TestFlattenCallableReturningContainer(t *testing.T) {
	cell := host.NewVar(map[string]any{"x": 1.0, "y": 2.0})
	snap := Flatten(host.Map{"point": cell})

	assert.Equal(t, []string{"point", "point.x", "point.y"}, snap.Paths())
	assert.Equal(t, 2.0, snap["point.y"])
}

func TestFlattenPlainFunctions(t *testing.T) {
	snap := Flatten(map[string]any{
		"a": func() any { return "x" },
		"b": func() (any, error) { return nil, errors.New("fail") },
		"c": func() int { return 7 },
	})

	assert.Equal(t, "x", snap["a"])
	assert.Equal(t, signal.Computed, snap["b"])
	assert.Equal(t, 7, snap["c"])
}

func TestFlattenCycleGuard(t *testing.T) {
	node := map[string]any{"name": "loop"}
	node["self"] = node
	root := map[string]any{"node": node}

	snap := Flatten(root)

	assert.Equal(t, "loop", snap["node.name"])
	assert.Equal(t, signal.Circular, snap["node.self"])
	assert.Equal(t, []string{"node", "node.name", "node.self"}, snap.Paths())
}

func TestFlattenSharedSubtreeIsNotACycle(t *testing.T) {
	shared := map[string]any{"v": 1}
	snap := Flatten(map[string]any{"a": shared, "b": shared})

	assert.Equal(t, 1, snap["a.v"])
	assert.Equal(t, 1, snap["b.v"])
}

func TestFlattenSkip(t *testing.T) {
	root := host.Map{
		"_internal": map[string]any{"secret": 1},
		"public":    2,
	}
	snap := Flatten(root, WithSkip(func(path string) bool {
		return strings.HasPrefix(path, "_")
	}))

	assert.Equal(t, []string{"public"}, snap.Paths())
}

func TestFlattenDoesNotMutateRoot(t *testing.T) {
	root := map[string]any{"user": map[string]any{"name": "Amy"}}
	_ = Flatten(root)
	assert.Equal(t, map[string]any{"user": map[string]any{"name": "Amy"}}, root)
}

func TestFlattenNonContainerRoot(t *testing.T) {
	assert.Empty(t, Flatten(nil))
	assert.Empty(t, Flatten(42))
}

func TestLeaves(t *testing.T) {
	snap := Leaves(map[string]any{
		"count": 2.0,
		"user":  map[string]any{"name": "Bo"},
		"empty": map[string]any{},
	})

	require.Len(t, snap, 3)
	assert.Equal(t, 2.0, snap["count"])
	assert.Equal(t, "Bo", snap["user.name"])
	assert.Equal(t, map[string]any{}, snap["empty"])
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  Kind
	}{
		{"nil", nil, KindNull},
		{"undefined", host.Undefined, KindUndefined},
		{"string", "s", KindPrimitive},
		{"number", 1.5, KindPrimitive},
		{"slice", []any{1}, KindSequence},
		{"typed slice", []int{1}, KindSequence},
		{"map", map[string]any{}, KindContainer},
		{"typed map", map[string]int{}, KindContainer},
		{"nil map", map[string]any(nil), KindNull},
		{"nil host map", host.Map(nil), KindNull},
		{"nil typed map", map[string]int(nil), KindNull},
		{"int keyed map", map[int]int{}, KindPrimitive},
		{"getter", host.NewVar(1), KindCallable},
		{"func", func() string { return "" }, KindCallable},
		{"func with args", func(int) string { return "" }, KindPrimitive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.value))
		})
	}
}

func TestFlattenNilMapIsNull(t *testing.T) {
	root := host.Map{
		"direct":   map[string]any(nil),
		"computed": host.Func(func() any { return map[string]any(nil) }),
	}

	snap := Flatten(root)

	assert.Equal(t, []string{"computed", "direct"}, snap.Paths())
	assert.Nil(t, snap["direct"])
	assert.Nil(t, snap["computed"])
	assert.Equal(t, signal.TypeNull, signal.TypeOf(snap["direct"]))
}
