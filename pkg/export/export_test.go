package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/sigscope/pkg/signal"
)

func TestSerializeRoundTrip(t *testing.T) {
	snap := signal.Snapshot{"count": 3.0, "user.name": "Amy"}

	data := Serialize(snap)
	assert.Equal(t, "{\n  \"count\": 3,\n  \"user.name\": \"Amy\"\n}\n", string(data))

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, snap, parsed)
}

func TestSerializeIsDeterministic(t *testing.T) {
	snap := signal.Snapshot{
		"z":   map[string]any{"b": 1, "a": []any{1, 2}},
		"a":   "<computed>",
		"m.n": nil,
	}
	first := Serialize(snap)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Serialize(snap.Clone()))
	}
	assert.Contains(t, string(first), `"a": "<computed>"`)
	assert.Equal(t, `{
  "a": "<computed>",
  "m.n": null,
  "z": {
    "a": [
      1,
      2
    ],
    "b": 1
  }
}
`, string(first))
}

func TestSerializeUnencodableValue(t *testing.T) {
	cyclic := map[string]any{}
	cyclic["self"] = cyclic
	snap := signal.Snapshot{
		"bad":  cyclic,
		"fn":   func() {},
		"good": 1,
	}

	data := Serialize(snap)
	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "[unserializable map[string]interface {}]", parsed["bad"])
	assert.Equal(t, "[unserializable func()]", parsed["fn"])
	assert.Equal(t, 1.0, parsed["good"])
}

func TestSerializeEmpty(t *testing.T) {
	assert.Equal(t, "{}\n", string(Serialize(nil)))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	ts := time.UnixMilli(1700000000123)

	path, err := WriteFile(filepath.Join(dir, "out"), signal.Snapshot{"a": 1}, ts)
	require.NoError(t, err)
	assert.Equal(t, "signals-1700000000123.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}\n", string(data))
}

func TestDiff(t *testing.T) {
	before := signal.Snapshot{"a": 1.0, "b": "x", "gone": true}
	after := signal.Snapshot{"a": 2.0, "b": "x", "new": nil}

	diffs := Diff(before, after)
	require.Len(t, diffs, 3)
	assert.Equal(t, Difference{Path: "a", Old: 1.0, New: 2.0, Kind: "changed"}, diffs[0])
	assert.Equal(t, Difference{Path: "gone", Old: true, Kind: "removed"}, diffs[1])
	assert.Equal(t, Difference{Path: "new", New: nil, Kind: "added"}, diffs[2])
}
