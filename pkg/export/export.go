// Package export serializes a snapshot into a deterministic, human-readable
// JSON document suitable for offline diffing.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/grovetools/sigscope/pkg/signal"
)

// Serialize renders snap as a JSON object keyed by path, sorted
// lexicographically, indented with two spaces. A value that cannot be
// encoded is replaced by a placeholder string; the rest of the document is
// unaffected.
func Serialize(snap signal.Snapshot) []byte {
	if len(snap) == 0 {
		return []byte("{}\n")
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	paths := snap.Paths()
	for i, path := range paths {
		key, _ := signal.Encode(path)
		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(encodeValue(snap[path]))
		if i < len(paths)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes()
}

func encodeValue(v any) []byte {
	data, err := signal.Encode(v)
	if err != nil {
		return []byte(strconv.Quote(signal.Unserializable(v)))
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "  ", "  "); err != nil {
		return []byte(strconv.Quote(signal.Unserializable(v)))
	}
	return out.Bytes()
}

// Parse decodes an exported document back into a snapshot.
func Parse(data []byte) (signal.Snapshot, error) {
	var snap signal.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}
	if snap == nil {
		snap = make(signal.Snapshot)
	}
	return snap, nil
}

// FileName returns the conventional export file name, embedding the
// millisecond timestamp.
func FileName(t time.Time) string {
	return fmt.Sprintf("signals-%d.json", t.UnixMilli())
}

// WriteFile serializes snap into dir and returns the written path.
func WriteFile(dir string, snap signal.Snapshot, t time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, FileName(t))
	if err := os.WriteFile(path, Serialize(snap), 0644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}

// Difference describes one path that differs between two exports.
type Difference struct {
	Path string `json:"path"`
	Old  any    `json:"old,omitempty"`
	New  any    `json:"new,omitempty"`
	Kind string `json:"kind"` // "added", "removed" or "changed"
}

// Diff compares two snapshots path by path, in path order.
func Diff(before, after signal.Snapshot) []Difference {
	seen := make(signal.Snapshot, len(before)+len(after))
	for p := range before {
		seen[p] = nil
	}
	for p := range after {
		seen[p] = nil
	}

	var out []Difference
	for _, path := range seen.Paths() {
		old, inBefore := before[path]
		cur, inAfter := after[path]
		switch {
		case !inBefore:
			out = append(out, Difference{Path: path, New: cur, Kind: "added"})
		case !inAfter:
			out = append(out, Difference{Path: path, Old: old, Kind: "removed"})
		case !signal.Equal(old, cur):
			out = append(out, Difference{Path: path, Old: old, New: cur, Kind: "changed"})
		}
	}
	return out
}
