package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/sigscope/config"
	"github.com/grovetools/sigscope/errors"
	"github.com/grovetools/sigscope/pkg/host"
	"github.com/grovetools/sigscope/pkg/snapshot"
)

func next(t *testing.T, updates <-chan Update) Update {
	t.Helper()
	select {
	case u := <-updates:
		return u
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for update")
		return Update{}
	}
}

// nextPatch skips error updates.
func nextPatch(t *testing.T, updates <-chan Update) snapshot.Patch {
	t.Helper()
	for {
		u := next(t, updates)
		if u.Patch != nil {
			return u.Patch
		}
	}
}

func TestDecodePatch(t *testing.T) {
	t.Run("nested objects spread into paths", func(t *testing.T) {
		p, err := DecodePatch([]byte(`{"user":{"name":"Amy","tags":["a"]},"count":2}`))
		require.NoError(t, err)
		assert.Equal(t, snapshot.Patch{
			"user.name": "Amy",
			"user.tags": []any{"a"},
			"count":     float64(2),
		}, p)
	})

	t.Run("dotted keys kept", func(t *testing.T) {
		p, err := DecodePatch([]byte(`{"a.b":5}`))
		require.NoError(t, err)
		assert.Equal(t, snapshot.Patch{"a.b": float64(5)}, p)
	})

	t.Run("empty object value", func(t *testing.T) {
		p, err := DecodePatch([]byte(`{"form":{}}`))
		require.NoError(t, err)
		assert.Equal(t, snapshot.Patch{"form": map[string]any{}}, p)
	})

	t.Run("not an object", func(t *testing.T) {
		_, err := DecodePatch([]byte(`[1,2]`))
		assert.Error(t, err)
		_, err = DecodePatch([]byte(`null`))
		assert.Error(t, err)
	})
}

func TestParseEvents(t *testing.T) {
	stream := strings.Join([]string{
		": keepalive",
		"event: datastar-patch-signals",
		"data: onlyIfMissing false",
		"data: signals {\"count\":1,",
		"data: signals \"open\":true}",
		"",
		"event: datastar-patch-elements",
		"data: elements <div></div>",
		"",
		"event: datastar-patch-signals",
		"retry: 1000",
		"data: signals {\"count\":2}",
	}, "\n")

	var got []string
	err := ParseEvents(context.Background(), strings.NewReader(stream), DatastarPatchEvent, func(data []byte) bool {
		got = append(got, string(data))
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"{\"count\":1,\n\"open\":true}", `{"count":2}`}, got)
}

func TestParseEventsPlainMessages(t *testing.T) {
	stream := "data: {\"a\":1}\n\nevent: other\ndata: {\"b\":2}\n\n"

	var got []string
	err := ParseEvents(context.Background(), strings.NewReader(stream), "message", func(data []byte) bool {
		got = append(got, string(data))
		return false
	})
	require.NoError(t, err)
	assert.Equal(t, []string{`{"a":1}`}, got)
}

func TestSSESource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: datastar-patch-signals\ndata: signals {\"user\":{\"name\":\"Amy\"}}\n\n")
		fmt.Fprint(w, "event: datastar-patch-signals\ndata: signals not-json\n\n")
		w.(http.Flusher).Flush()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan Update, 10)
	src := NewSSE("app", srv.URL, "")
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx, updates) }()

	u := next(t, updates)
	assert.Equal(t, "app", u.Source)
	assert.Equal(t, snapshot.Patch{"user.name": "Amy"}, u.Patch)

	u = next(t, updates)
	assert.True(t, errors.Is(u.Err, errors.ErrCodeInvalidPatch))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("source did not stop")
	}
}

func TestWebSocketSource(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"count":3}`))
		// Hold the connection until the client goes away.
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan Update, 10)
	src := NewWebSocket("ws", "ws"+strings.TrimPrefix(srv.URL, "http"))
	go func() { _ = src.Run(ctx, updates) }()

	assert.Equal(t, snapshot.Patch{"count": float64(3)}, nextPatch(t, updates))
}

func TestTailSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patches.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"count\":1}\n\n{\"count\":2}\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan Update, 10)
	go func() { _ = NewTail("log", path).Run(ctx, updates) }()

	assert.Equal(t, snapshot.Patch{"count": float64(1)}, nextPatch(t, updates))
	assert.Equal(t, snapshot.Patch{"count": float64(2)}, nextPatch(t, updates))
}

func TestFileRootReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signals.yml")
	require.NoError(t, os.WriteFile(path, []byte("count: 1\nuser:\n  name: Amy\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan Update, 10)
	src := NewFileRoot(path, "").WithDebounce(20 * time.Millisecond)
	go func() { _ = src.Run(ctx, updates) }()

	u := next(t, updates)
	require.NoError(t, u.Err)
	root := u.Root.(host.Map)
	assert.Equal(t, 1, root["count"])
	assert.Equal(t, map[string]any{"name": "Amy"}, root["user"])

	require.NoError(t, os.WriteFile(path, []byte("count: 2\n"), 0o644))
	for {
		u = next(t, updates)
		if root, ok := u.Root.(host.Map); ok && root["count"] == 2 {
			break
		}
	}
}

func TestDecodeDocument(t *testing.T) {
	tests := []struct {
		format string
		data   string
	}{
		{"json", `{"count": 1}`},
		{"yaml", "count: 1\n"},
		{"toml", "count = 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			doc, err := DecodeDocument([]byte(tt.data), tt.format)
			require.NoError(t, err)
			assert.Contains(t, doc, "count")
		})
	}

	_, err := DecodeDocument([]byte("x"), "ini")
	assert.Error(t, err)

	assert.Equal(t, "yaml", FormatOf("a/b.YAML"))
	assert.Equal(t, "toml", FormatOf("b.toml"))
	assert.Equal(t, "json", FormatOf("b"))
}

func TestFromConfig(t *testing.T) {
	sources, err := FromConfig([]config.SourceConfig{
		{Name: "page", Type: config.SourceSSE, URL: "http://localhost/updates"},
		{Name: "ws", Type: config.SourceWebSocket, URL: "ws://localhost/ws"},
		{Name: "bus", Type: config.SourceNATS, Subject: "signals.>"},
		{Name: "log", Type: config.SourceTail, Path: "/tmp/p.jsonl"},
	})
	require.NoError(t, err)
	require.Len(t, sources, 4)
	assert.IsType(t, &SSE{}, sources[0])
	assert.IsType(t, &WebSocket{}, sources[1])
	assert.IsType(t, &NATS{}, sources[2])
	assert.IsType(t, &Tail{}, sources[3])
	assert.Equal(t, "bus", sources[2].Name())

	_, err = FromConfig([]config.SourceConfig{{Name: "x", Type: "carrier-pigeon"}})
	assert.Error(t, err)
}
