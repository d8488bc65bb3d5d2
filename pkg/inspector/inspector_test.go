package inspector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/sigscope/errors"
	"github.com/grovetools/sigscope/pkg/coordinator"
	"github.com/grovetools/sigscope/pkg/export"
	"github.com/grovetools/sigscope/pkg/host"
	"github.com/grovetools/sigscope/pkg/journal"
	"github.com/grovetools/sigscope/pkg/signal"
	"github.com/grovetools/sigscope/pkg/snapshot"
	"github.com/grovetools/sigscope/pkg/source"
)

type memPositions struct {
	mu  sync.Mutex
	pos string
}

func (m *memPositions) Position(fallback string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pos == "" {
		return fallback
	}
	return m.pos
}

func (m *memPositions) SetPosition(pos string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pos = pos
	return nil
}

func newInspector(t *testing.T, opts Options) *Inspector {
	t.Helper()
	if opts.Positions == nil {
		opts.Positions = &memPositions{}
	}
	insp, err := Create(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = insp.Dispose() })
	return insp
}

func TestCreateIsIdle(t *testing.T) {
	insp := newInspector(t, Options{})

	_, err := uuid.Parse(insp.ID())
	assert.NoError(t, err)
	assert.False(t, insp.HasRoot())
	assert.False(t, insp.Poll())
	assert.Empty(t, insp.Snapshot())
	assert.Equal(t, "right", insp.Position())
}

func TestComputedRootThenPatch(t *testing.T) {
	insp := newInspector(t, Options{})
	insp.Discover(host.Map{"count": host.Func(func() any { return 1 })})

	assert.Equal(t, signal.Snapshot{"count": 1}, insp.Snapshot())

	insp.ApplyPatch(snapshot.Patch{"count": 2})
	got, ok := insp.Get("count")
	require.True(t, ok)
	assert.Equal(t, 2, got)

	newest := insp.Changes(1)
	require.Len(t, newest, 1)
	assert.Equal(t, "count", newest[0].Path)
	assert.Equal(t, 1, newest[0].OldValue)
	assert.Equal(t, 2, newest[0].NewValue)
}

func TestWaitForRoot(t *testing.T) {
	t.Run("times out and stays idle", func(t *testing.T) {
		insp := newInspector(t, Options{
			DiscoveryInterval: 5 * time.Millisecond,
			DiscoveryWindow:   30 * time.Millisecond,
		})
		err := insp.WaitForRoot(context.Background(), func() (any, bool) { return nil, false })
		assert.True(t, errors.Is(err, errors.ErrCodeDiscoveryTimeout))
		assert.False(t, insp.HasRoot())
		assert.Empty(t, insp.Paths())
	})

	t.Run("discovers after a few probes", func(t *testing.T) {
		insp := newInspector(t, Options{DiscoveryInterval: 5 * time.Millisecond})
		probes := 0
		err := insp.WaitForRoot(context.Background(), func() (any, bool) {
			probes++
			if probes < 3 {
				return nil, false
			}
			return host.Map{"ready": true}, true
		})
		require.NoError(t, err)
		assert.True(t, insp.HasRoot())
		assert.Equal(t, []string{"ready"}, insp.Paths())
	})

	t.Run("cancelled", func(t *testing.T) {
		insp := newInspector(t, Options{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := insp.WaitForRoot(ctx, func() (any, bool) { return nil, false })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestGetSignal(t *testing.T) {
	insp := newInspector(t, Options{})

	_, ok := insp.GetSignal("count")
	assert.False(t, ok)

	count := host.NewVar(1)
	insp.Discover(host.Map{
		"count":  count,
		"broken": host.FuncE(func() (any, error) { return nil, fmt.Errorf("boom") }),
		"user":   map[string]any{"name": "Amy", "a.b": "dotted"},
	})
	insp.ApplyPatch(snapshot.Patch{"pushed.only": true})

	_ = count.Set(5)
	v, ok := insp.GetSignal("count")
	require.True(t, ok)
	assert.Equal(t, 5, v, "reads bypass the snapshot")

	v, ok = insp.GetSignal("broken")
	require.True(t, ok)
	assert.Equal(t, signal.Computed, v)

	v, ok = insp.GetSignal("user.a.b")
	require.True(t, ok)
	assert.Equal(t, "dotted", v)

	v, ok = insp.GetSignal("pushed.only")
	require.True(t, ok)
	assert.Equal(t, true, v)

	_, ok = insp.GetSignal("user.missing")
	assert.False(t, ok)
}

func TestSetSignal(t *testing.T) {
	insp := newInspector(t, Options{})

	err := insp.SetSignal("count", 2)
	assert.True(t, errors.Is(err, errors.ErrCodeRootUnavailable))

	count := host.NewVar(1)
	insp.Discover(host.Map{"count": count, "fixed": 3})

	require.NoError(t, insp.SetSignal("count", 2))
	v, _ := count.Get()
	assert.Equal(t, 2, v)
	got, _ := insp.Get("count")
	assert.Equal(t, 2, got)
	require.Len(t, insp.Changes(10), 1)

	err = insp.SetSignal("fixed", 4)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	err = insp.SetSignal("nope", 4)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestIgnorePatterns(t *testing.T) {
	insp := newInspector(t, Options{Ignore: []string{"secret", "*.token"}})
	insp.Discover(host.Map{
		"secret":  map[string]any{"key": "x"},
		"session": map[string]any{"token": "t", "user": "amy"},
	})

	assert.Equal(t, []string{"session", "session.user"}, insp.Paths())

	entries := insp.ApplyPatch(snapshot.Patch{"secret.key": "y", "count": 1})
	require.Len(t, entries, 1)
	assert.Equal(t, "count", entries[0].Path)
}

func TestExport(t *testing.T) {
	clock := func() time.Time { return time.UnixMilli(1700000000123) }
	insp := newInspector(t, Options{Clock: clock, ExportDir: t.TempDir()})
	insp.Discover(host.Map{"count": 3, "user": map[string]any{"name": "Amy"}})

	path, err := insp.Export("")
	require.NoError(t, err)
	assert.Equal(t, "signals-1700000000123.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	parsed, err := export.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"count", "user", "user.name"}, parsed.Paths())
}

func TestPosition(t *testing.T) {
	store := &memPositions{pos: "bottom"}
	insp := newInspector(t, Options{Positions: store, Position: "left"})
	assert.Equal(t, "bottom", insp.Position(), "persisted value wins")

	require.NoError(t, insp.SetPosition("left"))
	assert.Equal(t, "left", insp.Position())
	assert.Equal(t, "left", store.pos)

	err := insp.SetPosition("top")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	assert.Equal(t, "left", insp.Position())
}

func TestExpanded(t *testing.T) {
	insp := newInspector(t, Options{})
	assert.True(t, insp.Toggle("user"))
	insp.RestoreExpanded([]string{"prefs"})
	assert.Equal(t, []string{"prefs", "user"}, insp.ExpandedPaths())
	assert.False(t, insp.Toggle("user"))
	assert.False(t, insp.IsExpanded("user"))
}

// scripted emits its updates, then waits for cancellation.
type scripted struct {
	name    string
	updates []source.Update
}

func (s *scripted) Name() string { return s.name }

func (s *scripted) Run(ctx context.Context, updates chan<- source.Update) error {
	for _, u := range s.updates {
		u.Source = s.name
		select {
		case updates <- u:
		case <-ctx.Done():
			return nil
		}
	}
	<-ctx.Done()
	return nil
}

func TestRunConsumesSources(t *testing.T) {
	j, err := journal.Open(":memory:")
	require.NoError(t, err)

	insp := newInspector(t, Options{Journal: j, Interval: time.Hour})
	sub := insp.Subscribe()

	src := &scripted{name: "feed", updates: []source.Update{
		{Root: host.Map{"count": 1}},
		{Err: fmt.Errorf("transient")},
		{Patch: snapshot.Patch{"count": 2}},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- insp.Run(ctx, src) }()

	waitFor := func(trigger coordinator.Trigger) coordinator.Notification {
		t.Helper()
		for {
			select {
			case n := <-sub:
				if n.Trigger == trigger {
					return n
				}
			case <-time.After(5 * time.Second):
				t.Fatalf("no %s notification", trigger)
			}
		}
	}
	waitFor(coordinator.TriggerPoll)
	n := waitFor(coordinator.TriggerPatch)
	assert.Equal(t, []string{"count"}, n.Paths)

	assert.Eventually(t, func() bool {
		records, err := j.Session(context.Background(), insp.ID(), 10)
		return err == nil && len(records) == 1
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestDisposeIsIdempotent(t *testing.T) {
	insp, err := Create(Options{Positions: &memPositions{}})
	require.NoError(t, err)
	sub := insp.Subscribe()

	require.NoError(t, insp.Dispose())
	require.NoError(t, insp.Dispose())

	_, open := <-sub
	assert.False(t, open)
}
