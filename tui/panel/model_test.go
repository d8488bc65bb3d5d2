package panel

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/sigscope/pkg/coordinator"
	"github.com/grovetools/sigscope/pkg/host"
	"github.com/grovetools/sigscope/pkg/inspector"
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

func newPanel(t *testing.T, opts Options) (*Model, *inspector.Inspector, *memPositions) {
	t.Helper()
	positions := &memPositions{}
	insp, err := inspector.Create(inspector.Options{
		Positions: positions,
		ExportDir: t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = insp.Dispose() })

	insp.Discover(host.Map{
		"count": host.NewVar(1),
		"user":  map[string]any{"name": "Amy", "email": "amy@example.com"},
		"items": []any{1, 2, 3},
	})

	m := New(insp, opts)
	t.Cleanup(m.Close)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, insp, positions
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(runes(string(r)))
	}
}

func TestRowsListEverySignal(t *testing.T) {
	m, _, _ := newPanel(t, Options{})

	assert.Equal(t, []string{"count", "items", "user", "user.email", "user.name"}, m.Rows())
	view := m.View()
	assert.Contains(t, view, "5 signals")
	assert.Contains(t, view, "user.email")
}

func TestSearchFiltersRows(t *testing.T) {
	m, _, _ := newPanel(t, Options{})

	m.Update(runes("/"))
	typeText(m, "NAME")
	assert.Equal(t, []string{"user.name"}, m.Rows())

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"user.name"}, m.Rows(), "query survives leaving the search box")

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Len(t, m.Rows(), 5)
}

func TestFuzzySearch(t *testing.T) {
	m, _, _ := newPanel(t, Options{FuzzySearch: true})

	m.Update(runes("/"))
	typeText(m, "usnm")
	assert.Equal(t, []string{"user.name"}, m.Rows())
}

func TestExpandTogglesDetails(t *testing.T) {
	m, insp, _ := newPanel(t, Options{})

	// cursor: count -> items -> user
	m.Update(runes("j"))
	m.Update(runes("j"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, insp.IsExpanded("user"))
	assert.Contains(t, m.View(), `"email": "amy@example.com"`)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, insp.IsExpanded("user"))
}

func TestPatchFlashesAndLogs(t *testing.T) {
	m, insp, _ := newPanel(t, Options{})

	entries := insp.ApplyPatch(map[string]any{"count": 2})
	require.Len(t, entries, 1)

	_, cmd := m.Update(notificationMsg(coordinator.Notification{
		Trigger: coordinator.TriggerPatch,
		Changes: entries,
		At:      time.Now(),
	}))
	assert.NotNil(t, cmd)
	assert.True(t, m.flash["count"])
	assert.Contains(t, m.View(), "updated ")

	m.Update(flashClearMsg{seq: m.flashSeq - 1})
	assert.True(t, m.flash["count"], "stale clear is ignored")
	m.Update(flashClearMsg{seq: m.flashSeq})
	assert.False(t, m.flash["count"])

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	view := m.View()
	assert.Contains(t, view, "Changes (1)")
	assert.Contains(t, view, "count: 1")
}

func TestClearLogAndStatusReset(t *testing.T) {
	m, insp, _ := newPanel(t, Options{})
	insp.ApplyPatch(map[string]any{"count": 2})

	_, cmd := m.Update(runes("c"))
	assert.NotNil(t, cmd)
	assert.Empty(t, insp.Changes(10))
	assert.Equal(t, "Change log cleared", m.Status())

	m.Update(statusClearMsg{seq: m.statusSeq})
	assert.Empty(t, m.Status())
}

func TestExportWritesFile(t *testing.T) {
	m, _, _ := newPanel(t, Options{})

	m.Update(runes("e"))
	require.True(t, strings.HasPrefix(m.Status(), "Exported to "), m.Status())
	path := strings.TrimPrefix(m.Status(), "Exported to ")
	assert.True(t, strings.HasPrefix(filepath.Base(path), "signals-"))
}

func TestPositionCyclesAndPersists(t *testing.T) {
	m, insp, positions := newPanel(t, Options{})

	m.Update(runes("p"))
	assert.Equal(t, "bottom", insp.Position())
	assert.Equal(t, "bottom", positions.pos)

	m.Update(runes("p"))
	m.Update(runes("p"))
	assert.Equal(t, "right", insp.Position())
}

func TestThemeAndMinimize(t *testing.T) {
	m, _, _ := newPanel(t, Options{Theme: "dark", StartMinimized: true})
	assert.True(t, m.Minimized())

	m.Update(runes("t"))
	assert.Equal(t, "dark", m.ThemeName(), "other keys are ignored while minimized")

	m.Update(runes("m"))
	assert.False(t, m.Minimized())
	m.Update(runes("t"))
	assert.Equal(t, "light", m.ThemeName())
	m.Update(runes("t"))
	assert.Equal(t, "dark", m.ThemeName())
}

func TestConsoleEvaluates(t *testing.T) {
	m, insp, _ := newPanel(t, Options{})

	m.Update(runes(":"))
	typeText(m, "set count 5")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, []string{"> set count 5", "count = 5"}, m.consoleOut)
	v, _ := insp.Get("count")
	assert.Equal(t, float64(5), v)

	typeText(m, "count")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "5", m.consoleOut[len(m.consoleOut)-1])

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m.Update(runes("q"))
	assert.True(t, m.quitting)
}

func TestLogLinesAreKept(t *testing.T) {
	m, _, _ := newPanel(t, Options{})

	w := NewLogWriter(senderFunc(func(msg tea.Msg) { m.Update(msg) }))
	_, err := w.Write([]byte("first\nsecond\nthi"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, m.logs)

	_, _ = w.Write([]byte("rd\n"))
	assert.Equal(t, []string{"second", "third"}, m.logs)
}

func TestChangeLogShowsNewestFifty(t *testing.T) {
	m, insp, _ := newPanel(t, Options{})
	for i := 0; i < 60; i++ {
		insp.ApplyPatch(map[string]any{"count": i + 10})
	}

	lines, _ := m.changeLines(insp.Changes(ChangeLogLimit))
	assert.Len(t, lines, ChangeLogLimit)
	assert.Contains(t, lines[0], "69")
}

type senderFunc func(tea.Msg)

func (f senderFunc) Send(msg tea.Msg) { f(msg) }
