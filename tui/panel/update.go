package panel

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/grovetools/sigscope/config"
	"github.com/grovetools/sigscope/pkg/coordinator"
	"github.com/grovetools/sigscope/pkg/filter"
	"github.com/grovetools/sigscope/tui/theme"
)

// nextPosition is the order the position key cycles through.
var nextPosition = map[string]string{
	config.PositionRight:  config.PositionBottom,
	config.PositionBottom: config.PositionLeft,
	config.PositionLeft:   config.PositionRight,
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case notificationMsg:
		cmd = tea.Batch(m.handleNotification(coordinator.Notification(msg)), m.listen())

	case statusClearMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusErr = false
		}

	case flashClearMsg:
		if msg.seq == m.flashSeq {
			m.flash = nil
		}

	case LogLineMsg:
		m.logs = append(m.logs, msg.Line)
		if len(m.logs) > logLines {
			m.logs = m.logs[len(m.logs)-logLines:]
		}

	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	}

	m.refresh()
	if m.quitting {
		return m, tea.Quit
	}
	return m, cmd
}

func (m *Model) handleNotification(n coordinator.Notification) tea.Cmd {
	m.lastUpdate = n.At
	if n.Trigger != coordinator.TriggerPatch || len(n.Changes) == 0 {
		return nil
	}

	m.flashSeq++
	m.flash = make(map[string]bool, len(n.Changes))
	for _, c := range n.Changes {
		m.flash[c.Path] = true
	}
	seq := m.flashSeq
	return tea.Tick(flashDuration, func(time.Time) tea.Msg { return flashClearMsg{seq: seq} })
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.searching {
		return m.handleSearchKey(msg)
	}
	if m.consoleActive {
		return m.handleConsoleKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return nil
	case key.Matches(msg, m.keys.Minimize):
		m.minimized = !m.minimized
		return nil
	}
	if m.minimized {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-max(1, m.viewport.Height))
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(max(1, m.viewport.Height))
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(1 << 30)
	case key.Matches(msg, m.keys.Expand):
		if m.tab == tabSignals && m.cursor < len(m.rows) {
			m.insp.Toggle(m.rows[m.cursor])
		}
	case key.Matches(msg, m.keys.Search):
		m.tab = tabSignals
		m.searching = true
		return m.search.Focus()
	case key.Matches(msg, m.keys.ClearSearch):
		m.search.SetValue("")
		m.showHelp = false
	case key.Matches(msg, m.keys.SwitchTab):
		if m.tab == tabSignals {
			m.tab = tabChanges
		} else {
			m.tab = tabSignals
		}
		m.cursor = 0
	case key.Matches(msg, m.keys.ClearLog):
		m.insp.ClearLog()
		return m.setStatus("Change log cleared", false)
	case key.Matches(msg, m.keys.Export):
		path, err := m.insp.Export("")
		if err != nil {
			return m.setStatus(fmt.Sprintf("Export failed: %v", err), true)
		}
		return m.setStatus("Exported to "+path, false)
	case key.Matches(msg, m.keys.ToggleTheme):
		name := "dark"
		if m.themeName == "dark" {
			name = "light"
		}
		m.theme = theme.NewTheme(name)
		m.themeName = m.theme.Name
		return m.setStatus("Theme: "+m.themeName, false)
	case key.Matches(msg, m.keys.CyclePosition):
		next := nextPosition[m.insp.Position()]
		if next == "" {
			next = config.PositionRight
		}
		if err := m.insp.SetPosition(next); err != nil {
			return m.setStatus(err.Error(), true)
		}
		return m.setStatus("Position: "+next, false)
	case key.Matches(msg, m.keys.Console):
		m.consoleActive = true
		return m.prompt.Focus()
	}
	return nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search.SetValue("")
		m.search.Blur()
		return nil
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.cursor = 0
	return cmd
}

func (m *Model) handleConsoleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.consoleActive = false
		m.prompt.Blur()
		return nil
	case tea.KeyEnter:
		input := strings.TrimSpace(m.prompt.Value())
		m.prompt.SetValue("")
		if input == "" {
			return nil
		}
		out, err := m.console.Eval(input)
		m.appendConsole("> " + input)
		if err != nil {
			m.appendConsole(m.theme.Error.Render(err.Error()))
			return nil
		}
		for _, line := range strings.Split(out, "\n") {
			m.appendConsole(line)
		}
		return nil
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return cmd
}

func (m *Model) appendConsole(line string) {
	m.consoleOut = append(m.consoleOut, line)
	if len(m.consoleOut) > consoleLines {
		m.consoleOut = m.consoleOut[len(m.consoleOut)-consoleLines:]
	}
}

// setStatus shows text until the status timeout passes or a newer status
// replaces it.
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.status = text
	m.statusErr = isErr
	seq := m.statusSeq
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg { return statusClearMsg{seq: seq} })
}

func (m *Model) moveCursor(delta int) {
	n := len(m.rows)
	if m.tab == tabChanges {
		n = len(m.insp.Changes(ChangeLogLimit))
	}
	m.cursor = min(max(m.cursor+delta, 0), max(n-1, 0))
}

// refresh reloads the snapshot and recomputes the visible rows.
func (m *Model) refresh() {
	m.snap = m.insp.Snapshot()
	m.rows = filter.Search(m.snap.Paths(), m.search.Value(), m.fuzzy)
	if m.tab == tabSignals && m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
}
