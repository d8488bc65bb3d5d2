package panel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/grovetools/sigscope/config"
	"github.com/grovetools/sigscope/pkg/console"
	"github.com/grovetools/sigscope/pkg/history"
	"github.com/grovetools/sigscope/pkg/signal"
	"github.com/grovetools/sigscope/tui/theme"
	"github.com/grovetools/sigscope/tui/utils/scrollbar"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	minSideWidth  = 44
	minBottom     = 12
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.minimized {
		return m.place(m.badge())
	}
	return m.place(m.renderPanel())
}

func (m *Model) screen() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

// panelSize returns the outer size of the panel for the current position.
func (m *Model) panelSize() (int, int) {
	w, h := m.screen()
	if m.insp.Position() == config.PositionBottom {
		return w, min(max(h/2, minBottom), h)
	}
	return min(max(w*2/5, minSideWidth), w), h
}

func (m *Model) place(content string) string {
	w, h := m.screen()
	hpos, vpos := lipgloss.Right, lipgloss.Top
	switch m.insp.Position() {
	case config.PositionLeft:
		hpos = lipgloss.Left
	case config.PositionBottom:
		hpos, vpos = lipgloss.Left, lipgloss.Bottom
	}
	return lipgloss.Place(w, h, hpos, vpos, content)
}

func (m *Model) badge() string {
	t := m.theme
	label := t.Accent.Render("sigscope") + t.Muted.Render(fmt.Sprintf(" %d signals", len(m.snap)))
	return t.Panel.Render(label)
}

func (m *Model) renderPanel() string {
	t := m.theme
	w, h := m.panelSize()
	inner := max(w-4, 10)
	m.help.Width = inner
	changes := m.insp.Changes(ChangeLogLimit)

	var top []string
	top = append(top, m.renderHeader())
	top = append(top, m.renderTabs(len(changes)))
	if m.searching || m.search.Value() != "" {
		top = append(top, m.search.View())
	} else {
		top = append(top, t.Muted.Render(fmt.Sprintf("%s to search", m.keys.Search.Help().Key)))
	}

	var bottom []string
	if m.status != "" {
		style := t.Success
		if m.statusErr {
			style = t.Error
		}
		bottom = append(bottom, style.Render(m.status))
	} else {
		bottom = append(bottom, m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	if m.consoleActive || len(m.consoleOut) > 0 {
		bottom = append(bottom, m.consoleOut...)
		bottom = append(bottom, m.prompt.View())
	}
	for _, line := range m.logs {
		bottom = append(bottom, t.Muted.Render(signal.Truncate(line, inner)))
	}

	bodyHeight := max(h-2-len(top)-len(bottom), 1)
	m.viewport.Width = inner - 1
	m.viewport.Height = bodyHeight

	var lines []string
	cursorLine := 0
	switch {
	case m.showHelp:
		lines = strings.Split(m.help.FullHelpView(m.keys.FullHelp()), "\n")
	case m.tab == tabSignals:
		lines, cursorLine = m.signalLines(inner - 1)
	default:
		lines, cursorLine = m.changeLines(changes)
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.scrollTo(cursorLine)

	body := scrollbar.Overlay(&m.viewport, t.Muted)
	content := strings.Join(append(append(top, body), bottom...), "\n")
	return t.Panel.Width(w - 2).Height(h - 2).Render(content)
}

func (m *Model) renderHeader() string {
	t := m.theme
	header := t.Title.Render("sigscope")
	meta := fmt.Sprintf(" %d signals", len(m.snap))
	if !m.lastUpdate.IsZero() {
		meta += " · updated " + m.lastUpdate.Local().Format("15:04:05")
	}
	return header + t.Muted.Render(meta)
}

func (m *Model) renderTabs(changes int) string {
	t := m.theme
	signals := fmt.Sprintf("Signals (%d)", len(m.rows))
	log := fmt.Sprintf("Changes (%d)", changes)
	if m.tab == tabSignals {
		return t.TabActive.Render(signals) + t.TabInactive.Render(log)
	}
	return t.TabInactive.Render(signals) + t.TabActive.Render(log)
}

// signalLines renders one row per visible path plus the detail box of each
// expanded path. It returns the line index of the cursor row.
func (m *Model) signalLines(width int) ([]string, int) {
	t := m.theme
	if len(m.rows) == 0 {
		if len(m.snap) == 0 && !m.insp.HasRoot() {
			return []string{t.Placeholder.Render("Waiting for signals...")}, 0
		}
		return []string{t.Placeholder.Render("No signals match")}, 0
	}

	var lines []string
	cursorLine := 0
	for i, path := range m.rows {
		v := m.snap[path]
		expanded := m.insp.IsExpanded(path)

		marker := "  "
		if i == m.cursor {
			marker = t.Highlight.Render(theme.IconArrow) + " "
			cursorLine = len(lines)
		}
		icon := theme.IconCollapsed
		if expanded {
			icon = theme.IconExpanded
		}
		pathStyle := t.Path
		if m.flash[path] {
			pathStyle = t.Flash
		}
		lines = append(lines, fmt.Sprintf("%s%s %s %s %s",
			marker,
			icon,
			pathStyle.Render(path),
			t.Type.Render(signal.TypeOf(v)),
			t.Value.Render(signal.Truncate(console.Inline(v), ValueWidth)),
		))

		if expanded {
			box := t.DetailsBox.Width(max(width-6, 10)).Render(signal.Format(v))
			for _, line := range strings.Split(box, "\n") {
				lines = append(lines, "    "+line)
			}
		}
	}
	return lines, cursorLine
}

func (m *Model) changeLines(entries []history.Entry) ([]string, int) {
	t := m.theme
	if len(entries) == 0 {
		return []string{t.Placeholder.Render("No changes recorded")}, 0
	}

	lines := make([]string, 0, len(entries))
	for i, e := range entries {
		marker := "  "
		if i == m.cursor {
			marker = t.Highlight.Render(theme.IconArrow) + " "
		}
		lines = append(lines, fmt.Sprintf("%s%s %s: %s %s %s",
			marker,
			t.Muted.Render(e.Timestamp.Local().Format("15:04:05")),
			t.Path.Render(e.Path),
			t.OldValue.Render(signal.Truncate(console.Inline(e.OldValue), ValueWidth)),
			theme.IconArrow,
			t.NewValue.Render(signal.Truncate(console.Inline(e.NewValue), ValueWidth)),
		))
	}
	return lines, min(m.cursor, len(lines)-1)
}

// scrollTo keeps line visible in the viewport.
func (m *Model) scrollTo(line int) {
	switch {
	case line < m.viewport.YOffset:
		m.viewport.SetYOffset(line)
	case line >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(line - m.viewport.Height + 1)
	}
}
