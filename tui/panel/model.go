// Package panel is the interactive inspector panel: a searchable signal
// list with expandable details, a change log, and a small command console.
package panel

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/grovetools/sigscope/pkg/console"
	"github.com/grovetools/sigscope/pkg/coordinator"
	"github.com/grovetools/sigscope/pkg/inspector"
	"github.com/grovetools/sigscope/pkg/signal"
	"github.com/grovetools/sigscope/tui/keymap"
	"github.com/grovetools/sigscope/tui/theme"
)

const (
	// ChangeLogLimit is how many of the newest changes the log tab shows.
	ChangeLogLimit = 50
	// ValueWidth is the maximum rendered width of a value in a row.
	ValueWidth = 50

	statusTimeout = 2 * time.Second
	flashDuration = 600 * time.Millisecond
	consoleLines  = 4
	logLines      = 2
)

type tab int

const (
	tabSignals tab = iota
	tabChanges
)

// Options configures a panel.
type Options struct {
	Theme          string
	StartMinimized bool
	FuzzySearch    bool
	Keys           *keymap.Panel
}

type (
	notificationMsg coordinator.Notification
	statusClearMsg  struct{ seq int }
	flashClearMsg   struct{ seq int }
)

// Model is the bubbletea model of the panel.
type Model struct {
	insp    *inspector.Inspector
	console *console.Evaluator
	sub     chan coordinator.Notification

	keys      keymap.Panel
	help      help.Model
	theme     *theme.Theme
	themeName string

	width, height int
	viewport      viewport.Model

	tab       tab
	cursor    int
	minimized bool
	showHelp  bool
	fuzzy     bool

	search    textinput.Model
	searching bool

	prompt        textinput.Model
	consoleActive bool
	consoleOut    []string

	snap       signal.Snapshot
	rows       []string
	lastUpdate time.Time

	status    string
	statusErr bool
	statusSeq int
	flash     map[string]bool
	flashSeq  int
	logs      []string
	quitting  bool
}

// New creates a panel over insp and subscribes to its notifications. Call
// Close when done.
func New(insp *inspector.Inspector, opts Options) *Model {
	keys := keymap.DefaultVim()
	if opts.Keys != nil {
		keys = *opts.Keys
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "filter signals"

	prompt := textinput.New()
	prompt.Prompt = "> "
	prompt.Placeholder = "help"

	t := theme.NewTheme(opts.Theme)
	m := &Model{
		insp:      insp,
		console:   console.New(insp),
		sub:       insp.Subscribe(),
		keys:      keys,
		help:      help.New(),
		theme:     t,
		themeName: t.Name,
		viewport:  viewport.New(0, 0),
		minimized: opts.StartMinimized,
		fuzzy:     opts.FuzzySearch,
		search:    search,
		prompt:    prompt,
	}
	m.refresh()
	return m
}

// Close unsubscribes from the inspector.
func (m *Model) Close() {
	m.insp.Unsubscribe(m.sub)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.listen()
}

// listen waits for the next inspector notification.
func (m *Model) listen() tea.Cmd {
	ch := m.sub
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return notificationMsg(n)
	}
}

// Rows returns the paths currently listed on the signals tab.
func (m *Model) Rows() []string { return m.rows }

// Status returns the transient status message, if any.
func (m *Model) Status() string { return m.status }

// Minimized reports whether the panel is collapsed to its badge.
func (m *Model) Minimized() bool { return m.minimized }

// ThemeName returns the active theme.
func (m *Model) ThemeName() string { return m.themeName }
