// Package keymap defines the inspector panel's key bindings and the presets
// and per-key overrides users can configure.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/grovetools/sigscope/config"
)

// Config is the "keybindings" section of sigscope.yml.
//
//	keybindings:
//	  preset: arrows
//	  overrides:
//	    toggle_theme: ["T"]
type Config struct {
	Preset    string    `yaml:"preset"`
	Overrides Overrides `yaml:"overrides"`
}

// Panel holds every binding the inspector panel reacts to.
type Panel struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding

	// Signals
	Expand      key.Binding
	Search      key.Binding
	ClearSearch key.Binding

	// Panel
	SwitchTab     key.Binding
	ClearLog      key.Binding
	Export        key.Binding
	Minimize      key.Binding
	ToggleTheme   key.Binding
	CyclePosition key.Binding
	Console       key.Binding

	// System
	Help key.Binding
	Quit key.Binding
}

// DefaultVim returns the default vim-style bindings.
func DefaultVim() Panel {
	return Panel{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("ctrl+u", "pgup"),
			key.WithHelp("C-u", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("ctrl+d", "pgdown"),
			key.WithHelp("C-d", "page down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),

		Expand: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "expand"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		ClearSearch: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear search"),
		),

		SwitchTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "signals/changes"),
		),
		ClearLog: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear log"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export"),
		),
		Minimize: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "minimize"),
		),
		ToggleTheme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		CyclePosition: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "position"),
		),
		Console: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "console"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// DefaultArrows returns bindings that avoid letter navigation.
func DefaultArrows() Panel {
	p := DefaultVim()
	p.Up = key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("up", "up"),
	)
	p.Down = key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("down", "down"),
	)
	p.PageUp = key.NewBinding(
		key.WithKeys("pgup", "shift+up"),
		key.WithHelp("PgUp", "page up"),
	)
	p.PageDown = key.NewBinding(
		key.WithKeys("pgdown", "shift+down"),
		key.WithHelp("PgDn", "page down"),
	)
	p.Top = key.NewBinding(
		key.WithKeys("home"),
		key.WithHelp("Home", "top"),
	)
	p.Bottom = key.NewBinding(
		key.WithKeys("end"),
		key.WithHelp("End", "bottom"),
	)
	return p
}

// Load builds the panel bindings from the "keybindings" section of cfg:
// the preset first, then per-key overrides. A nil config yields the vim
// preset.
func Load(cfg *config.Config) Panel {
	var kc Config
	if cfg != nil {
		_ = cfg.UnmarshalExtension("keybindings", &kc)
	}

	var p Panel
	switch kc.Preset {
	case "arrows":
		p = DefaultArrows()
	default:
		p = DefaultVim()
	}
	ApplyOverrides(&p, kc.Overrides)
	return p
}

// ShortHelp implements help.KeyMap.
func (k Panel) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Expand, k.SwitchTab, k.Console, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap, one column per section.
func (k Panel) FullHelp() [][]key.Binding {
	sections := k.Sections()
	out := make([][]key.Binding, 0, len(sections))
	for _, s := range sections {
		if enabled := s.Enabled(); len(enabled) > 0 {
			out = append(out, enabled)
		}
	}
	return out
}

// Sections groups the bindings for the help overlay.
func (k Panel) Sections() []Section {
	return []Section{
		NewSection(SectionNavigation, k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom),
		NewSection(SectionSignals, k.Expand, k.Search, k.ClearSearch),
		NewSection(SectionPanel, k.SwitchTab, k.ClearLog, k.Export, k.Minimize, k.ToggleTheme, k.CyclePosition, k.Console),
		NewSection(SectionSystem, k.Help, k.Quit),
	}
}
