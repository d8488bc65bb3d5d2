package keymap

import "github.com/charmbracelet/bubbles/key"

// Help overlay section titles.
const (
	SectionNavigation = "Navigation"
	SectionSignals    = "Signals"
	SectionPanel      = "Panel"
	SectionSystem     = "System"
)

// Section is a titled column of the help overlay.
type Section struct {
	Name     string
	Bindings []key.Binding
}

// NewSection groups bindings under name.
func NewSection(name string, bindings ...key.Binding) Section {
	return Section{Name: name, Bindings: bindings}
}

// Enabled returns the bindings that are currently active. Bindings disabled
// through overrides drop out of the overlay.
func (s Section) Enabled() []key.Binding {
	var out []key.Binding
	for _, b := range s.Bindings {
		if b.Enabled() {
			out = append(out, b)
		}
	}
	return out
}
