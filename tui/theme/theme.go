package theme

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const defaultThemeName = "dark"

// --- Kanagawa Dragon (dark) palette ---
const (
	kanagawaDarkGreen              = "#98BB6C"
	kanagawaDarkYellow             = "#FF9E3B"
	kanagawaDarkRed                = "#FF5D62"
	kanagawaDarkOrange             = "#FFA066"
	kanagawaDarkCyan               = "#7E9CD8"
	kanagawaDarkBlue               = "#7FB4CA"
	kanagawaDarkViolet             = "#957FB8"
	kanagawaDarkLightText          = "#DCD7BA"
	kanagawaDarkMutedText          = "#727169"
	kanagawaDarkBorder             = "#363646"
	kanagawaDarkSelectedBackground = "#223249"
	kanagawaDarkSubtleBackground   = "#1F1F28"
)

// --- Kanagawa Lotus (light) palette ---
const (
	kanagawaLightGreen              = "#4E7C5A"
	kanagawaLightYellow             = "#A68A64"
	kanagawaLightRed                = "#C34043"
	kanagawaLightOrange             = "#CC6B4E"
	kanagawaLightCyan               = "#5B8BBE"
	kanagawaLightBlue               = "#4F7CAC"
	kanagawaLightViolet             = "#674D7A"
	kanagawaLightLightText          = "#2B2F42"
	kanagawaLightMutedText          = "#6C7086"
	kanagawaLightBorder             = "#B5BDC5"
	kanagawaLightSelectedBackground = "#E2E6F3"
	kanagawaLightSubtleBackground   = "#F7F7FB"
)

// --- Terminal (ANSI-friendly) palette ---
const (
	terminalGreen              = "2"
	terminalYellow             = "3"
	terminalRed                = "1"
	terminalOrange             = "208"
	terminalCyan               = "6"
	terminalBlue               = "4"
	terminalViolet             = "5"
	terminalLightText          = "7"
	terminalMutedText          = "8"
	terminalBorder             = "8"
	terminalSelectedBackground = "8"
	terminalSubtleBackground   = "0"
)

// Colors encapsulates the palette used by a theme.
type Colors struct {
	Green              lipgloss.TerminalColor
	Yellow             lipgloss.TerminalColor
	Red                lipgloss.TerminalColor
	Orange             lipgloss.TerminalColor
	Cyan               lipgloss.TerminalColor
	Blue               lipgloss.TerminalColor
	Violet             lipgloss.TerminalColor
	LightText          lipgloss.TerminalColor
	MutedText          lipgloss.TerminalColor
	Border             lipgloss.TerminalColor
	SelectedBackground lipgloss.TerminalColor
	SubtleBackground   lipgloss.TerminalColor
}

// Theme holds the pre-configured styles for the inspector.
type Theme struct {
	Name   string
	Colors Colors

	// Headers and titles
	Header lipgloss.Style
	Title  lipgloss.Style

	// Status indicators
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Text styles
	Bold     lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style

	// Signal rows
	Path     lipgloss.Style
	Value    lipgloss.Style
	Type     lipgloss.Style
	Flash    lipgloss.Style // Row updated by the latest patch
	OldValue lipgloss.Style
	NewValue lipgloss.Style

	// Tabs
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style

	// Containers
	Panel      lipgloss.Style
	DetailsBox lipgloss.Style

	// Interactive elements
	Placeholder lipgloss.Style

	// Special styles
	Highlight lipgloss.Style
	Accent    lipgloss.Style
}

var themeRegistry = map[string]func() Colors{
	"dark":     newDarkColors,
	"light":    newLightColors,
	"terminal": newTerminalColors,
}

var themeAliases = map[string]string{
	"kanagawa":       "dark",
	"kanagawa-dark":  "dark",
	"kanagawa-light": "light",
	"ansi":           "terminal",
}

// DefaultTheme is used by components that are not handed a theme, such as
// the log formatter. SIGSCOPE_THEME selects it.
var DefaultTheme = NewTheme(os.Getenv("SIGSCOPE_THEME"))

// NewTheme constructs a theme by palette name. Unknown names fall back to dark.
func NewTheme(name string) *Theme {
	key := normalizeThemeName(name)
	if alias, ok := themeAliases[key]; ok {
		key = alias
	}
	builder, ok := themeRegistry[key]
	if !ok {
		key = defaultThemeName
		builder = themeRegistry[key]
	}
	return newThemeFromColors(key, builder())
}

// Names returns the selectable theme names.
func Names() []string {
	return []string{"dark", "light", "terminal"}
}

// RenderStatus renders text with the appropriate status style.
func (t *Theme) RenderStatus(status, text string) string {
	switch status {
	case "success":
		return t.Success.Render(text)
	case "error":
		return t.Error.Render(text)
	case "warning":
		return t.Warning.Render(text)
	case "info":
		return t.Info.Render(text)
	default:
		return text
	}
}

func newThemeFromColors(name string, colors Colors) *Theme {
	return &Theme{
		Name:   name,
		Colors: colors,

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.LightText),

		Title: lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			MarginBottom(1),

		Success: lipgloss.NewStyle().
			Foreground(colors.Green).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(colors.Red).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(colors.Yellow).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(colors.Cyan).
			Bold(true),

		Bold: lipgloss.NewStyle().
			Bold(true),

		Normal: lipgloss.NewStyle(),

		Muted: lipgloss.NewStyle().
			Foreground(colors.MutedText),

		Selected: lipgloss.NewStyle().
			Background(colors.SelectedBackground).
			Foreground(colors.LightText),

		Path: lipgloss.NewStyle().
			Foreground(colors.Blue),

		Value: lipgloss.NewStyle().
			Foreground(colors.LightText),

		Type: lipgloss.NewStyle().
			Foreground(colors.MutedText).
			Italic(true),

		Flash: lipgloss.NewStyle().
			Foreground(colors.Yellow).
			Bold(true),

		OldValue: lipgloss.NewStyle().
			Foreground(colors.Red),

		NewValue: lipgloss.NewStyle().
			Foreground(colors.Green),

		TabActive: lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Violet).
			Underline(true).
			Padding(0, 1),

		TabInactive: lipgloss.NewStyle().
			Foreground(colors.MutedText).
			Padding(0, 1),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Border).
			Padding(0, 1),

		DetailsBox: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colors.Violet).
			Padding(0, 1),

		Placeholder: lipgloss.NewStyle().
			Foreground(colors.MutedText).
			Italic(true),

		Highlight: lipgloss.NewStyle().
			Foreground(colors.Orange).
			Bold(true),

		Accent: lipgloss.NewStyle().
			Foreground(colors.Violet).
			Bold(true),
	}
}

func normalizeThemeName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, " ", "-")
	normalized = strings.ReplaceAll(normalized, "_", "-")
	return normalized
}

func newDarkColors() Colors {
	return Colors{
		Green:              lipgloss.Color(kanagawaDarkGreen),
		Yellow:             lipgloss.Color(kanagawaDarkYellow),
		Red:                lipgloss.Color(kanagawaDarkRed),
		Orange:             lipgloss.Color(kanagawaDarkOrange),
		Cyan:               lipgloss.Color(kanagawaDarkCyan),
		Blue:               lipgloss.Color(kanagawaDarkBlue),
		Violet:             lipgloss.Color(kanagawaDarkViolet),
		LightText:          lipgloss.Color(kanagawaDarkLightText),
		MutedText:          lipgloss.Color(kanagawaDarkMutedText),
		Border:             lipgloss.Color(kanagawaDarkBorder),
		SelectedBackground: lipgloss.Color(kanagawaDarkSelectedBackground),
		SubtleBackground:   lipgloss.Color(kanagawaDarkSubtleBackground),
	}
}

func newLightColors() Colors {
	return Colors{
		Green:              lipgloss.Color(kanagawaLightGreen),
		Yellow:             lipgloss.Color(kanagawaLightYellow),
		Red:                lipgloss.Color(kanagawaLightRed),
		Orange:             lipgloss.Color(kanagawaLightOrange),
		Cyan:               lipgloss.Color(kanagawaLightCyan),
		Blue:               lipgloss.Color(kanagawaLightBlue),
		Violet:             lipgloss.Color(kanagawaLightViolet),
		LightText:          lipgloss.Color(kanagawaLightLightText),
		MutedText:          lipgloss.Color(kanagawaLightMutedText),
		Border:             lipgloss.Color(kanagawaLightBorder),
		SelectedBackground: lipgloss.Color(kanagawaLightSelectedBackground),
		SubtleBackground:   lipgloss.Color(kanagawaLightSubtleBackground),
	}
}

func newTerminalColors() Colors {
	return Colors{
		Green:              lipgloss.Color(terminalGreen),
		Yellow:             lipgloss.Color(terminalYellow),
		Red:                lipgloss.Color(terminalRed),
		Orange:             lipgloss.Color(terminalOrange),
		Cyan:               lipgloss.Color(terminalCyan),
		Blue:               lipgloss.Color(terminalBlue),
		Violet:             lipgloss.Color(terminalViolet),
		LightText:          lipgloss.Color(terminalLightText),
		MutedText:          lipgloss.Color(terminalMutedText),
		Border:             lipgloss.Color(terminalBorder),
		SelectedBackground: lipgloss.Color(terminalSelectedBackground),
		SubtleBackground:   lipgloss.Color(terminalSubtleBackground),
	}
}
