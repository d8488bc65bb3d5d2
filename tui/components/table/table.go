// Package table renders themed lipgloss tables for command output.
package table

import (
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/grovetools/sigscope/tui/theme"
)

// Builder provides a fluent interface for creating styled tables
type Builder struct {
	table    *ltable.Table
	theme    *theme.Theme
	bordered bool
	muteCol  int
}

// NewBuilder creates a bordered table using the default theme.
func NewBuilder() *Builder {
	return &Builder{
		table:    ltable.New(),
		theme:    theme.DefaultTheme,
		bordered: true,
		muteCol:  -1,
	}
}

// WithTheme sets the theme
func (b *Builder) WithTheme(t *theme.Theme) *Builder {
	b.theme = t
	return b
}

// WithBorder enables or disables the border
func (b *Builder) WithBorder(bordered bool) *Builder {
	b.bordered = bordered
	return b
}

// WithMutedColumn renders column col in the muted style.
func (b *Builder) WithMutedColumn(col int) *Builder {
	b.muteCol = col
	return b
}

// WithHeaders sets the table headers
func (b *Builder) WithHeaders(headers ...string) *Builder {
	b.table = b.table.Headers(headers...)
	return b
}

// WithRows appends rows.
func (b *Builder) WithRows(rows ...[]string) *Builder {
	for _, row := range rows {
		b.table = b.table.Row(row...)
	}
	return b
}

// Build applies borders and styles and returns the table.
func (b *Builder) Build() *ltable.Table {
	t := b.theme
	if b.bordered {
		b.table = b.table.
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(t.Colors.Border))
	} else {
		b.table = b.table.Border(lipgloss.HiddenBorder())
	}

	b.table = b.table.StyleFunc(func(row, col int) lipgloss.Style {
		if row == ltable.HeaderRow {
			return t.Bold.Padding(0, 1)
		}
		if col == b.muteCol {
			return t.Muted.Padding(0, 1)
		}
		return lipgloss.NewStyle().Padding(0, 1)
	})
	return b.table
}

// SimpleTable renders headers and rows with the default styling.
func SimpleTable(headers []string, rows [][]string) string {
	return NewBuilder().WithHeaders(headers...).WithRows(rows...).Build().String()
}

// SignalTable renders signal rows as PATH | TYPE | VALUE with the type column
// muted.
func SignalTable(rows [][]string) string {
	return NewBuilder().
		WithHeaders("PATH", "TYPE", "VALUE").
		WithMutedColumn(1).
		WithRows(rows...).
		Build().
		String()
}
