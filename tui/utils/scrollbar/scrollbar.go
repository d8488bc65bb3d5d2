// Package scrollbar draws a one-column scrollbar next to a viewport.
package scrollbar

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

const (
	thumb = "█"
	track = "░"
)

// Generate returns one scrollbar cell per line of height for vp.
func Generate(vp *viewport.Model, height int, style lipgloss.Style) []string {
	if height <= 0 {
		return nil
	}
	cells := make([]string, height)

	total := vp.TotalLineCount()
	switch {
	case total == 0:
		for i := range cells {
			cells[i] = " "
		}
		return cells
	case total <= vp.Height:
		// Everything fits; no bar.
		for i := range cells {
			cells[i] = " "
		}
		return cells
	}

	size := max(1, height*vp.Height/total)
	percent := min(max(vp.ScrollPercent(), 0), 1)
	last := height - size
	start := min(max(int(float64(last)*percent+0.5), 0), last)

	for i := range cells {
		if i >= start && i < start+size {
			cells[i] = style.Render(thumb)
		} else {
			cells[i] = style.Render(track)
		}
	}
	return cells
}

// Overlay returns the viewport's visible content with a scrollbar appended to
// each line.
func Overlay(vp *viewport.Model, style lipgloss.Style) string {
	lines := strings.Split(vp.View(), "\n")
	bar := Generate(vp, len(lines), style)
	for i := range lines {
		lines[i] += bar[i]
	}
	return strings.Join(lines, "\n")
}
