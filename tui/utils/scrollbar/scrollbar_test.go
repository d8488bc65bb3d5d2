package scrollbar

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

func TestGenerateFitsWithoutBar(t *testing.T) {
	vp := viewport.New(10, 5)
	vp.SetContent("a\nb")

	for _, cell := range Generate(&vp, 5, lipgloss.NewStyle()) {
		if cell != " " {
			t.Fatalf("expected blank cells, got %q", cell)
		}
	}
}

func TestGenerateThumbFollowsOffset(t *testing.T) {
	vp := viewport.New(10, 2)
	vp.SetContent(strings.Repeat("x\n", 9) + "x")

	cells := Generate(&vp, 2, lipgloss.NewStyle())
	if cells[0] != thumb || cells[1] != track {
		t.Fatalf("expected thumb at top, got %q", cells)
	}

	vp.GotoBottom()
	cells = Generate(&vp, 2, lipgloss.NewStyle())
	if cells[0] != track || cells[1] != thumb {
		t.Fatalf("expected thumb at bottom, got %q", cells)
	}
}
