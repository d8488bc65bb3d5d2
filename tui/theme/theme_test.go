package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewThemeResolvesNames(t *testing.T) {
	assert.Equal(t, "dark", NewTheme("").Name)
	assert.Equal(t, "light", NewTheme(" Light ").Name)
	assert.Equal(t, "dark", NewTheme("kanagawa").Name)
	assert.Equal(t, "terminal", NewTheme("ansi").Name)
	assert.Equal(t, "dark", NewTheme("solarized").Name)
}

func TestRenderStatusKeepsText(t *testing.T) {
	th := NewTheme("terminal")
	assert.Contains(t, th.RenderStatus("success", "done"), "done")
	assert.Equal(t, "plain", th.RenderStatus("other", "plain"))
}
