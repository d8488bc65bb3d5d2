package theme

import "os"

// Icons used by the panel. SIGSCOPE_ASCII=1 swaps them for plain ASCII on
// terminals without the glyphs.
var (
	IconExpanded  = "▾"
	IconCollapsed = "▸"
	IconArrow     = "→"
	IconSuccess   = "✓"
	IconError     = "✗"
	IconWarning   = "⚠"
	IconBullet    = "•"
)

func init() {
	if os.Getenv("SIGSCOPE_ASCII") == "1" {
		IconExpanded = "v"
		IconCollapsed = ">"
		IconArrow = "->"
		IconSuccess = "ok"
		IconError = "x"
		IconWarning = "!"
		IconBullet = "*"
	}
}
