package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// Expand replaces a leading "~" with the user's home directory and expands
// $VAR references. Relative paths stay relative.
func Expand(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return os.ExpandEnv(path)
}

// ExpandAll applies Expand to every non-empty pointer target.
func ExpandAll(paths ...*string) {
	for _, p := range paths {
		if p != nil && *p != "" {
			*p = Expand(*p)
		}
	}
}
