package main

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/grovetools/tend/pkg/fs"
)

// findSigscopeBinary finds the sigscope binary under test.
// It relies on the PATH including the locally built ./bin directory.
func findSigscopeBinary() (string, error) {
	path, err := exec.LookPath("sigscope")
	if err != nil {
		return "", fmt.Errorf("could not find 'sigscope' binary in PATH. Build it into ./bin first")
	}
	return path, nil
}

// rootDocument is the signal root written by most scenarios.
const rootDocument = `{
  "count": 1,
  "user": {"name": "Amy", "email": "amy@example.com"},
  "items": [1, 2, 3]
}
`

// writeProject writes sigscope.yml and the root document into dir. Extra
// YAML is appended to the config verbatim.
func writeProject(dir, extra string) error {
	rootPath := filepath.Join(dir, "state.json")
	if err := fs.WriteString(rootPath, rootDocument); err != nil {
		return err
	}
	config := fmt.Sprintf(`version: "1.0"
root:
  file: %s
poll:
  interval: 200ms
daemon:
  socket: %s
`, rootPath, filepath.Join(dir, "sigscope.sock"))
	return fs.WriteString(filepath.Join(dir, "sigscope.yml"), config+extra)
}
