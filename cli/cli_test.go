package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/sigscope/errors"
	"github.com/grovetools/sigscope/pkg/client"
)

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four five", 9)
	assert.Equal(t, "one two\nthree\nfour five", got)
	assert.Equal(t, "a\nb", wrapText("a\nb", 10))
}

func TestSplitExamples(t *testing.T) {
	desc, ex := splitExamples("Does things.\n\nExamples:\n  sigscope watch\n")
	assert.Equal(t, "Does things.", desc)
	assert.Equal(t, "sigscope watch", ex)

	desc, ex = splitExamples("Only text")
	assert.Equal(t, "Only text", desc)
	assert.Empty(t, ex)
}

func TestStyledHelpListsCommandsAndFlags(t *testing.T) {
	root := NewStandardCommand("sigscope", "Live signal inspector")
	sub := &cobra.Command{Use: "watch", Short: "Open the panel", Run: func(*cobra.Command, []string) {}}
	sub.Flags().Int("limit", 50, "Rows to show")
	root.AddCommand(sub)
	ApplyStyledHelpRecursive(root)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--help"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "SIGSCOPE")
	assert.Contains(t, out.String(), "watch")

	out.Reset()
	root.SetArgs([]string{"watch", "--help"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "--limit")
	assert.Contains(t, out.String(), "(default: 50)")
}

func TestLoadConfigFromFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sigscope.yml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1.0\"\npoll:\n  interval: 500ms\n"), 0o644))

	cmd := NewStandardCommand("sigscope", "test")
	require.NoError(t, cmd.ParseFlags([]string{"--config", path}))
	cfg, err := LoadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval())
}

func TestErrorHandler(t *testing.T) {
	var out bytes.Buffer
	h := &ErrorHandler{Verbose: true, Out: &out}

	err := errors.RootUnavailable("read signals")
	assert.Same(t, err, h.Handle(err))
	assert.Contains(t, out.String(), "root.file")
	assert.Contains(t, out.String(), "ROOT_UNAVAILABLE")

	assert.NoError(t, h.Handle(nil))
}

func TestChangePrinter(t *testing.T) {
	var out bytes.Buffer
	p := NewChangePrinter(&out, true)
	p.Print(client.Change{Path: "count", OldValue: json.RawMessage("1"), NewValue: json.RawMessage("2")})
	p.Done()

	var decoded client.Change
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out.String())), &decoded))
	assert.Equal(t, "count", decoded.Path)

	out.Reset()
	p = NewChangePrinter(&out, false)
	p.Print(client.Change{Path: "user.name", NewValue: json.RawMessage(`"Amy"`)})
	p.Done()
	assert.Contains(t, out.String(), "user.name")
	assert.Contains(t, out.String(), "undefined")
	assert.Contains(t, out.String(), "1 changes")
}
