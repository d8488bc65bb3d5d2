package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/sigscope/errors"
)

func TestLoadFromBytesDefaults(t *testing.T) {
	cfg, err := LoadFromBytes([]byte("version: \"1.0\"\n"), "yaml")
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.PollInterval())
	assert.Equal(t, 100, cfg.History.Capacity)
	assert.Equal(t, PositionRight, cfg.Display.Position)
	assert.Equal(t, "dark", cfg.Display.Theme)
}

func TestLoadFromBytesSources(t *testing.T) {
	yamlContent := []byte(`
version: "1.0"
poll:
  interval: 500ms
display:
  position: bottom
  ignore: ["_internal"]
sources:
  - name: app
    type: sse
    url: http://localhost:8080/updates
  - name: bus
    type: nats
    subject: signals.patch
`)
	cfg, err := LoadFromBytes(yamlContent, "yaml")
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval())
	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, "datastar-patch-signals", cfg.Sources[0].Event)
	assert.Empty(t, cfg.Sources[1].Event)
	assert.Equal(t, []string{"_internal"}, cfg.Display.Ignore)
}

// TestExtensions verifies that unknown top-level sections are kept and can be
// decoded by their consumers.
func TestExtensions(t *testing.T) {
	yamlContent := []byte(`
version: "1.0"
logging:
  level: debug
  format:
    preset: json
`)
	cfg, err := LoadFromBytes(yamlContent, "yaml")
	require.NoError(t, err)

	type formatSection struct {
		Preset string `yaml:"preset"`
	}
	type loggingSection struct {
		Level  string        `yaml:"level"`
		Format formatSection `yaml:"format"`
	}
	var lc loggingSection
	require.NoError(t, cfg.UnmarshalExtension("logging", &lc))
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, "json", lc.Format.Preset)

	var missing loggingSection
	require.NoError(t, cfg.UnmarshalExtension("absent", &missing))
	assert.Empty(t, missing.Level)
}

func TestLoadTOML(t *testing.T) {
	tomlContent := []byte(`
version = "1.0"

[history]
capacity = 25

[[sources]]
name = "log"
type = "tail"
path = "/tmp/patches.jsonl"

[logging]
level = "warn"
`)
	cfg, err := LoadFromBytes(tomlContent, "toml")
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.History.Capacity)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, SourceTail, cfg.Sources[0].Type)
	assert.Contains(t, cfg.Extensions, "logging")
	assert.NotContains(t, cfg.Extensions, "history")
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		code errors.ErrorCode
	}{
		{"bad interval", "poll:\n  interval: soon\n", errors.ErrCodeConfigValidation},
		{"tiny interval", "poll:\n  interval: 1ms\n", errors.ErrCodeConfigValidation},
		{"bad position", "display:\n  position: top\n", errors.ErrCodeConfigInvalid},
		{"unknown source type", "sources:\n  - name: x\n    type: carrier-pigeon\n", errors.ErrCodeConfigInvalid},
		{"sse without url", "sources:\n  - name: x\n    type: sse\n", errors.ErrCodeConfigValidation},
		{"tail without path", "sources:\n  - name: x\n    type: tail\n", errors.ErrCodeConfigValidation},
		{"duplicate names", "sources:\n  - {name: x, type: tail, path: a}\n  - {name: x, type: tail, path: b}\n", errors.ErrCodeConfigValidation},
		{"unparseable", "version: [\n", errors.ErrCodeConfigInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.yaml), "yaml")
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestLoadFromWalksUpAndMergesGlobal(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SIGSCOPE_HOME", home)
	globalDir := filepath.Join(home, "config", "sigscope")
	require.NoError(t, os.MkdirAll(globalDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(globalDir, "sigscope.yml"),
		[]byte("display:\n  theme: light\n  position: left\nhistory:\n  capacity: 10\n"), 0644))

	project := t.TempDir()
	nested := filepath.Join(project, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(project, ".env"), []byte("SIGSCOPE_TEST_EXPORT_DIR=/tmp/exports\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(project, "sigscope.yml"),
		[]byte("display:\n  position: bottom\nexport:\n  dir: ${SIGSCOPE_TEST_EXPORT_DIR}\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("SIGSCOPE_TEST_EXPORT_DIR") })

	cfg, err := LoadFrom(nested)
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.Display.Theme)
	assert.Equal(t, PositionBottom, cfg.Display.Position)
	assert.Equal(t, 10, cfg.History.Capacity)
	assert.Equal(t, "/tmp/exports", cfg.Export.Dir)
}

func TestLoadOrDefaultWithoutFiles(t *testing.T) {
	t.Setenv("SIGSCOPE_HOME", t.TempDir())

	_, err := LoadFrom(t.TempDir())
	assert.True(t, errors.Is(err, errors.ErrCodeConfigNotFound))

	cfg, err := LoadOrDefault(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "1.0", cfg.Version)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.True(t, errors.Is(err, errors.ErrCodeConfigNotFound))
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SIGSCOPE_TEST_VAR", "value")
	assert.Equal(t, "a=value b=fallback", expandEnvVars("a=${SIGSCOPE_TEST_VAR} b=${SIGSCOPE_TEST_UNSET:-fallback}"))
}

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"poll"`)
	assert.Contains(t, string(data), `"websocket"`)
	assert.NotContains(t, string(data), "Extensions")
}

func TestPathsExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := LoadFromBytes([]byte("version: \"1.0\"\nroot:\n  file: ~/state.json\njournal:\n  path: ~/journal.db\n"), "yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "state.json"), cfg.Root.File)
	assert.Equal(t, filepath.Join(home, "journal.db"), cfg.Journal.Path)
}
