package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/sigscope/tui/theme"
)

func TestResolveLevel(t *testing.T) {
	t.Setenv("SIGSCOPE_LOG_LEVEL", "")
	assert.Equal(t, logrus.InfoLevel, resolveLevel(Config{}))
	assert.Equal(t, logrus.DebugLevel, resolveLevel(Config{Level: "debug"}))
	assert.Equal(t, logrus.InfoLevel, resolveLevel(Config{Level: "loud"}))

	t.Setenv("SIGSCOPE_LOG_LEVEL", "error")
	assert.Equal(t, logrus.ErrorLevel, resolveLevel(Config{Level: "debug"}))
}

func TestShouldLogToStderr(t *testing.T) {
	t.Setenv("SIGSCOPE_DEBUG", "")

	tests := []struct {
		name        string
		mode        string
		level       logrus.Level
		interactive bool
		want        bool
	}{
		{"always", "always", logrus.InfoLevel, true, true},
		{"never", "never", logrus.DebugLevel, false, false},
		{"auto interactive", "", logrus.InfoLevel, true, false},
		{"auto piped", "auto", logrus.InfoLevel, false, true},
		{"auto debug", "auto", logrus.DebugLevel, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Format: FormatConfig{StructuredToStderr: tt.mode}}
			assert.Equal(t, tt.want, shouldLogToStderr(cfg, tt.level, tt.interactive))
		})
	}
}

func TestNewLoggerWritesConfiguredFile(t *testing.T) {
	t.Setenv("SIGSCOPE_LOG_LEVEL", "")
	logPath := filepath.Join(t.TempDir(), "logs", "inspector.log")

	logger := newLogger("inspector", Config{
		File:   FileSinkConfig{Enabled: true, Path: logPath},
		Format: FormatConfig{Preset: "simple", StructuredToStderr: "never"},
	}, true)
	logger.WithField("path", "user.name").Info("signal changed")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "[INFO] signal changed path=user.name\n", string(data))
}

func TestTextFormatter(t *testing.T) {
	t.Run("sorted fields and component", func(t *testing.T) {
		f := &TextFormatter{Config: FormatConfig{DisableTimestamp: true}}
		entry := &logrus.Entry{
			Level:   logrus.WarnLevel,
			Message: "discovery timed out",
			Data:    logrus.Fields{"component": "inspector", "window": "5s", "attempts": 50},
			Time:    time.Now(),
		}
		out, err := f.Format(entry)
		require.NoError(t, err)
		s := string(out)
		assert.True(t, strings.HasPrefix(s, "[WARN] ["))
		assert.Contains(t, s, "inspector")
		assert.True(t, strings.HasSuffix(s, "discovery timed out attempts=50 window=5s\n"))
	})

	t.Run("timestamp", func(t *testing.T) {
		f := &TextFormatter{Config: FormatConfig{DisableComponent: true}}
		ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
		out, err := f.Format(&logrus.Entry{Level: logrus.InfoLevel, Message: "hi", Time: ts, Data: logrus.Fields{}})
		require.NoError(t, err)
		assert.Equal(t, "2024-03-01 12:30:00 [INFO] hi\n", string(out))
	})
}

func TestGlobalOutputRedirect(t *testing.T) {
	var buf bytes.Buffer
	SetGlobalOutput(&buf)
	defer SetGlobalOutput(os.Stderr)

	_, err := GetGlobalOutput().Write([]byte("redirected"))
	require.NoError(t, err)
	assert.Equal(t, "redirected", buf.String())
}

func TestPrettyLogger(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrettyLogger().WithWriter(&buf).WithTheme(theme.NewTheme("terminal"))

	p.Success("exported")
	p.Field("signals", 3)
	p.Change("count", "1", "2")
	p.ErrorPretty("failed", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "exported")
	assert.Contains(t, out, "signals")
	assert.Contains(t, out, "count")
	assert.Contains(t, out, "boom")
}
