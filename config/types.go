package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/grovetools/sigscope/util/pathutil"
)

// Source types accepted in the sources section.
const (
	SourceSSE       = "sse"
	SourceWebSocket = "websocket"
	SourceNATS      = "nats"
	SourceTail      = "tail"
)

// Panel positions.
const (
	PositionRight  = "right"
	PositionLeft   = "left"
	PositionBottom = "bottom"
)

// RootConfig points at the document that acts as the signal root.
type RootConfig struct {
	File   string `yaml:"file,omitempty" toml:"file,omitempty" json:"file,omitempty" jsonschema:"description=Path to a JSON, YAML or TOML document whose contents are the signal tree"`
	Format string `yaml:"format,omitempty" toml:"format,omitempty" json:"format,omitempty" jsonschema:"enum=json,enum=yaml,enum=toml,description=Document format; inferred from the file extension when empty"`
}

// PollConfig controls the periodic rescan.
type PollConfig struct {
	Interval string `yaml:"interval,omitempty" toml:"interval,omitempty" json:"interval,omitempty" jsonschema:"description=Rescan period as a Go duration (default: 2s)"`
}

// HistoryConfig controls the in-memory change log.
type HistoryConfig struct {
	Capacity int `yaml:"capacity,omitempty" toml:"capacity,omitempty" json:"capacity,omitempty" jsonschema:"minimum=1,description=Maximum number of retained changes (default: 100)"`
}

// DisplayConfig holds panel preferences.
type DisplayConfig struct {
	Position       string   `yaml:"position,omitempty" toml:"position,omitempty" json:"position,omitempty" jsonschema:"enum=right,enum=left,enum=bottom,description=Initial panel position when no preference is stored"`
	Theme          string   `yaml:"theme,omitempty" toml:"theme,omitempty" json:"theme,omitempty" jsonschema:"enum=dark,enum=light,description=Panel color theme"`
	StartMinimized bool     `yaml:"start_minimized,omitempty" toml:"start_minimized,omitempty" json:"start_minimized,omitempty" jsonschema:"description=Start with the panel minimized"`
	FuzzySearch    bool     `yaml:"fuzzy_search,omitempty" toml:"fuzzy_search,omitempty" json:"fuzzy_search,omitempty" jsonschema:"description=Use fuzzy matching for the search box"`
	Ignore         []string `yaml:"ignore,omitempty" toml:"ignore,omitempty" json:"ignore,omitempty" jsonschema:"description=Path patterns excluded from scans (dots or slashes as separators)"`
}

// SourceConfig describes one patch source.
type SourceConfig struct {
	Name    string `yaml:"name" toml:"name" json:"name" jsonschema:"required,description=Unique source name used in logs and metrics"`
	Type    string `yaml:"type" toml:"type" json:"type" jsonschema:"required,enum=sse,enum=websocket,enum=nats,enum=tail,description=Transport delivering patches"`
	URL     string `yaml:"url,omitempty" toml:"url,omitempty" json:"url,omitempty" jsonschema:"description=Endpoint for sse, websocket and nats sources"`
	Subject string `yaml:"subject,omitempty" toml:"subject,omitempty" json:"subject,omitempty" jsonschema:"description=NATS subject carrying patches"`
	Path    string `yaml:"path,omitempty" toml:"path,omitempty" json:"path,omitempty" jsonschema:"description=File followed by a tail source (one JSON patch per line)"`
	Event   string `yaml:"event,omitempty" toml:"event,omitempty" json:"event,omitempty" jsonschema:"description=SSE event name carrying patches (default: datastar-patch-signals)"`
}

// ExportConfig controls where exports are written.
type ExportConfig struct {
	Dir string `yaml:"dir,omitempty" toml:"dir,omitempty" json:"dir,omitempty" jsonschema:"description=Directory for exported snapshots (default: current directory)"`
}

// JournalConfig controls the persistent change journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled,omitempty" toml:"enabled,omitempty" json:"enabled,omitempty" jsonschema:"description=Persist every recorded change to SQLite"`
	Path    string `yaml:"path,omitempty" toml:"path,omitempty" json:"path,omitempty" jsonschema:"description=Journal database path (default: data dir)"`
}

// DaemonConfig controls the background inspector service.
type DaemonConfig struct {
	Socket string `yaml:"socket,omitempty" toml:"socket,omitempty" json:"socket,omitempty" jsonschema:"description=Unix socket path (default: runtime dir)"`
}

// Config represents the sigscope.yml configuration
type Config struct {
	Version string        `yaml:"version" toml:"version" json:"version" jsonschema:"description=Configuration version (e.g. 1.0)"`
	Root    RootConfig    `yaml:"root,omitempty" toml:"root,omitempty" json:"root,omitempty" jsonschema:"description=Signal root document"`
	Poll    PollConfig    `yaml:"poll,omitempty" toml:"poll,omitempty" json:"poll,omitempty" jsonschema:"description=Periodic rescan settings"`
	History HistoryConfig `yaml:"history,omitempty" toml:"history,omitempty" json:"history,omitempty" jsonschema:"description=Change history settings"`
	Display DisplayConfig `yaml:"display,omitempty" toml:"display,omitempty" json:"display,omitempty" jsonschema:"description=Panel appearance and behavior"`

	Sources []SourceConfig `yaml:"sources,omitempty" toml:"sources,omitempty" json:"sources,omitempty" jsonschema:"description=Patch sources"`

	Export  ExportConfig  `yaml:"export,omitempty" toml:"export,omitempty" json:"export,omitempty" jsonschema:"description=Snapshot export settings"`
	Journal JournalConfig `yaml:"journal,omitempty" toml:"journal,omitempty" json:"journal,omitempty" jsonschema:"description=Persistent change journal"`
	Daemon  DaemonConfig  `yaml:"daemon,omitempty" toml:"daemon,omitempty" json:"daemon,omitempty" jsonschema:"description=Background service settings"`

	// Extensions captures all other top-level keys for extensibility.
	Extensions map[string]interface{} `yaml:",inline" toml:"-" json:"-" jsonschema:"-"`
}

// knownKeys lists the top-level keys that map onto Config fields.
var knownKeys = map[string]bool{
	"version": true, "root": true, "poll": true, "history": true, "display": true,
	"sources": true, "export": true, "journal": true, "daemon": true,
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// SetDefaults sets default values for configuration
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}
	if c.Poll.Interval == "" {
		c.Poll.Interval = "2s"
	}
	if c.History.Capacity == 0 {
		c.History.Capacity = 100
	}
	if c.Display.Position == "" {
		c.Display.Position = PositionRight
	}
	if c.Display.Theme == "" {
		c.Display.Theme = "dark"
	}
	for i := range c.Sources {
		if c.Sources[i].Type == SourceSSE && c.Sources[i].Event == "" {
			c.Sources[i].Event = "datastar-patch-signals"
		}
	}
}

// expandPaths resolves "~" and environment references in path settings.
func (c *Config) expandPaths() {
	pathutil.ExpandAll(&c.Root.File, &c.Export.Dir, &c.Journal.Path, &c.Daemon.Socket)
	for i := range c.Sources {
		pathutil.ExpandAll(&c.Sources[i].Path)
	}
}

// PollInterval returns the parsed poll period, falling back to two seconds.
func (c *Config) PollInterval() time.Duration {
	d, err := time.ParseDuration(c.Poll.Interval)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}

// UnmarshalExtension decodes a specific extension's configuration from the
// loaded sigscope.yml into the provided target struct. The target must be a
// pointer. A missing key leaves the target zero-valued.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
