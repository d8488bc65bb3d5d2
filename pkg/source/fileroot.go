package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/sigscope/errors"
	"github.com/grovetools/sigscope/logging"
	"github.com/grovetools/sigscope/pkg/host"
)

// DefaultDebounce coalesces bursts of writes to the root document.
const DefaultDebounce = 100 * time.Millisecond

// FileRoot serves a JSON, YAML or TOML document as the signal root and
// re-delivers it whenever the file changes on disk.
type FileRoot struct {
	path     string
	format   string
	debounce time.Duration
	logger   *logrus.Entry
}

// NewFileRoot creates a root source. An empty format is inferred from the
// file extension.
func NewFileRoot(path, format string) *FileRoot {
	if format == "" {
		format = FormatOf(path)
	}
	return &FileRoot{
		path:     path,
		format:   format,
		debounce: DefaultDebounce,
		logger:   logging.NewLogger("source-file"),
	}
}

// WithDebounce overrides the reload debounce window.
func (f *FileRoot) WithDebounce(d time.Duration) *FileRoot {
	if d > 0 {
		f.debounce = d
	}
	return f
}

// Name returns the source name.
func (f *FileRoot) Name() string { return "root:" + filepath.Base(f.path) }

// Load reads and decodes the document once.
func (f *FileRoot) Load() (host.Map, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	return DecodeDocument(data, f.format)
}

// Run delivers the document immediately, then after every change. The
// parent directory is watched so editors that replace the file by rename
// are followed.
func (f *FileRoot) Run(ctx context.Context, updates chan<- Update) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.SourceFailed(f.Name(), err)
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(f.path)
	if err != nil {
		return errors.SourceFailed(f.Name(), err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return errors.SourceFailed(f.Name(), err)
	}

	if !f.reload(ctx, updates) {
		return nil
	}

	timer := time.NewTimer(f.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			f.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)
			timer.Reset(f.debounce)
		case <-timer.C:
			if !f.reload(ctx, updates) {
				return nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			return nil
		}
	}
}

func (f *FileRoot) reload(ctx context.Context, updates chan<- Update) bool {
	doc, err := f.Load()
	if err != nil {
		// A half-written or briefly missing file is retried on the next event.
		f.logger.WithError(err).WithField("path", f.path).Warn("Failed to load root document")
		return emit(ctx, updates, Update{Source: f.Name(), Err: errors.SourceFailed(f.Name(), err)})
	}
	f.logger.WithField("path", f.path).Debug("Loaded root document")
	return emit(ctx, updates, Update{Source: f.Name(), Root: doc})
}

// DecodeDocument parses a root document in the given format ("json",
// "yaml" or "toml").
func DecodeDocument(data []byte, format string) (host.Map, error) {
	var doc map[string]any
	var err error
	switch format {
	case "json":
		err = json.Unmarshal(data, &doc)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &doc)
	case "toml":
		err = toml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("unsupported root format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s root: %w", format, err)
	}
	return host.FromDocument(doc), nil
}

// FormatOf infers a document format from a file extension, defaulting to
// json.
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return "yaml"
	case ".toml":
		return "toml"
	}
	return "json"
}
