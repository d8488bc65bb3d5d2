package client

import (
	"context"
	"os"

	"github.com/grovetools/sigscope/config"
	"github.com/grovetools/sigscope/errors"
	"github.com/grovetools/sigscope/pkg/filter"
	"github.com/grovetools/sigscope/pkg/flatten"
	"github.com/grovetools/sigscope/pkg/journal"
	"github.com/grovetools/sigscope/pkg/paths"
	"github.com/grovetools/sigscope/pkg/signal"
	"github.com/grovetools/sigscope/pkg/source"
)

// LocalClient answers reads without a daemon: signals come from a one-shot
// flatten of the root document, changes from the persisted journal.
type LocalClient struct {
	cfg *config.Config
}

// NewLocalClient creates a local client. A nil config means defaults.
func NewLocalClient(cfg *config.Config) *LocalClient {
	if cfg == nil {
		cfg = config.Default()
	}
	return &LocalClient{cfg: cfg}
}

// Signals flattens the configured root document.
func (c *LocalClient) Signals(ctx context.Context, query string) (signal.Snapshot, error) {
	if c.cfg.Root.File == "" {
		return nil, errors.RootUnavailable("read signals")
	}
	doc, err := source.NewFileRoot(c.cfg.Root.File, c.cfg.Root.Format).Load()
	if err != nil {
		return nil, errors.SourceFailed(c.cfg.Root.File, err)
	}

	ignore, err := filter.NewIgnore(c.cfg.Display.Ignore)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid ignore pattern")
	}
	return filterSnapshot(flatten.Flatten(doc, flatten.WithSkip(ignore.Match)), query, c.cfg.Display.FuzzySearch), nil
}

// Changes reads the journal written by earlier sessions.
func (c *LocalClient) Changes(ctx context.Context, limit int) ([]Change, error) {
	path := JournalPath(c.cfg)
	if _, err := os.Stat(path); err != nil {
		return nil, errors.New(errors.ErrCodeJournalFailed, "no change journal found").
			WithDetail("path", path)
	}
	j, err := journal.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeJournalFailed, "failed to open change journal")
	}
	defer j.Close()

	records, err := j.Recent(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeJournalFailed, "failed to read change journal")
	}
	return ChangesFromRecords(records), nil
}

// IsRunning is always false for the local client.
func (c *LocalClient) IsRunning() bool { return false }

// Close is a no-op.
func (c *LocalClient) Close() error { return nil }

// JournalPath returns the configured journal location, or the default one.
func JournalPath(cfg *config.Config) string {
	if cfg != nil && cfg.Journal.Path != "" {
		return cfg.Journal.Path
	}
	return paths.JournalPath()
}

func filterSnapshot(snap signal.Snapshot, query string, useFuzzy bool) signal.Snapshot {
	if query == "" {
		return snap
	}
	out := make(signal.Snapshot)
	for _, p := range filter.Search(snap.Paths(), query, useFuzzy) {
		out[p] = snap[p]
	}
	return out
}

var _ Client = (*LocalClient)(nil)
