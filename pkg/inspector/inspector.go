// Package inspector wires the snapshot engine into one session object with
// an explicit lifecycle: Create, Discover or WaitForRoot, Run, Dispose.
package inspector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/sigscope/config"
	"github.com/grovetools/sigscope/errors"
	"github.com/grovetools/sigscope/logging"
	"github.com/grovetools/sigscope/pkg/coordinator"
	"github.com/grovetools/sigscope/pkg/expanded"
	"github.com/grovetools/sigscope/pkg/export"
	"github.com/grovetools/sigscope/pkg/filter"
	"github.com/grovetools/sigscope/pkg/flatten"
	"github.com/grovetools/sigscope/pkg/history"
	"github.com/grovetools/sigscope/pkg/journal"
	"github.com/grovetools/sigscope/pkg/metrics"
	"github.com/grovetools/sigscope/pkg/signal"
	"github.com/grovetools/sigscope/pkg/snapshot"
	"github.com/grovetools/sigscope/state"
)

const (
	// DefaultDiscoveryInterval is how often WaitForRoot probes for the root.
	DefaultDiscoveryInterval = 100 * time.Millisecond
	// DefaultDiscoveryWindow bounds how long WaitForRoot keeps probing.
	DefaultDiscoveryWindow = 5 * time.Second
)

// PositionStore persists the panel position preference.
type PositionStore interface {
	Position(fallback string) string
	SetPosition(pos string) error
}

type stateStore struct{}

func (stateStore) Position(fallback string) string { return state.Position(fallback) }
func (stateStore) SetPosition(pos string) error    { return state.SetPosition(pos) }

// Options configures Create. The zero value is usable.
type Options struct {
	Interval          time.Duration
	HistoryCapacity   int
	Ignore            []string
	ExportDir         string
	Position          string
	DiscoveryInterval time.Duration
	DiscoveryWindow   time.Duration

	// Journal, when set, receives every recorded change. Dispose closes it.
	Journal *journal.Journal
	Metrics *metrics.PrometheusRecorder
	// Positions defaults to the .sigscope/state.yml store.
	Positions PositionStore
	Logger    *logrus.Entry
	Clock     func() time.Time
}

// OptionsFromConfig maps configuration onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Interval:        cfg.PollInterval(),
		HistoryCapacity: cfg.History.Capacity,
		Ignore:          cfg.Display.Ignore,
		ExportDir:       cfg.Export.Dir,
		Position:        cfg.Display.Position,
	}
}

// Inspector is one inspection session.
type Inspector struct {
	id        string
	coord     *coordinator.Coordinator
	expanded  *expanded.Tracker
	ignore    *filter.Ignore
	journal   *journal.Journal
	metrics   *metrics.PrometheusRecorder
	positions PositionStore
	logger    *logrus.Entry
	now       func() time.Time

	exportDir         string
	discoveryInterval time.Duration
	discoveryWindow   time.Duration

	mu       sync.RWMutex
	position string

	disposeOnce sync.Once
}

// Create builds an idle inspector with an empty snapshot.
func Create(opts Options) (*Inspector, error) {
	ignore, err := filter.NewIgnore(opts.Ignore)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid ignore pattern")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger("inspector")
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	capacity := opts.HistoryCapacity
	if capacity <= 0 {
		capacity = history.DefaultCapacity
	}

	id := uuid.New().String()
	logger = logger.WithField("session", id)

	coordOpts := []coordinator.Option{
		coordinator.WithInterval(opts.Interval),
		coordinator.WithLogger(logger),
		coordinator.WithClock(now),
	}
	if opts.Metrics != nil {
		coordOpts = append(coordOpts, coordinator.WithRecorder(opts.Metrics))
	}

	store := snapshot.New(flatten.WithSkip(ignore.Match))
	insp := &Inspector{
		id:                id,
		coord:             coordinator.New(store, history.New(capacity), coordOpts...),
		expanded:          expanded.New(),
		ignore:            ignore,
		journal:           opts.Journal,
		metrics:           opts.Metrics,
		positions:         opts.Positions,
		logger:            logger,
		now:               now,
		exportDir:         opts.ExportDir,
		discoveryInterval: opts.DiscoveryInterval,
		discoveryWindow:   opts.DiscoveryWindow,
	}
	if insp.positions == nil {
		insp.positions = stateStore{}
	}
	if insp.discoveryInterval <= 0 {
		insp.discoveryInterval = DefaultDiscoveryInterval
	}
	if insp.discoveryWindow <= 0 {
		insp.discoveryWindow = DefaultDiscoveryWindow
	}

	fallback := opts.Position
	if !state.ValidPosition(fallback) {
		fallback = config.PositionRight
	}
	insp.position = insp.positions.Position(fallback)

	logger.Debug("Inspector created")
	return insp, nil
}

// ID returns the session identifier.
func (i *Inspector) ID() string { return i.id }

// Coordinator exposes the update coordinator.
func (i *Inspector) Coordinator() *coordinator.Coordinator { return i.coord }

// Discover installs the host root and runs the initial scan.
func (i *Inspector) Discover(root any) {
	i.coord.SetRoot(root)
	i.coord.Poll()
	i.logger.WithField("signals", i.coord.Store().Len()).Info("Signal root discovered")
}

// WaitForRoot probes for the root until it appears or the discovery window
// closes. On timeout the inspector stays idle and a DISCOVERY_TIMEOUT error
// is logged and returned; callers may ignore it.
func (i *Inspector) WaitForRoot(ctx context.Context, probe func() (any, bool)) error {
	deadline := time.NewTimer(i.discoveryWindow)
	defer deadline.Stop()
	ticker := time.NewTicker(i.discoveryInterval)
	defer ticker.Stop()

	for {
		if root, ok := probe(); ok {
			i.Discover(root)
			return nil
		}
		select {
		case <-ticker.C:
		case <-deadline.C:
			err := errors.DiscoveryTimeout(i.discoveryWindow)
			i.logger.WithError(err).Warn("Signal root not found; inspector stays idle")
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// HasRoot reports whether a root has been discovered.
func (i *Inspector) HasRoot() bool {
	_, ok := i.coord.Root()
	return ok
}

// Poll runs one rescan now.
func (i *Inspector) Poll() bool { return i.coord.Poll() }

// ApplyPatch merges a pushed patch. Ignored paths are dropped first.
func (i *Inspector) ApplyPatch(p snapshot.Patch) []history.Entry {
	if !i.ignore.Empty() {
		kept := make(snapshot.Patch, len(p))
		for path, v := range p {
			if !i.ignore.Match(path) {
				kept[path] = v
			}
		}
		p = kept
	}
	return i.coord.HandlePatch(p)
}

// Get returns the snapshot value of path.
func (i *Inspector) Get(path string) (any, bool) { return i.coord.Store().Get(path) }

// Snapshot returns a copy of the current snapshot.
func (i *Inspector) Snapshot() signal.Snapshot { return i.coord.Store().All() }

// Paths returns every known path in lexicographic order.
func (i *Inspector) Paths() []string { return i.coord.Store().Paths() }

// Search filters the known paths by query.
func (i *Inspector) Search(query string, useFuzzy bool) []string {
	return filter.Search(i.Paths(), query, useFuzzy)
}

// Changes returns up to limit history entries, newest first.
func (i *Inspector) Changes(limit int) []history.Entry { return i.coord.History().List(limit) }

// ClearLog empties the change history.
func (i *Inspector) ClearLog() { i.coord.ClearHistory() }

// Toggle flips the expanded state of path.
func (i *Inspector) Toggle(path string) bool { return i.expanded.Toggle(path) }

// IsExpanded reports whether path is expanded.
func (i *Inspector) IsExpanded(path string) bool { return i.expanded.IsExpanded(path) }

// ExpandedPaths returns the expanded set.
func (i *Inspector) ExpandedPaths() []string { return i.expanded.Paths() }

// RestoreExpanded re-seeds the expanded set, e.g. after the panel rebuilt.
func (i *Inspector) RestoreExpanded(paths []string) { i.expanded.AddAll(paths) }

// Subscribe returns a notification channel. Release it with Unsubscribe.
func (i *Inspector) Subscribe() chan coordinator.Notification { return i.coord.Subscribe() }

// Unsubscribe releases a notification channel.
func (i *Inspector) Unsubscribe(ch chan coordinator.Notification) { i.coord.Unsubscribe(ch) }

// Export writes the snapshot to dir (or the configured export directory)
// and returns the file path.
func (i *Inspector) Export(dir string) (string, error) {
	if dir == "" {
		dir = i.exportDir
	}
	path, err := export.WriteFile(dir, i.Snapshot(), i.now())
	if err != nil {
		return "", errors.ExportFailed(dir, err)
	}
	i.logger.WithField("path", path).Info("Exported signals")
	return path, nil
}

// Position returns the current panel position.
func (i *Inspector) Position() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.position
}

// SetPosition changes and persists the panel position. A failure to persist
// is logged; the in-memory position still changes.
func (i *Inspector) SetPosition(pos string) error {
	if !state.ValidPosition(pos) {
		return errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("invalid position: %s", pos)).
			WithDetail("position", pos)
	}
	i.mu.Lock()
	i.position = pos
	i.mu.Unlock()

	if err := i.positions.SetPosition(pos); err != nil {
		i.logger.WithError(err).Warn("Failed to persist panel position")
	}
	return nil
}

// Dispose stops polling, closes subscriptions and the journal. It is safe
// to call more than once.
func (i *Inspector) Dispose() error {
	var err error
	i.disposeOnce.Do(func() {
		if stopErr := i.coord.Stop(); stopErr != nil {
			err = stopErr
		}
		i.coord.Close()
		if i.journal != nil {
			if closeErr := i.journal.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}
		i.logger.Debug("Inspector disposed")
	})
	return err
}
