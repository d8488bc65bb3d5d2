// Package coordinator funnels the two update triggers, pushed patches and
// periodic rescans, through a single writer and fans the resulting change
// notifications out to subscribers.
package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/sigscope/logging"
	"github.com/grovetools/sigscope/pkg/history"
	"github.com/grovetools/sigscope/pkg/snapshot"
)

// DefaultInterval is the fixed poll period.
const DefaultInterval = 2 * time.Second

// Trigger names what caused a notification.
type Trigger string

const (
	TriggerPatch Trigger = "patch"
	TriggerPoll  Trigger = "poll"
	TriggerClear Trigger = "clear"
)

// Notification is emitted once per update cycle that changed something.
// Patch notifications carry the updated paths; poll notifications set Full.
type Notification struct {
	Trigger Trigger         `json:"trigger"`
	Full    bool            `json:"full"`
	Paths   []string        `json:"paths,omitempty"`
	Changes []history.Entry `json:"changes,omitempty"`
	At      time.Time       `json:"at"`
}

// Recorder receives coordinator measurements. Implementations must be safe
// for concurrent use.
type Recorder interface {
	ObservePatch(entries, changes int)
	ObserveRescan(d time.Duration, changed bool)
	SetSignalCount(n int)
	SetHistorySize(n int)
}

type noopRecorder struct{}

func (noopRecorder) ObservePatch(int, int)             {}
func (noopRecorder) ObserveRescan(time.Duration, bool) {}
func (noopRecorder) SetSignalCount(int)                {}
func (noopRecorder) SetHistorySize(int)                {}

// Coordinator owns the snapshot and history writers. HandlePatch, Poll and
// SetRoot are serialized so a rescan never interleaves with a patch merge.
type Coordinator struct {
	mu      sync.Mutex
	store   *snapshot.Store
	history *history.History
	root    any
	hasRoot bool

	subMu       sync.Mutex
	subscribers map[chan Notification]struct{}

	interval  time.Duration
	scheduler gocron.Scheduler
	recorder  Recorder
	logger    *logrus.Entry
	now       func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithInterval sets the poll period used by Start.
func WithInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithLogger overrides the component logger.
func WithLogger(l *logrus.Entry) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a coordinator over the given store and history.
func New(st *snapshot.Store, h *history.History, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:       st,
		history:     h,
		subscribers: make(map[chan Notification]struct{}),
		interval:    DefaultInterval,
		recorder:    noopRecorder{},
		logger:      logging.NewLogger("coordinator"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetRoot stores the host root used by subsequent polls.
func (c *Coordinator) SetRoot(root any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.root = root
	c.hasRoot = true
}

// Root returns the current host root, if one was set.
func (c *Coordinator) Root() (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.root, c.hasRoot
}

// HandlePatch merges p into the snapshot, records one history entry per
// changed path and emits a single notification carrying the patch paths.
// The recorded entries are returned newest last, in patch order.
func (c *Coordinator) HandlePatch(p snapshot.Patch) []history.Entry {
	if len(p) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	changes := c.store.ApplyPatch(p)
	ts := c.now()
	entries := make([]history.Entry, 0, len(changes))
	for _, ch := range changes {
		c.history.Record(ch.Path, ch.Old, ch.New, ts)
		entries = append(entries, history.Entry{
			Timestamp: ts,
			Path:      ch.Path,
			OldValue:  ch.Old,
			NewValue:  ch.New,
		})
	}

	c.recorder.ObservePatch(len(p), len(changes))
	c.recorder.SetSignalCount(c.store.Len())
	c.recorder.SetHistorySize(c.history.Len())

	c.logger.WithFields(logrus.Fields{
		"paths":   len(p),
		"changes": len(changes),
	}).Debug("Applied patch")

	c.broadcast(Notification{
		Trigger: TriggerPatch,
		Paths:   p.Paths(),
		Changes: entries,
		At:      ts,
	})
	return entries
}

// Poll rescans the root and emits a full-refresh notification when the
// snapshot changed. Without a root it does nothing.
func (c *Coordinator) Poll() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasRoot {
		return false
	}

	start := time.Now()
	changed := c.store.Rescan(c.root)
	c.recorder.ObserveRescan(time.Since(start), changed)
	c.recorder.SetSignalCount(c.store.Len())

	if changed {
		c.logger.WithField("signals", c.store.Len()).Debug("Rescan found changes")
		c.broadcast(Notification{Trigger: TriggerPoll, Full: true, At: c.now()})
	}
	return changed
}

// ClearHistory empties the change log and notifies subscribers.
func (c *Coordinator) ClearHistory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history.Clear()
	c.recorder.SetHistorySize(0)
	c.broadcast(Notification{Trigger: TriggerClear, At: c.now()})
}

// Store returns the snapshot store.
func (c *Coordinator) Store() *snapshot.Store { return c.store }

// History returns the change history.
func (c *Coordinator) History() *history.History { return c.history }

// Interval returns the configured poll period.
func (c *Coordinator) Interval() time.Duration { return c.interval }

// Start schedules the periodic poll. The schedule stops when ctx is done or
// Stop is called.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.scheduler != nil {
		c.mu.Unlock()
		return nil
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to create poll scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(c.interval),
		gocron.NewTask(func() { c.Poll() }),
		gocron.WithName("signal-poll"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		c.mu.Unlock()
		_ = s.Shutdown()
		return fmt.Errorf("failed to schedule poll: %w", err)
	}
	c.scheduler = s
	c.mu.Unlock()

	c.logger.WithField("interval", c.interval).Debug("Starting poll scheduler")
	s.Start()

	go func() {
		<-ctx.Done()
		if err := c.Stop(); err != nil {
			c.logger.WithError(err).Warn("Failed to stop poll scheduler")
		}
	}()
	return nil
}

// Stop cancels the periodic poll. An in-flight poll runs to completion.
func (c *Coordinator) Stop() error {
	c.mu.Lock()
	s := c.scheduler
	c.scheduler = nil
	c.mu.Unlock()

	if s == nil {
		return nil
	}
	return s.Shutdown()
}

// Subscribe creates a buffered notification channel.
func (c *Coordinator) Subscribe() chan Notification {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	ch := make(chan Notification, 100)
	c.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (c *Coordinator) Unsubscribe(ch chan Notification) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	if _, ok := c.subscribers[ch]; !ok {
		return
	}
	delete(c.subscribers, ch)
	close(ch)
}

// Close removes and closes every subscription.
func (c *Coordinator) Close() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for ch := range c.subscribers {
		delete(c.subscribers, ch)
		close(ch)
	}
}

func (c *Coordinator) broadcast(n Notification) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for ch := range c.subscribers {
		select {
		case ch <- n:
		default:
			// Slow subscribers drop notifications rather than stall updates.
		}
	}
}
