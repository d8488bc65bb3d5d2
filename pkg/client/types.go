package client

import (
	"encoding/json"
	"time"

	"github.com/grovetools/sigscope/pkg/coordinator"
	"github.com/grovetools/sigscope/pkg/history"
	"github.com/grovetools/sigscope/pkg/journal"
	"github.com/grovetools/sigscope/pkg/signal"
)

// Change is a history entry on the wire. Values are canonical JSON.
type Change struct {
	Timestamp time.Time       `json:"timestamp"`
	Path      string          `json:"path"`
	OldValue  json.RawMessage `json:"old_value"`
	NewValue  json.RawMessage `json:"new_value"`
}

// Event is a change notification streamed from the daemon.
type Event struct {
	Trigger string    `json:"trigger"`
	Full    bool      `json:"full"`
	Paths   []string  `json:"paths,omitempty"`
	Changes []Change  `json:"changes,omitempty"`
	At      time.Time `json:"at"`
}

// SignalValue is a live read of one signal.
type SignalValue struct {
	Path  string          `json:"path"`
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// RunningConfig describes the daemon's active session.
type RunningConfig struct {
	Session         string    `json:"session"`
	PollInterval    string    `json:"poll_interval"`
	HistoryCapacity int       `json:"history_capacity"`
	Root            string    `json:"root,omitempty"`
	Sources         []string  `json:"sources,omitempty"`
	Journal         string    `json:"journal,omitempty"`
	StartedAt       time.Time `json:"started_at"`
}

// ChangesFromEntries converts history entries for the wire.
func ChangesFromEntries(entries []history.Entry) []Change {
	out := make([]Change, 0, len(entries))
	for _, e := range entries {
		out = append(out, Change{
			Timestamp: e.Timestamp,
			Path:      e.Path,
			OldValue:  signal.Canonical(e.OldValue),
			NewValue:  signal.Canonical(e.NewValue),
		})
	}
	return out
}

// ChangesFromRecords converts journal records for the wire.
func ChangesFromRecords(records []journal.Record) []Change {
	out := make([]Change, 0, len(records))
	for _, r := range records {
		out = append(out, Change{
			Timestamp: r.Timestamp,
			Path:      r.Path,
			OldValue:  json.RawMessage(r.OldValue),
			NewValue:  json.RawMessage(r.NewValue),
		})
	}
	return out
}

// EventFromNotification converts a coordinator notification for the wire.
func EventFromNotification(n coordinator.Notification) Event {
	ev := Event{
		Trigger: string(n.Trigger),
		Full:    n.Full,
		Paths:   n.Paths,
		At:      n.At,
	}
	if len(n.Changes) > 0 {
		ev.Changes = ChangesFromEntries(n.Changes)
	}
	return ev
}
