// Package source feeds the inspector from outside the process: pushed patch
// streams (Datastar SSE, websocket, NATS, a tailed JSONL log) and a watched
// root document.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/grovetools/sigscope/config"
	"github.com/grovetools/sigscope/errors"
	"github.com/grovetools/sigscope/pkg/flatten"
	"github.com/grovetools/sigscope/pkg/host"
	"github.com/grovetools/sigscope/pkg/snapshot"
)

// ReconnectDelay is how long streaming sources wait before redialing.
const ReconnectDelay = 2 * time.Second

// Update is one event delivered by a source. Exactly one of Patch, Root or
// Err is set.
type Update struct {
	Source string
	Patch  snapshot.Patch
	Root   any
	Err    error
}

// Source produces updates until ctx is done. Run returns nil on
// cancellation; transient failures are reported as Updates with Err set.
type Source interface {
	Name() string
	Run(ctx context.Context, updates chan<- Update) error
}

// DecodePatch parses a JSON object into a path-level patch. Nested objects
// are spread into dotted paths so a partial update never replaces a whole
// container.
func DecodePatch(data []byte) (snapshot.Patch, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("patch is not a JSON object: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("patch is not a JSON object")
	}
	return snapshot.Patch(flatten.Leaves(host.Map(doc))), nil
}

// emit delivers u unless ctx is done first.
func emit(ctx context.Context, updates chan<- Update, u Update) bool {
	select {
	case updates <- u:
		return true
	case <-ctx.Done():
		return false
	}
}

// emitPatch decodes data and delivers the patch, or a decode error.
func emitPatch(ctx context.Context, updates chan<- Update, name string, data []byte) bool {
	patch, err := DecodePatch(data)
	if err != nil {
		return emit(ctx, updates, Update{Source: name, Err: errors.InvalidPatch(name, err)})
	}
	if len(patch) == 0 {
		return true
	}
	return emit(ctx, updates, Update{Source: name, Patch: patch})
}

// sleep waits for d or ctx, reporting whether the caller should continue.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// FromConfig builds the configured sources.
func FromConfig(cfgs []config.SourceConfig) ([]Source, error) {
	sources := make([]Source, 0, len(cfgs))
	for _, c := range cfgs {
		switch c.Type {
		case config.SourceSSE:
			sources = append(sources, NewSSE(c.Name, c.URL, c.Event))
		case config.SourceWebSocket:
			sources = append(sources, NewWebSocket(c.Name, c.URL))
		case config.SourceNATS:
			sources = append(sources, NewNATS(c.Name, c.URL, c.Subject))
		case config.SourceTail:
			sources = append(sources, NewTail(c.Name, c.Path))
		default:
			return nil, errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("unknown source type: %s", c.Type)).
				WithDetail("source", c.Name)
		}
	}
	return sources, nil
}
