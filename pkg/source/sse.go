package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/sigscope/errors"
	"github.com/grovetools/sigscope/logging"
)

// DatastarPatchEvent is the SSE event type Datastar uses for signal patches.
const DatastarPatchEvent = "datastar-patch-signals"

// SSE follows a server-sent event stream and turns patch events into
// updates. Datastar frames carry the payload on "data: signals ..." lines;
// other data lines are taken as the JSON patch itself.
type SSE struct {
	name   string
	url    string
	event  string
	client *http.Client
	logger *logrus.Entry
}

// NewSSE creates an SSE source. An empty event selects Datastar's
// datastar-patch-signals.
func NewSSE(name, url, event string) *SSE {
	if event == "" {
		event = DatastarPatchEvent
	}
	return &SSE{
		name:   name,
		url:    url,
		event:  event,
		client: &http.Client{Timeout: 0},
		logger: logging.NewLogger("source-sse"),
	}
}

// Name returns the source name.
func (s *SSE) Name() string { return s.name }

// Run connects and reconnects until ctx is done.
func (s *SSE) Run(ctx context.Context, updates chan<- Update) error {
	for {
		err := s.stream(ctx, updates)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			err = io.EOF
		}
		s.logger.WithError(err).WithField("url", s.url).Debug("Stream ended, reconnecting")
		if !emit(ctx, updates, Update{Source: s.name, Err: errors.SourceFailed(s.name, err)}) {
			return nil
		}
		if !sleep(ctx, ReconnectDelay) {
			return nil
		}
	}
}

func (s *SSE) stream(ctx context.Context, updates chan<- Update) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	s.logger.WithField("url", s.url).Info("Connected to event stream")
	return ParseEvents(ctx, resp.Body, s.event, func(data []byte) bool {
		return emitPatch(ctx, updates, s.name, data)
	})
}

// ParseEvents reads an event stream and calls onPatch with the payload of
// each event of the given type. It stops when r is exhausted, ctx is done or
// onPatch returns false.
func ParseEvents(ctx context.Context, r io.Reader, event string, onPatch func(data []byte) bool) error {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var (
		eventType string
		payload   []string
	)
	dispatch := func() bool {
		defer func() {
			eventType = ""
			payload = payload[:0]
		}()
		if len(payload) == 0 {
			return true
		}
		// An unnamed event is "message"; it is accepted only when asked for.
		name := eventType
		if name == "" {
			name = "message"
		}
		if name != event {
			return true
		}
		return onPatch([]byte(strings.Join(payload, "\n")))
	}

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := scanner.Text()

		if line == "" {
			if !dispatch() {
				return nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			eventType = value
		case "data":
			if rest, ok := strings.CutPrefix(value, "signals "); ok {
				payload = append(payload, rest)
			} else if !isDatastarOption(value) {
				payload = append(payload, value)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	dispatch()
	return nil
}

// isDatastarOption reports data lines that carry patch options rather than
// signals, such as "onlyIfMissing true".
func isDatastarOption(value string) bool {
	return strings.HasPrefix(value, "onlyIfMissing ")
}
