package source

import (
	"context"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/sigscope/errors"
	"github.com/grovetools/sigscope/logging"
)

// WebSocket reads patches from a websocket; every text or binary message is
// one JSON patch object.
type WebSocket struct {
	name   string
	url    string
	dialer *websocket.Dialer
	logger *logrus.Entry
}

// NewWebSocket creates a websocket source.
func NewWebSocket(name, url string) *WebSocket {
	return &WebSocket{
		name:   name,
		url:    url,
		dialer: websocket.DefaultDialer,
		logger: logging.NewLogger("source-websocket"),
	}
}

// Name returns the source name.
func (w *WebSocket) Name() string { return w.name }

// Run dials and redials until ctx is done.
func (w *WebSocket) Run(ctx context.Context, updates chan<- Update) error {
	for {
		err := w.session(ctx, updates)
		if ctx.Err() != nil {
			return nil
		}
		w.logger.WithError(err).WithField("url", w.url).Debug("Websocket closed, reconnecting")
		if !emit(ctx, updates, Update{Source: w.name, Err: errors.SourceFailed(w.name, err)}) {
			return nil
		}
		if !sleep(ctx, ReconnectDelay) {
			return nil
		}
	}
}

func (w *WebSocket) session(ctx context.Context, updates chan<- Update) error {
	conn, _, err := w.dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Unblock ReadMessage on cancellation.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	w.logger.WithField("url", w.url).Info("Connected to websocket")
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			continue
		}
		if !emitPatch(ctx, updates, w.name, data) {
			return ctx.Err()
		}
	}
}
