package source

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/sigscope/errors"
	"github.com/grovetools/sigscope/logging"
)

// NATS subscribes to a subject whose messages are JSON patch objects.
type NATS struct {
	name    string
	url     string
	subject string
	logger  *logrus.Entry
}

// NewNATS creates a NATS source. An empty url uses nats.DefaultURL.
func NewNATS(name, url, subject string) *NATS {
	if url == "" {
		url = nats.DefaultURL
	}
	return &NATS{
		name:    name,
		url:     url,
		subject: subject,
		logger:  logging.NewLogger("source-nats"),
	}
}

// Name returns the source name.
func (n *NATS) Name() string { return n.name }

// Run connects, subscribes and blocks until ctx is done. The client library
// handles reconnection once the first connection succeeds.
func (n *NATS) Run(ctx context.Context, updates chan<- Update) error {
	var conn *nats.Conn
	for {
		var err error
		conn, err = nats.Connect(n.url,
			nats.Name("sigscope-"+n.name),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(ReconnectDelay),
		)
		if err == nil {
			break
		}
		n.logger.WithError(err).WithField("url", n.url).Debug("Failed to connect to NATS")
		if !emit(ctx, updates, Update{Source: n.name, Err: errors.SourceFailed(n.name, err)}) {
			return nil
		}
		if !sleep(ctx, ReconnectDelay) {
			return nil
		}
	}
	defer conn.Close()

	msgs := make(chan *nats.Msg, 64)
	sub, err := conn.ChanSubscribe(n.subject, msgs)
	if err != nil {
		return errors.SourceFailed(n.name, err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	n.logger.WithFields(logrus.Fields{"url": n.url, "subject": n.subject}).Info("Subscribed to NATS subject")
	for {
		select {
		case msg := <-msgs:
			if !emitPatch(ctx, updates, n.name, msg.Data) {
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}
