package source

import (
	"context"
	"io"
	stdlog "log"
	"strings"

	"github.com/hpcloud/tail"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/sigscope/errors"
	"github.com/grovetools/sigscope/logging"
)

// Tail follows a JSONL file where every non-empty line is one patch. The
// file is replayed from the start, then followed across rotation.
type Tail struct {
	name   string
	path   string
	logger *logrus.Entry
}

// NewTail creates a tail source.
func NewTail(name, path string) *Tail {
	return &Tail{
		name:   name,
		path:   path,
		logger: logging.NewLogger("source-tail"),
	}
}

// Name returns the source name.
func (t *Tail) Name() string { return t.name }

// Run follows the file until ctx is done.
func (t *Tail) Run(ctx context.Context, updates chan<- Update) error {
	tf, err := tail.TailFile(t.path, tail.Config{
		Follow:   true,
		ReOpen:   true,
		Location: &tail.SeekInfo{Offset: 0, Whence: io.SeekStart},
		Logger:   stdlog.New(io.Discard, "", 0),
	})
	if err != nil {
		return errors.SourceFailed(t.name, err)
	}
	defer tf.Cleanup()
	defer func() { _ = tf.Stop() }()

	t.logger.WithField("path", t.path).Info("Tailing patch log")
	for {
		select {
		case line, ok := <-tf.Lines:
			if !ok {
				return nil
			}
			if line.Err != nil {
				if !emit(ctx, updates, Update{Source: t.name, Err: errors.SourceFailed(t.name, line.Err)}) {
					return nil
				}
				continue
			}
			text := strings.TrimSpace(line.Text)
			if text == "" {
				continue
			}
			if !emitPatch(ctx, updates, t.name, []byte(text)) {
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}
