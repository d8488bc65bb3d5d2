package logging

import (
	"io"
	"os"
	"sync/atomic"
)

// swapWriter forwards writes to whichever writer was stored last.
type swapWriter struct {
	target atomic.Pointer[io.Writer]
}

func newSwapWriter(w io.Writer) *swapWriter {
	sw := &swapWriter{}
	sw.target.Store(&w)
	return sw
}

func (sw *swapWriter) Write(p []byte) (int, error) {
	return (*sw.target.Load()).Write(p)
}

var stderrSink = newSwapWriter(os.Stderr)

// SetGlobalOutput redirects the stderr sink of every logger. The panel uses
// it to keep log lines from tearing the alternate screen.
func SetGlobalOutput(w io.Writer) {
	stderrSink.target.Store(&w)
}

// GetGlobalOutput returns the swappable stderr sink.
func GetGlobalOutput() io.Writer {
	return stderrSink
}
