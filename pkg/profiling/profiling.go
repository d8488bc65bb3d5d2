// Package profiling adds CPU, memory and timing instrumentation to commands.
package profiling

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Span is one timed phase.
type Span struct {
	Name     string
	Duration time.Duration
}

// Recorder collects spans in completion order.
type Recorder struct {
	mu      sync.Mutex
	enabled bool
	started time.Time
	spans   []Span
}

var defaultRecorder = &Recorder{}

// Enable turns on the global recorder.
func Enable() { defaultRecorder.Enable() }

// Start begins a span on the global recorder. Call the returned func to end it.
func Start(name string) func() { return defaultRecorder.Start(name) }

// Summarize writes the global recorder's spans to w.
func Summarize(w io.Writer) { defaultRecorder.Summarize(w) }

// Enable starts the recorder's clock. Spans started before Enable are dropped.
func (r *Recorder) Enable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enabled {
		return
	}
	r.enabled = true
	r.started = time.Now()
}

// Start begins a span.
func (r *Recorder) Start(name string) func() {
	r.mu.Lock()
	enabled := r.enabled
	r.mu.Unlock()
	if !enabled {
		return func() {}
	}

	start := time.Now()
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			r.spans = append(r.spans, Span{Name: name, Duration: time.Since(start)})
			r.mu.Unlock()
		})
	}
}

// Spans returns a copy of the recorded spans.
func (r *Recorder) Spans() []Span {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Span(nil), r.spans...)
}

// Summarize writes one line per span followed by the total.
func (r *Recorder) Summarize(w io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}
	fmt.Fprintln(w, "--- Timing ---")
	for _, s := range r.spans {
		fmt.Fprintf(w, "%-24s %v\n", s.Name, s.Duration.Round(time.Microsecond))
	}
	fmt.Fprintf(w, "%-24s %v\n", "total", time.Since(r.started).Round(time.Microsecond))
}
