package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/grovetools/sigscope/pkg/client"
	"github.com/grovetools/sigscope/pkg/signal"
	"github.com/grovetools/sigscope/tui/theme"
)

// ChangePrinter writes change records as they arrive, one line each. It is
// safe for concurrent use.
type ChangePrinter struct {
	mu    sync.Mutex
	out   io.Writer
	theme *theme.Theme
	json  bool
	start time.Time
	count int
}

// NewChangePrinter creates a printer. With asJSON each change is written as
// one JSON object per line.
func NewChangePrinter(out io.Writer, asJSON bool) *ChangePrinter {
	return &ChangePrinter{
		out:   out,
		theme: theme.DefaultTheme,
		json:  asJSON,
		start: time.Now(),
	}
}

// Print writes one change.
func (p *ChangePrinter) Print(c client.Change) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++

	if p.json {
		data, err := json.Marshal(c)
		if err != nil {
			return
		}
		fmt.Fprintln(p.out, string(data))
		return
	}

	fmt.Fprintf(p.out, "%s %s: %s %s %s\n",
		p.theme.Muted.Render(c.Timestamp.Local().Format("15:04:05")),
		p.theme.Path.Render(c.Path),
		p.theme.OldValue.Render(rawValue(c.OldValue)),
		theme.IconArrow,
		p.theme.NewValue.Render(rawValue(c.NewValue)),
	)
}

// Done prints a summary line unless output is JSON.
func (p *ChangePrinter) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.json {
		return
	}
	elapsed := time.Since(p.start).Round(time.Millisecond)
	fmt.Fprintln(p.out, p.theme.Muted.Render(fmt.Sprintf("%d changes in %s", p.count, elapsed)))
}

// rawValue renders an encoded value the way the change log does: missing
// values as "undefined", the rest truncated.
func rawValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "undefined"
	}
	return signal.Truncate(string(raw), 50)
}
