package panel

import (
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// LogLineMsg carries one log line written while the panel owns the screen.
type LogLineMsg struct {
	Line string
}

// Sender is the part of *tea.Program the writer needs.
type Sender interface {
	Send(msg tea.Msg)
}

// LogWriter is an io.Writer that forwards complete lines to the panel as
// LogLineMsg. Partial lines are buffered until their newline arrives.
type LogWriter struct {
	mu      sync.Mutex
	program Sender
	buffer  strings.Builder
}

// NewLogWriter creates a writer sending to program.
func NewLogWriter(program Sender) *LogWriter {
	return &LogWriter{program: program}
}

// Write implements io.Writer.
func (w *LogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buffer.Write(p)
	lines := strings.Split(w.buffer.String(), "\n")
	w.buffer.Reset()
	w.buffer.WriteString(lines[len(lines)-1])

	for _, line := range lines[:len(lines)-1] {
		if line != "" && w.program != nil {
			w.program.Send(LogLineMsg{Line: line})
		}
	}
	return len(p), nil
}
