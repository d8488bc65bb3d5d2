package panel

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/grovetools/sigscope/logging"
)

// Run shows the panel on the alternate screen until the user quits or ctx
// is done. Log output is shown inside the panel while it runs.
func Run(ctx context.Context, m *Model) error {
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	logging.SetGlobalOutput(NewLogWriter(p))
	defer logging.SetGlobalOutput(os.Stderr)

	_, err := p.Run()
	if err == tea.ErrProgramKilled && ctx.Err() != nil {
		return nil
	}
	return err
}
