package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/grovetools/sigscope/cli"
	"github.com/grovetools/sigscope/logging"
	"github.com/grovetools/sigscope/pkg/client"
	"github.com/grovetools/sigscope/tui"
	"github.com/grovetools/sigscope/tui/keymap"
	"github.com/grovetools/sigscope/tui/panel"
)

// NewWatchCmd returns the interactive panel command.
func NewWatchCmd() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Open the live signal panel",
		Long: `Open the live signal panel over the configured root document and
patch sources.

The panel lists every signal with its type and value, keeps a change log of
the newest 50 changes, and offers search, export and a sandboxed console.
With --plain the changes are printed as lines instead.

Examples:
  sigscope watch
  sigscope watch --plain
  sigscope watch -c ./dev/sigscope.yml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			s, err := newSession(cfg, nil, logging.NewLogger("inspector"))
			if err != nil {
				return err
			}
			defer s.insp.Dispose()

			errCh := make(chan error, 1)
			go func() { errCh <- s.insp.Run(ctx, s.sources...) }()

			if plain {
				return watchPlain(ctx, cmd, s, errCh)
			}

			tui.InitializeTUI()
			keys := keymap.Load(cfg)
			m := panel.New(s.insp, panel.Options{
				Theme:          cfg.Display.Theme,
				StartMinimized: cfg.Display.StartMinimized,
				FuzzySearch:    cfg.Display.FuzzySearch,
				Keys:           &keys,
			})
			if err := panel.Run(ctx, m); err != nil {
				return err
			}
			cancel()
			return <-errCh
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Print changes as lines instead of opening the panel")
	return cmd
}

// watchPlain prints every recorded change until ctx is done.
func watchPlain(ctx context.Context, cmd *cobra.Command, s *session, errCh <-chan error) error {
	opts := cli.GetOptions(cmd)
	printer := cli.NewChangePrinter(cmd.OutOrStdout(), opts.JSONOutput)
	sub := s.insp.Subscribe()
	defer s.insp.Unsubscribe(sub)

	for {
		select {
		case n, ok := <-sub:
			if !ok {
				return nil
			}
			for _, c := range client.ChangesFromEntries(n.Changes) {
				printer.Print(c)
			}
		case err := <-errCh:
			printer.Done()
			return err
		case <-ctx.Done():
			printer.Done()
			select {
			case err := <-errCh:
				return err
			case <-time.After(2 * time.Second):
				return nil
			}
		}
	}
}
