package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/grovetools/sigscope/cli"
	"github.com/grovetools/sigscope/errors"
	"github.com/grovetools/sigscope/logging"
	"github.com/grovetools/sigscope/pkg/console"
	"github.com/grovetools/sigscope/pkg/export"
	"github.com/grovetools/sigscope/pkg/inspector"
	"github.com/grovetools/sigscope/pkg/profiling"
	"github.com/grovetools/sigscope/pkg/signal"
	"github.com/grovetools/sigscope/pkg/source"
	"github.com/grovetools/sigscope/tui/components/table"
)

// NewSnapshotCmd returns the one-shot flatten command.
func NewSnapshotCmd() *cobra.Command {
	var asTable bool

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Flatten the root document once and print it",
		Long: `Flatten the configured root document once and print every signal.

The root file is polled until it exists or the discovery window closes.
Output uses the export format unless --table is given.

Examples:
  sigscope snapshot
  sigscope snapshot --table`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Root.File == "" {
				return errors.RootUnavailable("snapshot")
			}

			opts := inspector.OptionsFromConfig(cfg)
			opts.Logger = logging.NewLogger("inspector")
			insp, err := inspector.Create(opts)
			if err != nil {
				return err
			}
			defer insp.Dispose()

			root := source.NewFileRoot(cfg.Root.File, cfg.Root.Format)
			probe := func() (any, bool) {
				doc, err := root.Load()
				return doc, err == nil
			}
			stop := profiling.Start("discover root")
			err = insp.WaitForRoot(cmd.Context(), probe)
			stop()
			if err != nil {
				return err
			}
			defer profiling.Start("print")()

			out := cmd.OutOrStdout()
			if asTable {
				printSignalTable(out, insp.Snapshot())
				return nil
			}
			_, err = out.Write(export.Serialize(insp.Snapshot()))
			return err
		},
	}

	cmd.Flags().BoolVar(&asTable, "table", false, "Print a PATH/TYPE/VALUE table")
	return cmd
}

// printSignalTable renders snap sorted by path.
func printSignalTable(w io.Writer, snap signal.Snapshot) {
	rows := make([][]string, 0, len(snap))
	for _, p := range snap.Paths() {
		v := snap[p]
		rows = append(rows, []string{p, signal.TypeOf(v), signal.Truncate(console.Inline(v), 50)})
	}
	fmt.Fprintln(w, table.SignalTable(rows))
}
