package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/grovetools/sigscope/cli"
	"github.com/grovetools/sigscope/pkg/client"
)

// NewChangesCmd lists, follows or clears the change log.
func NewChangesCmd() *cobra.Command {
	var (
		limit    int
		follow   bool
		clearLog bool
	)

	cmd := &cobra.Command{
		Use:   "changes",
		Short: "Show recorded signal changes",
		Long: `Show recorded changes, newest first. Without a running daemon the
change journal of earlier sessions is read instead.

With --follow, changes are printed as the daemon records them.

Examples:
  sigscope changes
  sigscope changes --limit 10 --json
  sigscope changes --follow
  sigscope changes --clear`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			out := cmd.OutOrStdout()

			if clearLog || follow {
				rc, err := connect(cmd)
				if err != nil {
					return err
				}
				defer rc.Close()

				if clearLog {
					if err := rc.ClearChanges(cmd.Context()); err != nil {
						return err
					}
					fmt.Fprintln(out, "Change log cleared")
					return nil
				}
				return followChanges(cmd, rc, cli.NewChangePrinter(out, opts.JSONOutput))
			}

			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			c := client.New(cfg)
			defer c.Close()

			changes, err := c.Changes(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(changes) == 0 && !opts.JSONOutput {
				fmt.Fprintln(out, "No changes recorded")
				return nil
			}
			printer := cli.NewChangePrinter(out, opts.JSONOutput)
			for _, ch := range changes {
				printer.Print(ch)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of changes to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Print changes as they are recorded")
	cmd.Flags().BoolVar(&clearLog, "clear", false, "Clear the daemon's change log")
	return cmd
}

func followChanges(cmd *cobra.Command, rc *client.RemoteClient, printer *cli.ChangePrinter) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	events, err := rc.Stream(ctx)
	if err != nil {
		return err
	}
	for ev := range events {
		for _, ch := range ev.Changes {
			printer.Print(ch)
		}
	}
	printer.Done()
	return nil
}
