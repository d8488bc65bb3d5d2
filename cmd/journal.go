package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grovetools/sigscope/cli"
	"github.com/grovetools/sigscope/errors"
	"github.com/grovetools/sigscope/pkg/client"
	"github.com/grovetools/sigscope/pkg/journal"
)

// NewJournalCmd reads the persisted change journal.
func NewJournalCmd() *cobra.Command {
	var (
		session string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Read the persisted change journal",
		Long: `Read changes persisted by sessions that ran with journal.enabled,
newest first. --session limits output to one inspector session.

Examples:
  sigscope journal
  sigscope journal --session 2b8e9c1e-... --limit 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			path := client.JournalPath(cfg)
			if _, err := os.Stat(path); err != nil {
				return errors.New(errors.ErrCodeJournalFailed, "no change journal found").
					WithDetail("path", path)
			}

			j, err := journal.Open(path)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeJournalFailed, "failed to open change journal")
			}
			defer j.Close()

			var records []journal.Record
			if session != "" {
				records, err = j.Session(cmd.Context(), session, limit)
			} else {
				records, err = j.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeJournalFailed, "failed to read change journal")
			}

			out := cmd.OutOrStdout()
			opts := cli.GetOptions(cmd)
			if len(records) == 0 && !opts.JSONOutput {
				fmt.Fprintln(out, "No changes recorded")
				return nil
			}
			printer := cli.NewChangePrinter(out, opts.JSONOutput)
			for _, c := range client.ChangesFromRecords(records) {
				printer.Print(c)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&session, "session", "s", "", "Only show changes from this session")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of changes (0 for all)")
	return cmd
}
