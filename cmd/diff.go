package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grovetools/sigscope/cli"
	"github.com/grovetools/sigscope/pkg/console"
	"github.com/grovetools/sigscope/pkg/export"
	"github.com/grovetools/sigscope/pkg/signal"
	"github.com/grovetools/sigscope/tui/theme"
)

// NewDiffCmd compares two export files.
func NewDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <before> <after>",
		Short: "Compare two export files path by path",
		Long: `Compare two files written by 'sigscope export' and list the paths that
were added, removed or changed.

Examples:
  sigscope diff signals-1700000000000.json signals-1700000060000.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			before, err := readExport(args[0])
			if err != nil {
				return err
			}
			after, err := readExport(args[1])
			if err != nil {
				return err
			}

			diffs := export.Diff(before, after)
			out := cmd.OutOrStdout()
			if cli.GetOptions(cmd).JSONOutput {
				data, err := json.MarshalIndent(diffs, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			if len(diffs) == 0 {
				fmt.Fprintln(out, "No differences")
				return nil
			}
			t := theme.DefaultTheme
			for _, d := range diffs {
				switch d.Kind {
				case "added":
					fmt.Fprintf(out, "%s %s = %s\n", t.Success.Render("+"), t.Path.Render(d.Path), shortValue(d.New))
				case "removed":
					fmt.Fprintf(out, "%s %s = %s\n", t.Error.Render("-"), t.Path.Render(d.Path), shortValue(d.Old))
				default:
					fmt.Fprintf(out, "%s %s: %s %s %s\n", t.Warning.Render("~"), t.Path.Render(d.Path),
						t.OldValue.Render(shortValue(d.Old)), theme.IconArrow, t.NewValue.Render(shortValue(d.New)))
				}
			}
			return nil
		},
	}
}

func readExport(path string) (signal.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return export.Parse(data)
}

func shortValue(v any) string {
	return signal.Truncate(console.Inline(v), 50)
}
