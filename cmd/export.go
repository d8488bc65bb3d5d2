package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/grovetools/sigscope/cli"
	"github.com/grovetools/sigscope/errors"
	"github.com/grovetools/sigscope/pkg/client"
	"github.com/grovetools/sigscope/pkg/export"
)

// NewExportCmd writes the current snapshot to a timestamped file.
func NewExportCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current signals to an export file",
		Long: `Write every signal, sorted by path, to
signals-<unix-millis>.json.

The daemon's snapshot is exported when a daemon runs; otherwise the root
document is flattened once. The directory defaults to export.dir.

Examples:
  sigscope export
  sigscope export --dir ./snapshots`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Export.Dir
			}

			var path string
			switch c := client.New(cfg).(type) {
			case *client.RemoteClient:
				defer c.Close()
				path, err = c.Export(cmd.Context(), dir)
			default:
				defer c.Close()
				path, err = exportLocal(cmd, c, dir)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory for the export file")
	return cmd
}

func exportLocal(cmd *cobra.Command, c client.Client, dir string) (string, error) {
	snap, err := c.Signals(cmd.Context(), "")
	if err != nil {
		return "", err
	}
	path, err := export.WriteFile(dir, snap, time.Now())
	if err != nil {
		return "", errors.ExportFailed(dir, err)
	}
	return path, nil
}
