package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grovetools/sigscope/cli"
	"github.com/grovetools/sigscope/pkg/client"
	"github.com/grovetools/sigscope/pkg/paths"
)

// PathsOutput represents the XDG-compliant paths used by sigscope.
type PathsOutput struct {
	ConfigDir string `json:"config_dir"`
	DataDir   string `json:"data_dir"`
	StateDir  string `json:"state_dir"`
	LogDir    string `json:"log_dir"`
	Socket    string `json:"socket"`
	PidFile   string `json:"pid_file"`
	Journal   string `json:"journal"`
}

func NewPathsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Print the XDG-compliant paths used by sigscope",
		Long: `Print the XDG-compliant paths used by sigscope.

This command outputs the paths in JSON format, making it easy
to parse from scripts and other tools.

- config_dir: Global configuration (sigscope.yml)
- data_dir: Persistent data (change journal)
- state_dir: Runtime state (pid file, logs)
- socket: Daemon unix socket, honoring daemon.socket
- journal: Change journal, honoring journal.path`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			output := PathsOutput{
				ConfigDir: paths.ConfigDir(),
				DataDir:   paths.DataDir(),
				StateDir:  paths.StateDir(),
				LogDir:    paths.LogDir(),
				Socket:    client.SocketPath(cfg),
				PidFile:   paths.PidFilePath(),
				Journal:   client.JournalPath(cfg),
			}

			jsonData, err := json.MarshalIndent(output, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal paths to JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
			return nil
		},
	}

	return cmd
}
