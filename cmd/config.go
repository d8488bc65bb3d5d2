package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/sigscope/cli"
	"github.com/grovetools/sigscope/config"
)

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Display the effective configuration",
		Long: `Shows the configuration sigscope runs with after merging:
1. Global config (~/.config/sigscope/sigscope.yml)
2. Project config (sigscope.yml, found by walking up from the current directory)
Defaults are filled in. This is useful for debugging configuration issues.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			source := cli.GetOptions(cmd).ConfigFile
			if source == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get current directory: %w", err)
				}
				if path, err := config.FindConfigFile(cwd); err == nil {
					source = path
				} else {
					source = "defaults"
				}
			}
			fmt.Fprintf(out, "# Source: %s\n", source)

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Fprint(out, string(data))
			return nil
		},
	}
	return cmd
}
