package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grovetools/sigscope/config"
)

// NewSchemaCmd prints the configuration JSON Schema.
func NewSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for sigscope.yml",
		Long: `Print the JSON Schema used to validate sigscope.yml and sigscope.toml.
Editors with YAML language server support can use it for completion.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.GenerateSchema()
			if err != nil {
				return fmt.Errorf("failed to generate schema: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
