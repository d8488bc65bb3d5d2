package main

import (
	"fmt"
	"path/filepath"

	"github.com/grovetools/tend/pkg/assert"
	"github.com/grovetools/tend/pkg/fs"
	"github.com/grovetools/tend/pkg/harness"
)

// ConfigLayeringScenario verifies that project config is merged over the
// global config.
func ConfigLayeringScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "sigscope-config-layering",
		Description: "Verifies that global and project configs are merged correctly.",
		Tags:        []string{"sigscope", "config"},
		Steps: []harness.Step{
			{
				Name: "Setup layered configuration and verify merge logic",
				Func: func(ctx *harness.Context) error {
					projectDir := ctx.NewDir("layered-project")
					globalConfigDir := filepath.Join(ctx.ConfigDir(), "sigscope")
					if err := fs.CreateDir(globalConfigDir); err != nil {
						return fmt.Errorf("failed to create global config dir: %w", err)
					}

					globalYAML := `version: "1.0"
poll:
  interval: 5s
history:
  capacity: 20
display:
  theme: light
`
					if err := fs.WriteString(filepath.Join(globalConfigDir, "sigscope.yml"), globalYAML); err != nil {
						return err
					}

					projectYAML := `version: "1.0"
poll:
  interval: 500ms
display:
  position: bottom
`
					if err := fs.WriteString(filepath.Join(projectDir, "sigscope.yml"), projectYAML); err != nil {
						return err
					}

					bin, err := findSigscopeBinary()
					if err != nil {
						return err
					}

					cmd := ctx.Command(bin, "config").Dir(projectDir)
					result := cmd.Run()
					ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)
					if result.Error != nil {
						return fmt.Errorf("`sigscope config` failed: %w", result.Error)
					}

					output := result.Stdout
					if err := assert.Contains(output, "interval: 500ms", "project poll interval should win"); err != nil {
						return err
					}
					if err := assert.Contains(output, "capacity: 20", "global history capacity should be kept"); err != nil {
						return err
					}
					if err := assert.Contains(output, "theme: light", "global theme should be kept"); err != nil {
						return err
					}
					return assert.Contains(output, "position: bottom", "project position should be used")
				},
			},
		},
	}
}

// ConfigMissingScenario verifies that commands run on defaults without any
// configuration file.
func ConfigMissingScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "sigscope-config-missing",
		Description: "Verifies that defaults apply when no sigscope.yml exists.",
		Tags:        []string{"sigscope", "config"},
		Steps: []harness.Step{
			harness.NewStep("Run 'sigscope config' without a config file", func(ctx *harness.Context) error {
				emptyDir := ctx.NewDir("no-config")
				bin, err := findSigscopeBinary()
				if err != nil {
					return err
				}

				cmd := ctx.Command(bin, "config").Dir(emptyDir)
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Equal(0, result.ExitCode, "config should succeed on defaults"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "# Source: defaults", "source should be defaults"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "interval: 2s", "default poll interval"); err != nil {
					return err
				}
				return assert.Contains(result.Stdout, "capacity: 100", "default history capacity")
			}),
		},
	}
}

// ConfigInvalidScenario verifies that validation errors are reported with a
// hint and a non-zero exit code.
func ConfigInvalidScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "sigscope-config-invalid",
		Description: "Verifies that an invalid configuration is rejected.",
		Tags:        []string{"sigscope", "config"},
		Steps: []harness.Step{
			harness.NewStep("Reject an unknown source type", func(ctx *harness.Context) error {
				projectDir := ctx.NewDir("invalid-config")
				invalidYAML := `version: "1.0"
sources:
  - name: bus
    type: carrier-pigeon
`
				if err := fs.WriteString(filepath.Join(projectDir, "sigscope.yml"), invalidYAML); err != nil {
					return err
				}

				bin, err := findSigscopeBinary()
				if err != nil {
					return err
				}

				cmd := ctx.Command(bin, "config").Dir(projectDir)
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Equal(1, result.ExitCode, "invalid config should fail"); err != nil {
					return err
				}
				return assert.Contains(result.Stderr, "sigscope schema", "stderr should point at the schema")
			}),
		},
	}
}
