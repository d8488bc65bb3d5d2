package main

import (
	"github.com/grovetools/tend/pkg/assert"
	"github.com/grovetools/tend/pkg/command"
	"github.com/grovetools/tend/pkg/harness"
)

// VersionScenario tests the 'version' command.
func VersionScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "sigscope-basic-version",
		Steps: []harness.Step{
			harness.NewStep("Run 'sigscope version'", func(ctx *harness.Context) error {
				bin, err := findSigscopeBinary()
				if err != nil {
					return err
				}

				cmd := command.New(bin, "version")
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Equal(0, result.ExitCode, "sigscope version should exit successfully"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "sigscope", "Output should name the binary"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "Commit:", "Output should contain Commit"); err != nil {
					return err
				}
				return assert.Contains(result.Stdout, "Build Date:", "Output should contain Build Date")
			}),
		},
	}
}

// SchemaScenario tests that 'schema' prints the configuration schema.
func SchemaScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "sigscope-basic-schema",
		Steps: []harness.Step{
			harness.NewStep("Run 'sigscope schema'", func(ctx *harness.Context) error {
				bin, err := findSigscopeBinary()
				if err != nil {
					return err
				}

				cmd := ctx.Command(bin, "schema")
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Equal(0, result.ExitCode, "sigscope schema should exit successfully"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, `"title": "sigscope configuration"`, "schema title"); err != nil {
					return err
				}
				return assert.Contains(result.Stdout, `"sources"`, "schema should describe sources")
			}),
		},
	}
}
