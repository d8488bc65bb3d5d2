package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/grovetools/tend/pkg/assert"
	"github.com/grovetools/tend/pkg/fs"
	"github.com/grovetools/tend/pkg/harness"
)

// SnapshotScenario flattens the root document once.
func SnapshotScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "sigscope-snapshot",
		Description: "Flattens the root document and prints it in export format and as a table.",
		Tags:        []string{"sigscope", "snapshot"},
		Steps: []harness.Step{
			harness.NewStep("Setup project", func(ctx *harness.Context) error {
				dir := ctx.NewDir("snapshot-project")
				ctx.Set("project_dir", dir)
				return writeProject(dir, "")
			}),
			harness.NewStep("Print export format", func(ctx *harness.Context) error {
				bin, err := findSigscopeBinary()
				if err != nil {
					return err
				}
				cmd := ctx.Command(bin, "snapshot").Dir(ctx.GetString("project_dir"))
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)
				if result.Error != nil {
					return fmt.Errorf("`sigscope snapshot` failed: %w", result.Error)
				}

				out := result.Stdout
				if err := assert.Contains(out, `"count": 1`, "leaf count"); err != nil {
					return err
				}
				if err := assert.Contains(out, `"user.name": "Amy"`, "nested leaf as dotted path"); err != nil {
					return err
				}
				if err := assert.Contains(out, `"items": [`, "arrays stay whole leaves"); err != nil {
					return err
				}
				// Paths are sorted, so count precedes items.
				if strings.Index(out, `"count"`) > strings.Index(out, `"items"`) {
					return fmt.Errorf("export is not sorted by path:\n%s", out)
				}
				return nil
			}),
			harness.NewStep("Print table", func(ctx *harness.Context) error {
				bin, err := findSigscopeBinary()
				if err != nil {
					return err
				}
				cmd := ctx.Command(bin, "snapshot", "--table").Dir(ctx.GetString("project_dir"))
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)
				if result.Error != nil {
					return fmt.Errorf("`sigscope snapshot --table` failed: %w", result.Error)
				}
				if err := assert.Contains(result.Stdout, "PATH", "table header"); err != nil {
					return err
				}
				return assert.Contains(result.Stdout, "amy@example.com", "email value")
			}),
		},
	}
}

// SignalsSearchScenario filters signals without a daemon.
func SignalsSearchScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "sigscope-signals-search",
		Description: "Lists signals from the root document filtered by a case-insensitive query.",
		Tags:        []string{"sigscope", "signals"},
		Steps: []harness.Step{
			harness.NewStep("Filter by query", func(ctx *harness.Context) error {
				dir := ctx.NewDir("signals-project")
				if err := writeProject(dir, ""); err != nil {
					return err
				}
				bin, err := findSigscopeBinary()
				if err != nil {
					return err
				}

				cmd := ctx.Command(bin, "signals", "EMAIL", "--json").Dir(dir)
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)
				if result.Error != nil {
					return fmt.Errorf("`sigscope signals` failed: %w", result.Error)
				}
				if err := assert.Contains(result.Stdout, `"user.email"`, "matching path"); err != nil {
					return err
				}
				return assert.NotContains(result.Stdout, `"count"`, "non-matching path")
			}),
		},
	}
}

// ExportDiffScenario exports twice around an edit and diffs the files.
func ExportDiffScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "sigscope-export-diff",
		Description: "Exports the snapshot before and after an edit and compares the files.",
		Tags:        []string{"sigscope", "export"},
		Steps: []harness.Step{
			harness.NewStep("Export, edit, export, diff", func(ctx *harness.Context) error {
				dir := ctx.NewDir("export-project")
				exportDir := filepath.Join(dir, "exports")
				if err := writeProject(dir, "export:\n  dir: "+exportDir+"\n"); err != nil {
					return err
				}
				bin, err := findSigscopeBinary()
				if err != nil {
					return err
				}

				first := ctx.Command(bin, "export").Dir(dir).Run()
				ctx.ShowCommandOutput("sigscope export", first.Stdout, first.Stderr)
				if first.Error != nil {
					return fmt.Errorf("first export failed: %w", first.Error)
				}
				before := strings.TrimSpace(first.Stdout)
				if err := assert.Contains(before, exportDir, "export lands in export.dir"); err != nil {
					return err
				}

				edited := strings.Replace(rootDocument, `"Amy"`, `"Bo"`, 1)
				if err := fs.WriteString(filepath.Join(dir, "state.json"), edited); err != nil {
					return err
				}

				second := ctx.Command(bin, "export", "--dir", filepath.Join(dir, "later")).Dir(dir).Run()
				ctx.ShowCommandOutput("sigscope export --dir later", second.Stdout, second.Stderr)
				if second.Error != nil {
					return fmt.Errorf("second export failed: %w", second.Error)
				}
				after := strings.TrimSpace(second.Stdout)

				saved, err := fs.ReadString(before)
				if err != nil {
					return err
				}
				if err := assert.Contains(saved, `"user.name": "Amy"`, "first export content"); err != nil {
					return err
				}

				cmd := ctx.Command(bin, "diff", before, after, "--json").Dir(dir)
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)
				if result.Error != nil {
					return fmt.Errorf("`sigscope diff` failed: %w", result.Error)
				}
				if err := assert.Contains(result.Stdout, `"path": "user.name"`, "changed path"); err != nil {
					return err
				}
				return assert.NotContains(result.Stdout, `"path": "count"`, "unchanged path")
			}),
		},
	}
}

// DiscoveryTimeoutScenario verifies that a root that never appears is
// reported after the discovery window.
func DiscoveryTimeoutScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "sigscope-discovery-timeout",
		Description: "Reports DISCOVERY_TIMEOUT when the root document never appears.",
		Tags:        []string{"sigscope", "discovery"},
		Steps: []harness.Step{
			harness.NewStep("Snapshot with a missing root", func(ctx *harness.Context) error {
				dir := ctx.NewDir("missing-root")
				config := fmt.Sprintf("version: \"1.0\"\nroot:\n  file: %s\n", filepath.Join(dir, "never.json"))
				if err := fs.WriteString(filepath.Join(dir, "sigscope.yml"), config); err != nil {
					return err
				}
				bin, err := findSigscopeBinary()
				if err != nil {
					return err
				}

				cmd := ctx.Command(bin, "snapshot", "--verbose").Dir(dir)
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Equal(1, result.ExitCode, "snapshot should fail"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stderr, "no signal root appeared within 5s", "timeout hint"); err != nil {
					return err
				}
				return assert.Contains(result.Stderr, "DISCOVERY_TIMEOUT", "error details in verbose mode")
			}),
		},
	}
}
