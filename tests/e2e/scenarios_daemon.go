package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/grovetools/tend/pkg/assert"
	"github.com/grovetools/tend/pkg/harness"
	"github.com/grovetools/tend/pkg/tui"
)

// DaemonLifecycleScenario starts the daemon, talks to it over its socket and
// stops it again.
func DaemonLifecycleScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "sigscope-daemon-lifecycle",
		Description: "Runs the daemon and drives patch, eval, changes, expand and journal against it.",
		Tags:        []string{"sigscope", "daemon"},
		Steps: []harness.Step{
			harness.NewStep("Setup project", func(ctx *harness.Context) error {
				// StartTUI sets the working directory to RootDir
				extra := fmt.Sprintf(`journal:
  enabled: true
  path: %s
logging:
  level: debug
`, filepath.Join(ctx.RootDir, "journal.db"))
				return writeProject(ctx.RootDir, extra)
			}),
			harness.NewStep("Start daemon", func(ctx *harness.Context) error {
				bin, err := findSigscopeBinary()
				if err != nil {
					return err
				}
				session, err := ctx.StartTUI(bin, []string{"daemon", "start"})
				if err != nil {
					return fmt.Errorf("failed to start daemon: %w", err)
				}
				ctx.Set("daemon_session", session)

				if err := session.WaitForText("Daemon listening", 10*time.Second); err != nil {
					content, _ := session.Capture()
					return fmt.Errorf("daemon did not start: %w\nContent: %s", err, content)
				}
				return nil
			}),
			harness.NewStep("Push a patch", func(ctx *harness.Context) error {
				bin, err := findSigscopeBinary()
				if err != nil {
					return err
				}
				cmd := ctx.Command(bin, "patch", `{"count": 5}`).Dir(ctx.RootDir)
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)
				if result.Error != nil {
					return fmt.Errorf("`sigscope patch` failed: %w", result.Error)
				}
				return assert.Contains(result.Stdout, "count", "patch should report the change")
			}),
			harness.NewStep("Evaluate console commands", func(ctx *harness.Context) error {
				bin, err := findSigscopeBinary()
				if err != nil {
					return err
				}
				cmd := ctx.Command(bin, "eval", "get", "user.name").Dir(ctx.RootDir)
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)
				if result.Error != nil {
					return fmt.Errorf("`sigscope eval` failed: %w", result.Error)
				}
				if err := assert.Contains(result.Stdout, "Amy", "live read through the root"); err != nil {
					return err
				}

				cmd = ctx.Command(bin, "eval", "rm", "-rf").Dir(ctx.RootDir)
				result = cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)
				if err := assert.Equal(1, result.ExitCode, "unknown console command should fail"); err != nil {
					return err
				}
				return assert.Contains(result.Stderr, "unknown command", "sandbox rejects the command")
			}),
			harness.NewStep("Read the change log", func(ctx *harness.Context) error {
				bin, err := findSigscopeBinary()
				if err != nil {
					return err
				}
				cmd := ctx.Command(bin, "changes", "--json").Dir(ctx.RootDir)
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)
				if result.Error != nil {
					return fmt.Errorf("`sigscope changes` failed: %w", result.Error)
				}
				if err := assert.Contains(result.Stdout, `"path":"count"`, "patched path"); err != nil {
					return err
				}
				return assert.Contains(result.Stdout, `"new_value":5`, "patched value")
			}),
			harness.NewStep("Toggle expanded state", func(ctx *harness.Context) error {
				bin, err := findSigscopeBinary()
				if err != nil {
					return err
				}
				toggle := ctx.Command(bin, "expand", "user").Dir(ctx.RootDir).Run()
				ctx.ShowCommandOutput("sigscope expand user", toggle.Stdout, toggle.Stderr)
				if err := assert.Contains(toggle.Stdout, "user expanded", "toggle result"); err != nil {
					return err
				}

				list := ctx.Command(bin, "expand").Dir(ctx.RootDir).Run()
				ctx.ShowCommandOutput("sigscope expand", list.Stdout, list.Stderr)
				return assert.Contains(list.Stdout, "user", "expanded paths")
			}),
			harness.NewStep("Stop daemon and read the journal", func(ctx *harness.Context) error {
				bin, err := findSigscopeBinary()
				if err != nil {
					return err
				}
				stop := ctx.Command(bin, "daemon", "stop").Dir(ctx.RootDir).Run()
				ctx.ShowCommandOutput("sigscope daemon stop", stop.Stdout, stop.Stderr)
				if err := assert.Contains(stop.Stdout, "Stopped daemon", "stop result"); err != nil {
					return err
				}

				session := ctx.Get("daemon_session").(*tui.Session)
				if err := session.WaitForText("Shutting down server", 5*time.Second); err != nil {
					content, _ := session.Capture()
					return fmt.Errorf("daemon did not shut down: %w\nContent: %s", err, content)
				}

				cmd := ctx.Command(bin, "journal", "--json").Dir(ctx.RootDir)
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)
				if result.Error != nil {
					return fmt.Errorf("`sigscope journal` failed: %w", result.Error)
				}
				return assert.Contains(result.Stdout, `"path":"count"`, "journal keeps the patch")
			}),
		},
	}
}
