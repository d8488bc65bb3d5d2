package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/grovetools/tend/pkg/fs"
	"github.com/grovetools/tend/pkg/harness"
	"github.com/grovetools/tend/pkg/tui"
)

// WatchPanelScenario tests navigation, search and expansion in the panel.
func WatchPanelScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "sigscope-watch-panel",
		Description: "Opens the panel and exercises search, expansion and the help view.",
		Tags:        []string{"sigscope", "tui"},
		Steps: []harness.Step{
			harness.NewStep("Setup project", func(ctx *harness.Context) error {
				return writeProject(ctx.RootDir, "")
			}),
			harness.NewStep("Launch panel", func(ctx *harness.Context) error {
				bin, err := findSigscopeBinary()
				if err != nil {
					return err
				}
				session, err := ctx.StartTUI(bin, []string{"watch"})
				if err != nil {
					return fmt.Errorf("failed to start TUI: %w", err)
				}
				ctx.Set("tui_session", session)

				if err := session.WaitForText("Signals (", 10*time.Second); err != nil {
					content, _ := session.Capture()
					return fmt.Errorf("panel did not load within timeout: %w\nContent: %s", err, content)
				}
				if err := session.WaitForText("user.email", 5*time.Second); err != nil {
					content, _ := session.Capture()
					return fmt.Errorf("signals were not discovered: %w\nContent: %s", err, content)
				}
				return session.WaitStable()
			}),
			harness.NewStep("Verify ANSI color codes are present", func(ctx *harness.Context) error {
				session := ctx.Get("tui_session").(*tui.Session)
				content, err := session.Capture(tui.WithRawOutput())
				if err != nil {
					return fmt.Errorf("failed to capture raw output: %w", err)
				}
				if !strings.Contains(content, "\x1b[") {
					return fmt.Errorf("no ANSI escape codes found in panel output; styles are not being applied")
				}
				return nil
			}),
			harness.NewStep("Search signals", func(ctx *harness.Context) error {
				session := ctx.Get("tui_session").(*tui.Session)

				if err := session.SendKeys("/"); err != nil {
					return fmt.Errorf("failed to send / key: %w", err)
				}
				if err := session.SendKeys("EMAIL"); err != nil {
					return fmt.Errorf("failed to type query: %w", err)
				}
				if err := session.SendKeys("Enter"); err != nil {
					return fmt.Errorf("failed to press enter: %w", err)
				}
				if err := session.WaitForText("Signals (1)", 2*time.Second); err != nil {
					content, _ := session.Capture()
					return fmt.Errorf("search did not filter rows: %w\nContent: %s", err, content)
				}
				if err := session.AssertNotContains("user.name"); err != nil {
					content, _ := session.Capture()
					return fmt.Errorf("filtered row still visible: %w\nContent: %s", err, content)
				}
				return nil
			}),
			harness.NewStep("Clear search and expand a row", func(ctx *harness.Context) error {
				session := ctx.Get("tui_session").(*tui.Session)

				if err := session.SendKeys("/"); err != nil {
					return err
				}
				if err := session.SendKeys("Escape"); err != nil {
					return err
				}
				if err := session.WaitForText("user.name", 2*time.Second); err != nil {
					content, _ := session.Capture()
					return fmt.Errorf("search was not cleared: %w\nContent: %s", err, content)
				}

				// Rows are sorted: count, items, user, user.email, user.name.
				if err := session.SendKeys("j"); err != nil {
					return err
				}
				if err := session.SendKeys("Enter"); err != nil {
					return err
				}
				if err := session.WaitStable(); err != nil {
					return err
				}
				content, err := session.Capture()
				if err != nil {
					return err
				}
				// The expanded array renders one element per line.
				if !strings.Contains(content, "1,") || !strings.Contains(content, "3") {
					return fmt.Errorf("expanded detail not shown\nContent: %s", content)
				}
				return nil
			}),
			harness.NewStep("Show help and quit", func(ctx *harness.Context) error {
				session := ctx.Get("tui_session").(*tui.Session)

				if err := session.SendKeys("?"); err != nil {
					return err
				}
				if err := session.WaitForText("clear log", 2*time.Second); err != nil {
					content, _ := session.Capture()
					return fmt.Errorf("help view did not open: %w\nContent: %s", err, content)
				}
				return session.SendKeys("q")
			}),
		},
	}
}

// WatchPanelPatchScenario feeds the panel from a tailed JSONL patch log.
func WatchPanelPatchScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "sigscope-watch-patch",
		Description: "Appends a patch to a tailed JSONL file and checks the change log tab.",
		Tags:        []string{"sigscope", "tui", "sources"},
		Steps: []harness.Step{
			harness.NewStep("Setup project with a tail source", func(ctx *harness.Context) error {
				patchLog := filepath.Join(ctx.RootDir, "patches.jsonl")
				if err := fs.WriteString(patchLog, ""); err != nil {
					return err
				}
				ctx.Set("patch_log", patchLog)
				extra := fmt.Sprintf(`sources:
  - name: patches
    type: tail
    path: %s
`, patchLog)
				return writeProject(ctx.RootDir, extra)
			}),
			harness.NewStep("Launch panel", func(ctx *harness.Context) error {
				bin, err := findSigscopeBinary()
				if err != nil {
					return err
				}
				session, err := ctx.StartTUI(bin, []string{"watch"})
				if err != nil {
					return fmt.Errorf("failed to start TUI: %w", err)
				}
				ctx.Set("tui_session", session)
				if err := session.WaitForText("Changes (0)", 10*time.Second); err != nil {
					content, _ := session.Capture()
					return fmt.Errorf("panel did not load within timeout: %w\nContent: %s", err, content)
				}
				return nil
			}),
			harness.NewStep("Append a patch", func(ctx *harness.Context) error {
				session := ctx.Get("tui_session").(*tui.Session)
				if err := fs.WriteString(ctx.GetString("patch_log"), `{"status": "ready"}`+"\n"); err != nil {
					return err
				}
				if err := session.WaitForText("Changes (1)", 5*time.Second); err != nil {
					content, _ := session.Capture()
					return fmt.Errorf("patch was not recorded: %w\nContent: %s", err, content)
				}
				return nil
			}),
			harness.NewStep("Open the change log", func(ctx *harness.Context) error {
				session := ctx.Get("tui_session").(*tui.Session)
				if err := session.SendKeys("Tab"); err != nil {
					return err
				}
				if err := session.WaitForText("status: undefined", 2*time.Second); err != nil {
					content, _ := session.Capture()
					return fmt.Errorf("change entry not shown: %w\nContent: %s", err, content)
				}
				if err := session.AssertContains("ready"); err != nil {
					return err
				}

				// Clear the log.
				if err := session.SendKeys("c"); err != nil {
					return err
				}
				if err := session.WaitForText("No changes recorded", 2*time.Second); err != nil {
					content, _ := session.Capture()
					return fmt.Errorf("change log was not cleared: %w\nContent: %s", err, content)
				}
				return session.SendKeys("q")
			}),
		},
	}
}
