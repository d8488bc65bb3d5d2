package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"

	"github.com/grovetools/sigscope/cli"
	"github.com/grovetools/sigscope/logging"
	"github.com/grovetools/sigscope/pkg/paths"
	"github.com/grovetools/sigscope/tui/theme"
)

// NewLogsCmd creates the `logs` command.
func NewLogsCmd() *cobra.Command {
	var (
		component string
		follow    bool
		tailLines int
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show sigscope log files",
		Long: `Show the newest log file of a component. Components write to
<state dir>/logs/<component>-<date>.log unless logging.file.path is set.

Examples:
  # Follow the daemon log
  sigscope logs -f

  # Last 20 inspector lines in JSON Lines format
  sigscope logs --component inspector --tail 20 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			var logCfg logging.Config
			_ = cfg.UnmarshalExtension("logging", &logCfg)

			path := logCfg.File.Path
			if !logCfg.File.Enabled || path == "" {
				path, err = findLatestLogFile(paths.LogDir(), component)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			asJSON := cli.GetOptions(cmd).JSONOutput
			emitLine := func(line string) {
				if asJSON {
					printLogJSON(out, component, line)
				} else {
					printLogText(out, line)
				}
			}

			if follow {
				return followLog(cmd, path, tailLines, emitLine)
			}
			lines, err := lastLines(path, tailLines)
			if err != nil {
				return err
			}
			for _, line := range lines {
				emitLine(line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&component, "component", "sigscoped", "Component whose log to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVar(&tailLines, "tail", -1, "Number of lines to show from the end of the log (default: all)")
	return cmd
}

// findLatestLogFile finds the most recently modified log of component in dir.
func findLatestLogFile(dir, component string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, component+"-*.log"))
	if err != nil {
		return "", err
	}
	var latestPath string
	var latest time.Time
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		if latestPath == "" || info.ModTime().After(latest) {
			latestPath = m
			latest = info.ModTime()
		}
	}
	if latestPath == "" {
		return "", fmt.Errorf("no log files for %s found in %s", component, dir)
	}
	return latestPath, nil
}

// lastLines returns the non-empty lines of path, the last n when n >= 0.
func lastLines(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if n >= 0 && n < len(lines) {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

// followLog prints the last tailLines lines, then follows the file across
// rotation until interrupted.
func followLog(cmd *cobra.Command, path string, tailLines int, emitLine func(string)) error {
	location := &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	if tailLines != 0 {
		lines, err := lastLines(path, tailLines)
		if err != nil {
			return err
		}
		for _, line := range lines {
			emitLine(line)
		}
	}

	tf, err := tail.TailFile(path, tail.Config{
		Follow:   true,
		ReOpen:   true,
		Location: location,
		Logger:   stdlog.New(io.Discard, "", 0),
	})
	if err != nil {
		return fmt.Errorf("failed to follow %s: %w", path, err)
	}
	defer tf.Cleanup()
	defer func() { _ = tf.Stop() }()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	for {
		select {
		case line, ok := <-tf.Lines:
			if !ok {
				return nil
			}
			if line.Err == nil && strings.TrimSpace(line.Text) != "" {
				emitLine(strings.TrimSpace(line.Text))
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// printLogJSON prints a log line as JSON, enriched with the component.
func printLogJSON(w io.Writer, component, line string) {
	var logMap map[string]interface{}
	if err := json.Unmarshal([]byte(line), &logMap); err != nil {
		logMap = map[string]interface{}{
			"component": component,
			"raw_line":  line,
		}
	}
	if _, ok := logMap["component"]; !ok {
		logMap["component"] = component
	}
	jsonData, _ := json.Marshal(logMap)
	fmt.Fprintln(w, string(jsonData))
}

// printLogText pretty-prints a JSON log line; text lines pass through.
func printLogText(w io.Writer, line string) {
	var logMap map[string]interface{}
	if err := json.Unmarshal([]byte(line), &logMap); err != nil {
		fmt.Fprintln(w, line)
		return
	}

	t := theme.DefaultTheme
	ts, _ := logMap["time"].(string)
	level, _ := logMap["level"].(string)
	msg, _ := logMap["msg"].(string)
	component, _ := logMap["component"].(string)

	parsedTime, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		parsedTime, _ = time.Parse(time.RFC3339, ts)
	}

	var levelStyle lipgloss.Style
	switch strings.ToLower(level) {
	case "error", "fatal", "panic":
		levelStyle = t.Error
	case "warning":
		levelStyle = t.Warning
	case "info":
		levelStyle = t.Info
	default:
		levelStyle = t.Muted
	}

	var keys []string
	for k := range logMap {
		if k != "time" && k != "level" && k != "msg" && k != "component" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	fields := make([]string, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, fmt.Sprintf("%s=%v", t.Muted.Render(k), logMap[k]))
	}

	fmt.Fprintf(w, "%s %s %s [%s] %s\n",
		parsedTime.Format("15:04:05"),
		levelStyle.Render(strings.ToUpper(level)),
		msg,
		t.Muted.Render(component),
		strings.Join(fields, " "),
	)
}
