package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grovetools/sigscope/cli"
	"github.com/grovetools/sigscope/errors"
	"github.com/grovetools/sigscope/pkg/client"
	"github.com/grovetools/sigscope/pkg/export"
)

// connect returns a client for the running daemon, or an error telling the
// user how to start one.
func connect(cmd *cobra.Command) (*client.RemoteClient, error) {
	cfg, err := cli.LoadConfig(cmd)
	if err != nil {
		return nil, err
	}
	socketPath := client.SocketPath(cfg)
	if !client.Reachable(socketPath) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "daemon is not running; start it with 'sigscope daemon start'").
			WithDetail("socket", socketPath)
	}
	return client.NewRemoteClient(socketPath)
}

// NewSignalsCmd lists signals from the daemon, or from the root document
// when no daemon runs.
func NewSignalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signals [query]",
		Short: "List signals and their values",
		Long: `List every signal with its type and value. A query filters paths
(case-insensitive substring, or fuzzy when display.fuzzy_search is set).

Without a running daemon the configured root document is flattened once.

Examples:
  sigscope signals
  sigscope signals user
  sigscope signals --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			c := client.New(cfg)
			defer c.Close()

			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			snap, err := c.Signals(cmd.Context(), query)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if cli.GetOptions(cmd).JSONOutput {
				_, err = out.Write(export.Serialize(snap))
				return err
			}
			if len(snap) == 0 {
				fmt.Fprintln(out, "No signals")
				return nil
			}
			printSignalTable(out, snap)
			return nil
		},
	}
}

// NewGetCmd reads one signal live through the daemon's root.
func NewGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>",
		Short: "Read one signal through the live root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer rc.Close()

			v, err := rc.Signal(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cli.GetOptions(cmd).JSONOutput {
				data, err := json.Marshal(v)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			fmt.Fprintf(out, "%s (%s): %s\n", v.Path, v.Type, string(v.Value))
			return nil
		},
	}
}

// NewExpandCmd toggles or lists expanded paths in the daemon.
func NewExpandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expand [path]",
		Short: "Toggle or list expanded signals",
		Long: `With a path, toggle whether the signal's detail is expanded in the
daemon's session. Without one, list the expanded paths.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer rc.Close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				paths, err := rc.Expanded(cmd.Context())
				if err != nil {
					return err
				}
				for _, p := range paths {
					fmt.Fprintln(out, p)
				}
				return nil
			}

			expanded, err := rc.Toggle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			state := "collapsed"
			if expanded {
				state = "expanded"
			}
			fmt.Fprintf(out, "%s %s\n", args[0], state)
			return nil
		},
	}
}

// NewEvalCmd runs one console command in the daemon.
func NewEvalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval <command...>",
		Short: "Run a console command against the daemon",
		Long: `Run one sandboxed console command in the daemon's session.

Commands: get, set, keys, count, changes, expanded, help, and
$signals.path read expressions.

Examples:
  sigscope eval count
  sigscope eval get user.name
  sigscope eval set count 3
  sigscope eval '$signals.user.name'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer rc.Close()

			output, err := rc.Eval(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}
}

// NewPatchCmd pushes a patch object to the daemon.
func NewPatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "patch <json>",
		Short: "Push a patch to the daemon",
		Long: `Merge a JSON object into the daemon's snapshot. Nested objects are
spread into dotted paths, so siblings are left alone.

Examples:
  sigscope patch '{"count": 2}'
  sigscope patch '{"user": {"name": "Bo"}}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch map[string]any
			if err := json.Unmarshal([]byte(args[0]), &patch); err != nil || patch == nil {
				return errors.InvalidPatch("command line", fmt.Errorf("patch is not a JSON object"))
			}

			rc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer rc.Close()

			changes, err := rc.Patch(cmd.Context(), patch)
			if err != nil {
				return err
			}
			printer := cli.NewChangePrinter(cmd.OutOrStdout(), cli.GetOptions(cmd).JSONOutput)
			for _, c := range changes {
				printer.Print(c)
			}
			return nil
		},
	}
}
