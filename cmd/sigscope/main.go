package main

import (
	"os"

	"github.com/grovetools/sigscope/cli"
	"github.com/grovetools/sigscope/cmd"
	"github.com/grovetools/sigscope/pkg/profiling"
	"github.com/grovetools/sigscope/version"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"sigscope",
		"Live inspector for reactive signal trees",
	)
	rootCmd.Long = `sigscope mirrors a tree of named reactive values into a flat snapshot,
records every change, and renders both in a terminal panel.

Signals come from a root document (root.file) that is rescanned on an
interval, and from patch sources: SSE, websocket, NATS or a tailed JSONL file.`
	cli.SetVersionTemplate(rootCmd, version.GetInfo())

	profiler := profiling.NewCobraProfiler()
	profiler.AddFlags(rootCmd)
	rootCmd.PersistentPreRunE = profiler.PreRun
	rootCmd.PersistentPostRun = profiler.PostRun

	// Add subcommands
	rootCmd.AddCommand(cmd.NewWatchCmd())
	rootCmd.AddCommand(cmd.NewSnapshotCmd())
	rootCmd.AddCommand(cmd.NewSignalsCmd())
	rootCmd.AddCommand(cmd.NewGetCmd())
	rootCmd.AddCommand(cmd.NewChangesCmd())
	rootCmd.AddCommand(cmd.NewExpandCmd())
	rootCmd.AddCommand(cmd.NewEvalCmd())
	rootCmd.AddCommand(cmd.NewPatchCmd())
	rootCmd.AddCommand(cmd.NewExportCmd())
	rootCmd.AddCommand(cmd.NewDiffCmd())
	rootCmd.AddCommand(cmd.NewJournalCmd())
	rootCmd.AddCommand(cmd.NewDaemonCmd())
	rootCmd.AddCommand(cmd.NewLogsCmd())
	rootCmd.AddCommand(cmd.NewConfigCmd())
	rootCmd.AddCommand(cmd.NewPathsCmd())
	rootCmd.AddCommand(cmd.NewSchemaCmd())
	rootCmd.AddCommand(cli.NewVersionCommand("sigscope"))
	cli.ApplyStyledHelpRecursive(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
		_ = cli.NewErrorHandler(verbose).Handle(err)
		os.Exit(1)
	}
}
