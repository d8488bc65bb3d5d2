package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/grovetools/sigscope/cli"
	"github.com/grovetools/sigscope/internal/daemon/pidfile"
	"github.com/grovetools/sigscope/internal/daemon/server"
	"github.com/grovetools/sigscope/logging"
	"github.com/grovetools/sigscope/pkg/client"
	"github.com/grovetools/sigscope/pkg/paths"
	"github.com/grovetools/sigscope/pkg/process"
)

// stopGrace is how long stop waits after SIGTERM before killing.
const stopGrace = 5 * time.Second

// NewDaemonCmd returns the daemon command with subcommands.
func NewDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the inspector as a background service",
		Long: `Run one inspection session behind a unix socket so that other
sigscope commands (signals, changes, expand, eval, patch) can share it.`,
	}

	cmd.AddCommand(newDaemonStartCmd())
	cmd.AddCommand(newDaemonStopCmd())
	cmd.AddCommand(newDaemonStatusCmd())

	return cmd
}

func newDaemonStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the daemon",
		Long:  "Start the sigscope daemon in foreground mode.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			logger := logging.NewLogger("sigscoped")
			if err := paths.EnsureDirs(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			pidPath := paths.PidFilePath()
			sockPath := client.SocketPath(cfg)

			// 1. Acquire lock
			if err := pidfile.Acquire(pidPath); err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}
			defer func() {
				if err := pidfile.Release(pidPath); err != nil {
					logger.Errorf("Failed to release pidfile: %v", err)
				}
			}()

			// 2. Inspector and sources
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())
			s, err := newSession(cfg, reg, logging.NewLogger("inspector"))
			if err != nil {
				return err
			}
			defer s.insp.Dispose()

			// 3. Server
			srv := server.New(logger, s.insp)
			srv.SetRegistry(reg)
			srv.SetFuzzySearch(cfg.Display.FuzzySearch)
			srv.SetRunningConfig(&client.RunningConfig{
				Session:         s.insp.ID(),
				PollInterval:    cfg.PollInterval().String(),
				HistoryCapacity: cfg.History.Capacity,
				Root:            cfg.Root.File,
				Sources:         s.sourceNames(),
				Journal:         journalLocation(cfg.Journal.Enabled, client.JournalPath(cfg)),
				StartedAt:       time.Now(),
			})

			// 4. Signals
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			go func() {
				<-ctx.Done()
				logger.Info("Received stop signal")
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Errorf("Server shutdown error: %v", err)
				}
			}()

			// 5. Inspector in background
			go func() {
				if err := s.insp.Run(ctx, s.sources...); err != nil {
					logger.WithError(err).Error("Inspector stopped")
				}
			}()

			// 6. Server (blocking)
			logger.WithField("pid", os.Getpid()).Info("Starting daemon")
			if err := srv.ListenAndServe(sockPath); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
}

func journalLocation(enabled bool, path string) string {
	if !enabled {
		return ""
	}
	return path
}

func newDaemonStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			pidPath := paths.PidFilePath()

			running, pid, err := pidfile.IsRunning(pidPath)
			if err != nil {
				return fmt.Errorf("error checking status: %w", err)
			}

			out := cmd.OutOrStdout()
			if !running {
				fmt.Fprintln(out, "Daemon is not running")
				return nil
			}

			if err := process.Terminate(pid, stopGrace); err != nil {
				return fmt.Errorf("failed to stop daemon: %w", err)
			}
			fmt.Fprintf(out, "Stopped daemon (PID: %d)\n", pid)
			return nil
		},
	}
}

func newDaemonStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			running, pid, err := pidfile.IsRunning(paths.PidFilePath())
			if err != nil {
				return fmt.Errorf("error: %w", err)
			}

			out := cmd.OutOrStdout()
			if !running {
				fmt.Fprintln(out, "Stopped")
				os.Exit(1) // Non-zero for the stopped state (useful for scripts)
			}

			fmt.Fprintf(out, "Running (PID: %d)\nSocket: %s\n", pid, client.SocketPath(cfg))
			rc, err := client.NewRemoteClient(client.SocketPath(cfg))
			if err != nil {
				return nil
			}
			defer rc.Close()
			if rcfg, err := rc.Config(cmd.Context()); err == nil {
				fmt.Fprintf(out, "Session: %s\nStarted: %s\n", rcfg.Session, rcfg.StartedAt.Local().Format(time.RFC3339))
			}
			return nil
		},
	}
}
