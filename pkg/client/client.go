// Package client talks to the sigscope daemon. When no daemon is running it
// falls back to reading the configured root document and change journal
// directly, so read-only commands work either way.
package client

import (
	"context"
	"net"
	"os"
	"time"

	"github.com/grovetools/sigscope/config"
	"github.com/grovetools/sigscope/pkg/paths"
	"github.com/grovetools/sigscope/pkg/signal"
)

// Client is the read API shared by the daemon client and the local fallback.
type Client interface {
	// Signals returns the snapshot, filtered by query when it is not empty.
	Signals(ctx context.Context, query string) (signal.Snapshot, error)

	// Changes returns up to limit changes, newest first.
	Changes(ctx context.Context, limit int) ([]Change, error)

	// IsRunning reports whether a daemon is serving this client.
	IsRunning() bool

	Close() error
}

// New returns a RemoteClient when a daemon answers on the socket, otherwise
// a LocalClient over cfg.
func New(cfg *config.Config) Client {
	socketPath := SocketPath(cfg)
	if Reachable(socketPath) {
		if c, err := NewRemoteClient(socketPath); err == nil {
			return c
		}
	}
	return NewLocalClient(cfg)
}

// SocketPath returns the configured daemon socket, or the default one.
func SocketPath(cfg *config.Config) string {
	if cfg != nil && cfg.Daemon.Socket != "" {
		return cfg.Daemon.Socket
	}
	return paths.SocketPath()
}

// Reachable reports whether something accepts connections on socketPath.
func Reachable(socketPath string) bool {
	if _, err := os.Stat(socketPath); err != nil {
		return false
	}
	conn, err := net.DialTimeout("unix", socketPath, 100*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
