// Package paths provides XDG-compliant path resolution for sigscope.
//
// Resolution order:
// 1. SIGSCOPE_HOME (portable root) → $SIGSCOPE_HOME/{config,data,state}
// 2. XDG env vars → $XDG_*_HOME/sigscope
// 3. Platform defaults → ~/.config/sigscope, ~/.local/share/sigscope, etc.
package paths

import (
	"os"
	"path/filepath"
)

const appName = "sigscope"

// baseDir resolves one XDG base directory.
func baseDir(homeSub, xdgVar string, fallback ...string) string {
	if home := os.Getenv("SIGSCOPE_HOME"); home != "" {
		return filepath.Join(home, homeSub)
	}
	if dir := os.Getenv(xdgVar); dir != "" {
		return dir
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(append([]string{homeDir}, fallback...)...)
	}
	return ""
}

func appDir(base string) string {
	if base == "" {
		return ""
	}
	return filepath.Join(base, appName)
}

// ConfigDir returns the sigscope configuration directory.
// Used for the global sigscope.yml.
func ConfigDir() string {
	return appDir(baseDir("config", "XDG_CONFIG_HOME", ".config"))
}

// DataDir returns the sigscope data directory.
// Used for the change journal and exports.
func DataDir() string {
	return appDir(baseDir("data", "XDG_DATA_HOME", ".local", "share"))
}

// StateDir returns the sigscope state directory.
// Used for runtime state and logs.
func StateDir() string {
	return appDir(baseDir("state", "XDG_STATE_HOME", ".local", "state"))
}

// RuntimeDir returns the directory for sockets.
// Uses XDG_RUNTIME_DIR when available (Linux), falls back to StateDir (macOS).
func RuntimeDir() string {
	if home := os.Getenv("SIGSCOPE_HOME"); home != "" {
		return filepath.Join(home, "run")
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, appName)
	}
	return StateDir()
}

// SocketPath returns the path to the daemon unix socket.
func SocketPath() string {
	return filepath.Join(RuntimeDir(), "sigscoped.sock")
}

// PidFilePath returns the path to the daemon PID file.
func PidFilePath() string {
	return filepath.Join(StateDir(), "sigscoped.pid")
}

// JournalPath returns the default change journal location.
func JournalPath() string {
	return filepath.Join(DataDir(), "journal.db")
}

// LogDir returns the default directory for log files.
func LogDir() string {
	return filepath.Join(StateDir(), "logs")
}

// EnsureDirs creates all sigscope directories if they don't exist.
func EnsureDirs() error {
	for _, dir := range []string{ConfigDir(), DataDir(), StateDir(), RuntimeDir()} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
