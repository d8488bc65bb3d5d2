// Package process inspects and stops local processes by PID.
package process

import (
	"fmt"
	"os"
	"syscall"
	"time"
)

// IsProcessAlive checks whether a process with the given PID is running.
// Signal 0 probes for existence; EPERM still means the process exists.
func IsProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	return err == nil || os.IsPermission(err)
}

// Terminate sends SIGTERM and waits up to grace for the process to exit,
// then sends SIGKILL.
func Terminate(pid int, grace time.Duration) error {
	if !IsProcessAlive(pid) {
		return nil
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to signal process %d: %w", pid, err)
	}

	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if !IsProcessAlive(pid) {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	if err := process.Signal(syscall.SIGKILL); err != nil && IsProcessAlive(pid) {
		return fmt.Errorf("failed to kill process %d: %w", pid, err)
	}
	return nil
}
