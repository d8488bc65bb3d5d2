package errors

import (
	"fmt"
	"time"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *ScopeError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *ScopeError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// DiscoveryTimeout reports that the host root never became available.
func DiscoveryTimeout(window time.Duration) *ScopeError {
	return New(ErrCodeDiscoveryTimeout,
		fmt.Sprintf("signal root not found within %s", window)).
		WithDetail("window", window.String())
}

// RootUnavailable reports an operation that needs a discovered root.
func RootUnavailable(op string) *ScopeError {
	return New(ErrCodeRootUnavailable, fmt.Sprintf("%s: no signal root has been discovered", op)).
		WithDetail("operation", op)
}

// InvalidPatch wraps a decode failure for a pushed patch.
func InvalidPatch(source string, err error) *ScopeError {
	return Wrap(err, ErrCodeInvalidPatch, fmt.Sprintf("invalid patch from %s", source)).
		WithDetail("source", source)
}

// SourceFailed wraps a failure of an update source.
func SourceFailed(source string, err error) *ScopeError {
	return Wrap(err, ErrCodeSourceFailed, fmt.Sprintf("source %s failed", source)).
		WithDetail("source", source)
}

// ExportFailed wraps a failure to write an export file.
func ExportFailed(dir string, err error) *ScopeError {
	return Wrap(err, ErrCodeExportFailed, "failed to export signals").
		WithDetail("dir", dir)
}

// UnknownCommand reports a console input outside the allowed command set.
func UnknownCommand(name string) *ScopeError {
	return New(ErrCodeInvalidInput, fmt.Sprintf("unknown command: %s", name)).
		WithDetail("command", name)
}
