package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Host discovery errors
	ErrCodeDiscoveryTimeout ErrorCode = "DISCOVERY_TIMEOUT"
	ErrCodeRootUnavailable  ErrorCode = "ROOT_UNAVAILABLE"

	// Update source errors
	ErrCodeInvalidPatch ErrorCode = "INVALID_PATCH"
	ErrCodeSourceFailed ErrorCode = "SOURCE_FAILED"

	// Output errors
	ErrCodeExportFailed  ErrorCode = "EXPORT_FAILED"
	ErrCodeJournalFailed ErrorCode = "JOURNAL_FAILED"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// ScopeError represents a structured error with context
type ScopeError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *ScopeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ScopeError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *ScopeError) WithDetail(key string, value interface{}) *ScopeError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *ScopeError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new ScopeError
func New(code ErrorCode, message string) *ScopeError {
	return &ScopeError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a ScopeError
func Wrap(err error, code ErrorCode, message string) *ScopeError {
	return &ScopeError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error chain carries a specific ScopeError code
func Is(err error, code ErrorCode) bool {
	return err != nil && GetCode(err) == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	scopeErr, ok := err.(*ScopeError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return scopeErr.Code
}
