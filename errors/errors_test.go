package errors

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestScopeError(t *testing.T) {
	// Test basic error creation
	err := New(ErrCodeRootUnavailable, "no root")
	if err.Code != ErrCodeRootUnavailable {
		t.Errorf("expected code %s, got %s", ErrCodeRootUnavailable, err.Code)
	}

	// Test error wrapping
	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodeSourceFailed, "source failed")

	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	if !Is(wrapped, ErrCodeSourceFailed) {
		t.Error("Is should return true for matching code")
	}

	if Is(wrapped, ErrCodeRootUnavailable) {
		t.Error("Is should return false for non-matching code")
	}

	// Wrapped by a plain error
	outer := fmt.Errorf("run: %w", wrapped)
	if GetCode(outer) != ErrCodeSourceFailed {
		t.Errorf("expected code through fmt wrapping, got %q", GetCode(outer))
	}

	detailed := err.WithDetail("operation", "set").WithDetail("attempt", 2)
	if detailed.Details["operation"] != "set" {
		t.Error("WithDetail should add details")
	}

	if !strings.Contains(detailed.ToJSON(), `"code": "ROOT_UNAVAILABLE"`) {
		t.Errorf("unexpected JSON: %s", detailed.ToJSON())
	}
}

func TestErrorConstructors(t *testing.T) {
	err := DiscoveryTimeout(5 * time.Second)
	if err.Code != ErrCodeDiscoveryTimeout {
		t.Errorf("expected code %s, got %s", ErrCodeDiscoveryTimeout, err.Code)
	}
	if err.Details["window"] != "5s" {
		t.Error("DiscoveryTimeout should include window detail")
	}

	err = InvalidPatch("sse", fmt.Errorf("bad json"))
	if err.Code != ErrCodeInvalidPatch || err.Details["source"] != "sse" {
		t.Errorf("unexpected InvalidPatch: %v", err)
	}

	err = UnknownCommand("eval")
	if err.Code != ErrCodeInvalidInput {
		t.Errorf("expected code %s, got %s", ErrCodeInvalidInput, err.Code)
	}

	if Is(nil, ErrCodeInternal) {
		t.Error("nil error should not match any code")
	}
}
