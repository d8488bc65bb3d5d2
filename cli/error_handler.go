package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/grovetools/sigscope/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates an error handler writing to stderr.
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     os.Stderr,
	}
}

// Handle prints a hint for known error codes and returns err unchanged.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(h.Out, "Error: configuration not found. Create a sigscope.yml or pass --config.\n")

	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigValidation:
		fmt.Fprintf(h.Out, "Error: %v\n", err)
		fmt.Fprintf(h.Out, "Run 'sigscope schema' to see the accepted configuration.\n")

	case errors.ErrCodeRootUnavailable:
		fmt.Fprintf(h.Out, "Error: %v\n", err)
		fmt.Fprintf(h.Out, "Set root.file in sigscope.yml or start the daemon with 'sigscope daemon start'.\n")

	case errors.ErrCodeDiscoveryTimeout:
		if scopeErr, ok := err.(*errors.ScopeError); ok {
			fmt.Fprintf(h.Out, "Error: no signal root appeared within %v\n", scopeErr.Details["window"])
		} else {
			fmt.Fprintf(h.Out, "Error: %v\n", err)
		}

	default:
		fmt.Fprintf(h.Out, "Error: %v\n", err)
	}

	if h.Verbose {
		if scopeErr, ok := err.(*errors.ScopeError); ok {
			fmt.Fprintf(h.Out, "\nError details:\n%s\n", scopeErr.ToJSON())
		}
	}
	return err
}
