package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/tspath/tspath/internal/project"
	"github.com/tspath/tspath/internal/scanner"
)

// Process exit codes.
const (
	ExitOK           = 0
	ExitFailure      = 5
	ExitInvalidPath  = 10
	ExitMissingField = 22
	ExitEmptyFilter  = 23
)

// ExitCode maps err onto the process exit code.
func ExitCode(err error) int {
	var missing *project.MissingFieldError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &missing):
		return ExitMissingField
	case errors.Is(err, scanner.ErrEmptyFilter):
		return ExitEmptyFilter
	case errors.Is(err, project.ErrInvalidRoot),
		errors.Is(err, project.ErrConfigNotFound),
		errors.Is(err, project.ErrRootNotFound):
		return ExitInvalidPath
	default:
		return ExitFailure
	}
}

// Report prints the diagnostic for err to w.
func Report(w io.Writer, err error) {
	if err == nil {
		return
	}
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
}
