package search

import (
	"errors"
	"fmt"

	"github.com/aemoncannon/far-search-mode/internal/model"
)

var (
	// ErrPatternCompile marks a query that cannot be turned into a pattern.
	ErrPatternCompile = errors.New("pattern does not compile")

	// ErrSourceUnavailable marks a source whose content could not be read.
	ErrSourceUnavailable = errors.New("source unavailable")

	errUnknownMode = errors.New("unknown match mode")
)

// PatternError reports a query that failed to compile.
type PatternError struct {
	Pattern string
	Mode    model.MatchMode
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid %s pattern %q: %v", e.Mode, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() []error {
	return []error{ErrPatternCompile, e.Err}
}

// SourceError reports a source skipped during a scan.
type SourceError struct {
	SourceID string
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.SourceID, e.Err)
}

func (e *SourceError) Unwrap() []error {
	return []error{ErrSourceUnavailable, e.Err}
}
