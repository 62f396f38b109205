package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInsufficientContent is reported when no strategy produced a usable résumé
var ErrInsufficientContent = errors.New("insufficient content")

// Attempt records one failed strategy
type Attempt struct {
	Strategy string
	Err      error
}

// ExhaustedError is returned when every strategy failed. It matches
// ErrInsufficientContent and each attempt's error with errors.Is and errors.As.
type ExhaustedError struct {
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Strategy, a.Err))
	}
	return fmt.Sprintf("%v after %d attempts (%s)", ErrInsufficientContent, len(e.Attempts), strings.Join(parts, "; "))
}

func (e *ExhaustedError) Unwrap() []error {
	errs := []error{ErrInsufficientContent}
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

// StrategyError represents an invalid strategy configuration
type StrategyError struct {
	Name    string
	Message string
	Cause   error
}

func (e *StrategyError) Error() string {
	msg := e.Message
	if e.Name != "" {
		msg = fmt.Sprintf("strategy %q: %s", e.Name, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *StrategyError) Unwrap() error {
	return e.Cause
}
