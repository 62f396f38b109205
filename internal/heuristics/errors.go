package heuristics

import "fmt"

// LoadError represents an error loading or validating heuristic tables
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("heuristics %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("heuristics %s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
