// Package ingestion reads uploaded résumé files into raw documents.
package ingestion

import "fmt"

// UnsupportedFormatError is returned for files that are not PDF, DOCX or text
type UnsupportedFormatError struct {
	Name string
	MIME string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format for %q (detected %s): only pdf, docx and plain text are accepted", e.Name, e.MIME)
}

// ExtractionError represents a failure to extract text from a file
type ExtractionError struct {
	Format  Format
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	msg := e.Message
	if e.Format != "" {
		msg = fmt.Sprintf("%s extraction: %s", e.Format, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
