// Package rendering projects a recovered résumé onto a branded template.
package rendering

import "fmt"

// TemplateError represents an error parsing or executing a template
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("template error: %s", e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError represents a general rendering failure
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("render error: %s", e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// InsufficientContentError reports output with too little visible text to be
// a usable résumé.
type InsufficientContentError struct {
	Visible  int
	Required int
}

func (e *InsufficientContentError) Error() string {
	return fmt.Sprintf("insufficient content: %d visible characters, %d required", e.Visible, e.Required)
}

// AssetError represents a branding asset that could not be loaded
type AssetError struct {
	Path    string
	Message string
	Cause   error
}

func (e *AssetError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("asset %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("asset %s: %s", e.Path, e.Message)
}

func (e *AssetError) Unwrap() error {
	return e.Cause
}
