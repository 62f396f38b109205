package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/cv-formatter/internal/export"
	"github.com/jonathan/cv-formatter/internal/ingestion"
	"github.com/jonathan/cv-formatter/internal/parsing"
	"github.com/jonathan/cv-formatter/internal/pipeline"
	"github.com/jonathan/cv-formatter/internal/rendering"
)

// RequestError indicates a malformed or invalid request
type RequestError struct {
	Message string
	Cause   error
}

func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid request: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid request: %s", e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		maxBytes    *http.MaxBytesError
		reqErr      *RequestError
		unsupported *ingestion.UnsupportedFormatError
		extraction  *ingestion.ExtractionError
		parseErr    *parsing.ParseError
		thin        *rendering.InsufficientContentError
		renderErr   *export.RenderError
	)
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, pipeline.ErrInsufficientContent),
		errors.As(err, &thin),
		errors.As(err, &parseErr),
		errors.As(err, &extraction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, export.ErrRendererUnavailable), errors.As(err, &renderErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
