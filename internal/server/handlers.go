package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/jonathan/cv-formatter/internal/export"
	"github.com/jonathan/cv-formatter/internal/ingestion"
	"github.com/jonathan/cv-formatter/internal/types"
)

// maxJSONBody bounds the JSON request body
const maxJSONBody = 1 << 20

// FormatRequest is the JSON body accepted by /format, /format/pdf and /parse
type FormatRequest struct {
	Text           string   `json:"text"`
	LargeTextHints []string `json:"large_text_hints,omitempty" validate:"max=20,dive,max=200"`
	Source         string   `json:"source,omitempty" validate:"max=255"`
}

// FormatResponse is the reply of /format
type FormatResponse struct {
	*types.FormattedResume
	RequestID string `json:"request_id"`
}

// handleFormat recovers and lays out a résumé
func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	doc, err := s.readDocument(w, r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.renderTimeout)
	defer cancel()

	formatted, err := s.orchestrator.Load().Format(ctx, *doc)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, FormatResponse{
		FormattedResume: formatted,
		RequestID:       requestID(r.Context()),
	})
}

// handleFormatPDF formats a résumé and prints it to PDF
func (s *Server) handleFormatPDF(w http.ResponseWriter, r *http.Request) {
	doc, err := s.readDocument(w, r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.renderTimeout)
	defer cancel()

	formatted, err := s.orchestrator.Load().Format(ctx, *doc)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if s.renderer == nil {
		s.handleError(w, r, export.ErrRendererUnavailable)
		return
	}

	pdf, err := s.renderer.RenderPDF(ctx, formatted.Markup)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="resume.pdf"`)
	w.Header().Set("X-Strategy", formatted.Strategy)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		s.logger.Warn("failed to write PDF response", "error", err, "request_id", requestID(r.Context()))
	}
}

// handleParse returns the recovered résumé structure without layout
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	doc, err := s.readDocument(w, r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	resume, err := s.orchestrator.Load().Recover(r.Context(), *doc)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resume)
}

// readDocument reads either a JSON FormatRequest or a multipart upload in
// the "file" field.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (*types.RawDocument, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return s.readUpload(w, r)
	}

	var req FormatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(&req); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, err
		}
		return nil, &RequestError{Message: "invalid request body", Cause: err}
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, &RequestError{Message: "validation failed", Cause: err}
	}

	source := req.Source
	if source == "" {
		source = requestID(r.Context())
	}
	return &types.RawDocument{
		Text:           ingestion.CleanText(req.Text),
		LargeTextHints: req.LargeTextHints,
		Source:         source,
	}, nil
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*types.RawDocument, error) {
	r.Body = http.MaxBytesReader(w, r.Body, ingestion.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(ingestion.MaxFileSize); err != nil {
		return nil, &RequestError{Message: "invalid multipart form", Cause: err}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, &RequestError{Message: `missing "file" field`, Cause: err}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	doc, meta, err := ingestion.IngestBytes(header.Filename, data, ingestion.Options{LargeFontPoints: s.largeFontPoints})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("ingested upload",
		"request_id", requestID(r.Context()),
		"file", header.Filename,
		"format", meta.Format,
		"characters", meta.Characters)
	return doc, nil
}

// handleError maps err to a status code and writes the error reply
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err, "request_id", requestID(r.Context()))
		message = "internal server error"
	} else {
		s.logger.Debug("request rejected", "error", err, "status", status, "request_id", requestID(r.Context()))
	}
	s.errorResponse(w, r, status, message)
}
