package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/jonathan/cv-formatter/internal/types"
)

// Format is a supported input file format
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatText Format = "text"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DefaultLargeFontPoints is the font size above which first-page text is
// reported as a large-text hint
const DefaultLargeFontPoints = 12.0

// MaxFileSize bounds the files IngestBytes accepts
const MaxFileSize = 10 << 20

// Options configure ingestion
type Options struct {
	LargeFontPoints float64
}

// IngestFromFile reads a résumé file from disk
func IngestFromFile(path string, opts Options) (*types.RawDocument, *Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}
	return IngestBytes(filepath.Base(path), data, opts)
}

// IngestBytes extracts text from an uploaded file. The format comes from the
// file extension when it is known and from the content otherwise.
func IngestBytes(name string, data []byte, opts Options) (*types.RawDocument, *Metadata, error) {
	if len(data) > MaxFileSize {
		return nil, nil, &ExtractionError{Message: fmt.Sprintf("file exceeds %d bytes", MaxFileSize)}
	}
	if opts.LargeFontPoints <= 0 {
		opts.LargeFontPoints = DefaultLargeFontPoints
	}

	mime := mimetype.Detect(data)
	format, ok := DetectFormat(name, mime)
	if !ok {
		return nil, nil, &UnsupportedFormatError{Name: name, MIME: mime.String()}
	}

	var (
		text  string
		hints []string
		pages int
		err   error
	)
	switch format {
	case FormatPDF:
		text, hints, pages, err = extractPDF(data, opts.LargeFontPoints)
	case FormatDOCX:
		text, err = extractDOCX(data)
	default:
		text = string(data)
	}
	if err != nil {
		return nil, nil, err
	}

	text = CleanText(text)
	doc := &types.RawDocument{Text: text, LargeTextHints: hints, Source: name}

	meta := NewMetadata(name, format, data, text)
	meta.MIME = mime.String()
	meta.Pages = pages
	meta.LargeTextHints = hints
	return doc, meta, nil
}

// DetectFormat picks the extractor for a file
func DetectFormat(name string, mime *mimetype.MIME) (Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF, true
	case ".docx":
		return FormatDOCX, true
	case ".txt", ".text", ".md":
		return FormatText, true
	}

	switch {
	case mime.Is("application/pdf"):
		return FormatPDF, true
	case mime.Is(docxMIME):
		return FormatDOCX, true
	case strings.HasPrefix(mime.String(), "text/plain"):
		return FormatText, true
	}
	return "", false
}
