package ingestion

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// extractDOCX returns the paragraph text of word/document.xml, one
// paragraph per line
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Format: FormatDOCX, Message: "failed to open archive", Cause: err}
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", &ExtractionError{Format: FormatDOCX, Message: "word/document.xml not found"}
	}

	rc, err := doc.Open()
	if err != nil {
		return "", &ExtractionError{Format: FormatDOCX, Message: "failed to open document part", Cause: err}
	}
	defer func() { _ = rc.Close() }()

	var sb strings.Builder
	dec := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", &ExtractionError{Format: FormatDOCX, Message: "malformed document part", Cause: err}
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(el)
			}
		}
	}
	return sb.String(), nil
}
