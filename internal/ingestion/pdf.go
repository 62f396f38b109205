package ingestion

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// extractPDF returns the plain text of every page plus the large-font runs
// of the first page. The reader panics on some malformed files, so panics
// are turned into errors.
func extractPDF(data []byte, largeFontPoints float64) (text string, hints []string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ExtractionError{Format: FormatPDF, Message: "malformed pdf", Cause: fmt.Errorf("%v", r)}
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, 0, &ExtractionError{Format: FormatPDF, Message: "failed to open pdf", Cause: err}
	}

	rs, err := r.GetPlainText()
	if err != nil {
		return "", nil, 0, &ExtractionError{Format: FormatPDF, Message: "failed to read text", Cause: err}
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rs); err != nil {
		return "", nil, 0, &ExtractionError{Format: FormatPDF, Message: "failed to read text", Cause: err}
	}

	return buf.String(), largeTextRuns(r, largeFontPoints), r.NumPage(), nil
}

// largeTextRuns groups first-page glyphs set above the threshold into runs,
// one per baseline
func largeTextRuns(r *pdf.Reader, threshold float64) []string {
	if r.NumPage() < 1 {
		return nil
	}
	page := r.Page(1)
	if page.V.IsNull() {
		return nil
	}

	var runs []string
	seen := make(map[string]bool)
	var cur strings.Builder
	lastY := math.NaN()

	flush := func() {
		s := strings.Join(strings.Fields(cur.String()), " ")
		cur.Reset()
		if s == "" || seen[s] || !strings.ContainsFunc(s, unicode.IsLetter) {
			return
		}
		seen[s] = true
		runs = append(runs, s)
	}

	for _, t := range page.Content().Text {
		if t.FontSize <= threshold {
			flush()
			continue
		}
		if cur.Len() > 0 && math.Abs(t.Y-lastY) > t.FontSize/2 {
			flush()
		}
		cur.WriteString(t.S)
		lastY = t.Y
	}
	flush()
	return runs
}
