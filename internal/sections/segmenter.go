// Package sections splits normalized résumé lines into typed, non-overlapping regions.
package sections

import (
	"strings"
	"unicode"

	"github.com/jonathan/cv-formatter/internal/heuristics"
	"github.com/jonathan/cv-formatter/internal/types"
)

// Segmenter locates section headers and the regions they open
type Segmenter struct {
	tables *heuristics.Tables
}

// NewSegmenter creates a Segmenter over the given tables
func NewSegmenter(tables *heuristics.Tables) *Segmenter {
	return &Segmenter{tables: tables}
}

// Segment walks the lines once. Every header closes the open section at the
// previous line and opens a new one; the end of input closes the last one.
// Lines before the first header belong to the preamble and to no section.
func (s *Segmenter) Segment(lines []string) []types.Section {
	var out []types.Section
	var open *types.Section

	for i, line := range lines {
		kind, ok := s.HeaderKind(line)
		if !ok {
			continue
		}
		if open != nil {
			open.EndLine = i - 1
			out = append(out, *open)
		}
		open = &types.Section{Kind: kind, StartLine: i + 1}
	}
	if open != nil {
		open.EndLine = len(lines) - 1
		out = append(out, *open)
	}
	if out == nil {
		return []types.Section{}
	}
	return out
}

// HeaderKind reports whether line is a section header and which kind it opens.
// A header is short, contains a header phrase, is styled like a heading (all
// capitals, title case or a trailing colon) and has at most one extra word.
func (s *Segmenter) HeaderKind(line string) (types.SectionKind, bool) {
	line = strings.TrimSpace(line)
	if line == "" || len(line) > s.tables.Limits.HeaderMaxChars {
		return "", false
	}
	if strings.HasPrefix(line, "•") {
		return "", false
	}
	match, ok := s.tables.FindHeader(line)
	if !ok {
		return "", false
	}
	if !isHeadingStyle(line) {
		return "", false
	}

	upper := strings.ToUpper(line)
	rest := upper[:match.Start] + " " + upper[match.End:]
	extra := 0
	for _, w := range heuristics.Words(rest) {
		if isConnector(w) || s.tables.IsHeaderPhrase(w) {
			continue
		}
		extra++
	}
	if extra > 1 {
		return "", false
	}
	return match.Kind, true
}

// isHeadingStyle reports whether line is all caps, title case or colon terminated
func isHeadingStyle(line string) bool {
	if strings.HasSuffix(line, ":") {
		return true
	}
	if strings.ToUpper(line) == line {
		return true
	}
	for _, w := range strings.Fields(line) {
		if isConnector(strings.ToUpper(w)) {
			continue
		}
		first := []rune(w)[0]
		if unicode.IsLetter(first) && !unicode.IsUpper(first) {
			return false
		}
	}
	return true
}

func isConnector(upper string) bool {
	switch upper {
	case "&", "AND", "OF", "/", "-", "–", ":", "|":
		return true
	}
	return false
}
