// Package types provides type definitions for structured data used throughout the cv-formatter system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// RawDocument is the text extracted from an uploaded résumé, plus optional
// runs of text that the extractor saw rendered in a large font.
type RawDocument struct {
	Text           string   `json:"text"`
	LargeTextHints []string `json:"large_text_hints,omitempty"`
	Source         string   `json:"source,omitempty"` // File name or request origin
}

// NormalizedText is the ordered sequence of logical lines produced by the normalizer.
type NormalizedText struct {
	Lines []string `json:"lines"`
}

// IsEmpty reports whether there are no non-blank lines.
func (n NormalizedText) IsEmpty() bool {
	for _, line := range n.Lines {
		if line != "" {
			return false
		}
	}
	return true
}

// NameSource identifies where a name candidate came from
type NameSource string

const (
	// NameSourceStandard is a single line that looks like a person's name
	NameSourceStandard NameSource = "standard"
	// NameSourceReconstructed is a name rebuilt from consecutive short fragments
	NameSourceReconstructed NameSource = "reconstructedFragment"
	// NameSourceLargeFont is a large-font run supplied by the extractor
	NameSourceLargeFont NameSource = "largeFontHint"
)

// NameCandidate is a scored guess at the candidate's name.
type NameCandidate struct {
	Text       string     `json:"text"`
	OriginLine int        `json:"origin_line"`
	Source     NameSource `json:"source"`
	Score      float64    `json:"score"`
}

// ContactInfo holds contact details. Each field is optional; empty means absent.
type ContactInfo struct {
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
}
