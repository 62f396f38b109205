package identity

import (
	"regexp"
	"strings"

	"github.com/jonathan/cv-formatter/internal/heuristics"
	"github.com/jonathan/cv-formatter/internal/types"
)

var (
	// emailRe tolerates whitespace the extractor inserted around '@' and '.'.
	// A dot with space only after it ends a sentence, and a spaced dot in the
	// domain must lead to a short lowercase top-level label.
	emailRe = regexp.MustCompile(`[A-Za-z0-9_%+-]+(?:(?:\.|\s+\.\s*)[A-Za-z0-9_%+-]+)*` +
		`\s*@\s*[A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+|\s+\.\s*[a-z]{2,6}\b)+`)

	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+44\s?\(?0?\)?\s?\d{2,4}[\s-]?\d{3,4}[\s-]?\d{3,4}`),
		regexp.MustCompile(`\+\d{1,3}[\s.-]?\(?\d{1,4}\)?(?:[\s.-]?\d{2,4}){2,4}`),
		regexp.MustCompile(`\b0\d{2,4}[\s-]?\d{3,4}[\s-]?\d{3,4}\b`),
		regexp.MustCompile(`\(?\b\d{3}\)?[\s.-]\d{3}[\s.-]\d{4}\b`),
		regexp.MustCompile(`\b\d{3}\s+\d{7}\b`),
	}

	whitespaceRe = regexp.MustCompile(`\s+`)
)

// minPhoneDigits rejects short numeric runs such as years and postcodes
const minPhoneDigits = 10

// ContactExtractor finds email, phone and location in normalized lines
type ContactExtractor struct {
	tables *heuristics.Tables
}

// NewContactExtractor creates a ContactExtractor over the given tables
func NewContactExtractor(tables *heuristics.Tables) *ContactExtractor {
	return &ContactExtractor{tables: tables}
}

// Extract returns whatever contact details can be found. Missing fields stay empty.
func (c *ContactExtractor) Extract(lines []string) types.ContactInfo {
	return types.ContactInfo{
		Email:    c.Email(lines),
		Phone:    c.Phone(lines),
		Location: c.Location(lines),
	}
}

// Email returns the first email address with internal whitespace removed
func (c *ContactExtractor) Email(lines []string) string {
	for _, line := range lines {
		for _, m := range emailRe.FindAllString(line, -1) {
			email := whitespaceRe.ReplaceAllString(m, "")
			email = strings.TrimRight(email, ".")
			at := strings.Index(email, "@")
			if at > 0 && strings.Contains(email[at:], ".") {
				return email
			}
		}
	}
	return ""
}

// Phone returns the first phone number, trying the top of the document before the rest
func (c *ContactExtractor) Phone(lines []string) string {
	limit := min(len(lines), c.tables.Limits.PhoneScanLines)
	if phone := findPhone(lines[:limit]); phone != "" {
		return phone
	}
	return findPhone(lines[limit:])
}

func findPhone(lines []string) string {
	for _, line := range lines {
		if emailRe.MatchString(line) {
			line = emailRe.ReplaceAllString(line, " ")
		}
		for _, re := range phonePatterns {
			for _, m := range re.FindAllString(line, -1) {
				if heuristics.HasDateRange(m) {
					continue
				}
				if countDigits(m) >= minPhoneDigits {
					return strings.TrimSpace(m)
				}
			}
		}
	}
	return ""
}

// Location returns the first gazetteer place in the header block. Lines that
// carry dates or organization names belong to entries, not to the candidate.
func (c *ContactExtractor) Location(lines []string) string {
	limit := min(len(lines), c.tables.Limits.LocationScanLines)
	for _, line := range lines[:limit] {
		if heuristics.HasYear(line) || c.tables.HasOrganizationSuffix(line) {
			continue
		}
		if place, ok := c.tables.FindPlace(line); ok {
			return place
		}
	}
	return ""
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
