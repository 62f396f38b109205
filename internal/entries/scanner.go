// Package entries turns section lines into experience and education records.
package entries

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/jonathan/cv-formatter/internal/heuristics"
)

// bulletRe matches a leading list marker
var bulletRe = regexp.MustCompile(`^(?:[•*·]|[-–—](?:\s|$))\s*`)

// separatorRe splits an entry line into its parts
var separatorRe = regexp.MustCompile(`\s+[-–—]\s+|\s*[,|:]\s*|\s+(?i:at|@)\s+`)

// bracketRe matches brackets left empty once the dates are removed
var bracketRe = regexp.MustCompile(`[(\[]\s*[)\]]`)

type entryKind int

const (
	kindExperience entryKind = iota
	kindEducation
)

// rawEntry is the kind-neutral form of an entry. For experience Primary is
// the title and Secondary the organization; for education they are the
// degree and the institution.
type rawEntry struct {
	Primary   string
	Secondary string
	Location  string
	DateRange string
	Details   []string
}

// scanner is the two-state entry machine. It is seeking until the first
// entry line and inside an entry from then on. In relaxed mode only keyword
// bearing dated lines open entries and any plain line ends the open one.
type scanner struct {
	tables  *heuristics.Tables
	kind    entryKind
	mode    Mode
	relaxed bool
}

func (s *scanner) run(lines []string) []rawEntry {
	var out []rawEntry
	var cur *rawEntry
	closeEntry := func() {
		if cur != nil {
			out = append(out, *cur)
			cur = nil
		}
	}

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		if header, ok := s.combinedHeader(lines, i); ok {
			closeEntry()
			e := s.build(header)
			cur = &e
			i++
			continue
		}

		if s.isEntryLine(line) {
			closeEntry()
			e := s.build(line)
			cur = &e
			continue
		}

		if s.isOrganizationLead(lines, i) {
			e := s.build(strings.TrimSpace(lines[i+1]))
			e.Secondary, e.Location = s.splitPlace(line, e.Location)
			closeEntry()
			cur = &e
			i++
			continue
		}

		if cur == nil {
			continue
		}

		bullet := isBullet(line)
		if s.relaxed && !bullet {
			closeEntry()
			continue
		}

		if !bullet && cur.Secondary == "" && len(cur.Details) == 0 && s.isShortPlain(line) && s.readsAsOrganization(line) {
			cur.Secondary, cur.Location = s.splitPlace(line, cur.Location)
			continue
		}

		cur.Details = appendDetail(cur.Details, line)
	}
	closeEntry()
	return out
}

// combinedHeader joins a title line with the dated line under it. The title
// line must end with ':' or the next line must be nothing but dates.
func (s *scanner) combinedHeader(lines []string, i int) (string, bool) {
	if i+1 >= len(lines) {
		return "", false
	}
	line := strings.TrimSpace(lines[i])
	next := strings.TrimSpace(lines[i+1])
	if isBullet(line) || isBullet(next) || s.hasDate(line) || !s.hasDate(next) {
		return "", false
	}
	if s.relaxed && !s.hasKeyword(line) {
		return "", false
	}
	if strings.HasSuffix(line, ":") {
		return line + " " + next, true
	}
	if dates, rest := s.cutDate(next); dates != "" && strings.Trim(rest, " ,-–—|()") == "" && s.isShortPlain(line) {
		return line + ", " + next, true
	}
	return "", false
}

// isOrganizationLead reports whether line names the organization of the
// entry line that follows it, as in "EXAMPLE PARTNERS LLP London" above
// "Analyst 2019 - Present".
func (s *scanner) isOrganizationLead(lines []string, i int) bool {
	if s.relaxed || i+1 >= len(lines) {
		return false
	}
	line := strings.TrimSpace(lines[i])
	next := strings.TrimSpace(lines[i+1])
	if isBullet(line) || s.hasDate(line) || !s.isEntryLine(next) {
		return false
	}
	if s.build(next).Secondary != "" {
		return false
	}
	return s.tables.HasOrganizationSuffix(line) || s.tables.HasInstitutionKeyword(line) ||
		(isAllCaps(line) && s.isShortPlain(line))
}

// isEntryLine reports whether line opens a new entry
func (s *scanner) isEntryLine(line string) bool {
	if isBullet(line) || !s.hasDate(line) {
		return false
	}
	if s.mode == ModeAnyDate || s.hasKeyword(line) {
		return true
	}
	// a bare year is too weak on its own
	if s.relaxed || !heuristics.HasDateRange(line) {
		return false
	}
	_, rest := s.cutDate(line)
	return len(strings.Fields(rest)) <= s.tables.Limits.EntryMaxWords
}

func (s *scanner) hasKeyword(line string) bool {
	if s.kind == kindEducation {
		return s.tables.HasDegreeKeyword(line) || s.tables.HasInstitutionKeyword(line)
	}
	return s.tables.HasTitleKeyword(line) || s.tables.HasOrganizationSuffix(line)
}

func (s *scanner) hasDate(line string) bool {
	if heuristics.HasDateRange(line) {
		return true
	}
	return s.kind == kindEducation && heuristics.HasYear(line)
}

// cutDate removes the first date range (or, for education, year) from line
func (s *scanner) cutDate(line string) (string, string) {
	dates, start, end, ok := heuristics.FindDateRange(line)
	if !ok && s.kind == kindEducation {
		dates, start, end, ok = heuristics.FindYear(line)
	}
	if !ok {
		return "", line
	}
	return strings.Join(strings.Fields(dates), " "), line[:start] + " " + line[end:]
}

// build parses an entry line into its parts
func (s *scanner) build(line string) rawEntry {
	dates, rest := s.cutDate(line)
	rest = bracketRe.ReplaceAllString(rest, " ")

	var parts []string
	for _, p := range separatorRe.Split(rest, -1) {
		p = strings.Trim(strings.TrimSpace(p), "-–—()[]")
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	e := rawEntry{DateRange: dates, Details: []string{}}
	switch len(parts) {
	case 0:
	case 1:
		if s.isSecondary(parts[0]) && !s.isPrimary(parts[0]) {
			e.Secondary = parts[0]
		} else {
			e.Primary = parts[0]
		}
	default:
		e.Primary, e.Secondary = parts[0], parts[1]
		if s.isSecondary(e.Primary) && !s.isPrimary(e.Primary) && s.isPrimary(e.Secondary) {
			e.Primary, e.Secondary = e.Secondary, e.Primary
		}
		if len(parts) > 2 {
			e.Location = strings.Join(parts[2:], ", ")
		}
	}

	if e.Secondary != "" {
		e.Secondary, e.Location = s.splitPlace(e.Secondary, e.Location)
	} else if e.Location == "" && e.Primary != "" && s.isSecondary(e.Primary) {
		e.Secondary, e.Location = s.splitPlace(e.Primary, "")
		e.Primary = ""
	}
	return e
}

// splitPlace separates a trailing place from an organization name unless a
// location is already known. Institutions are only split at a comma since
// "University of Leeds" names its city.
func (s *scanner) splitPlace(org, location string) (string, string) {
	org = strings.TrimSpace(org)
	if location == "" {
		if parts := strings.SplitN(org, ",", 2); len(parts) == 2 && s.tables.IsPlace(parts[1]) {
			org, location = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		} else if s.kind == kindExperience {
			if before, city, ok := s.tables.EndsWithCity(org); ok && before != "" {
				org, location = before, city
			}
		}
	}
	if s.kind == kindExperience {
		org = s.tables.RepairOrganization(org)
	}
	return org, location
}

// isPrimary reports whether part reads like a job title or a degree
func (s *scanner) isPrimary(part string) bool {
	if s.kind == kindEducation {
		return s.tables.HasDegreeKeyword(part)
	}
	return s.tables.HasTitleKeyword(part)
}

// isSecondary reports whether part reads like an organization or an institution
func (s *scanner) isSecondary(part string) bool {
	if s.kind == kindEducation {
		return s.tables.HasInstitutionKeyword(part)
	}
	return s.tables.HasOrganizationSuffix(part)
}

// readsAsOrganization reports whether an unbulleted line under an entry line
// names its organization or institution rather than a responsibility.
func (s *scanner) readsAsOrganization(line string) bool {
	if s.tables.HasOrganizationSuffix(line) || s.tables.HasInstitutionKeyword(line) || isAllCaps(line) {
		return true
	}
	if parts := strings.SplitN(line, ",", 2); len(parts) == 2 && s.tables.IsPlace(parts[1]) {
		return true
	}
	if s.kind == kindExperience {
		if before, _, ok := s.tables.EndsWithCity(line); ok && before != "" {
			return true
		}
	}
	return false
}

// isShortPlain reports whether line is a short fragment rather than a sentence
func (s *scanner) isShortPlain(line string) bool {
	return len(strings.Fields(line)) <= s.tables.Limits.EntryMaxWords && !endsSentence(line)
}

// appendDetail adds line as a new detail item, or continues the previous item
// when it is unfinished and line does not open with a capital letter.
func appendDetail(details []string, line string) []string {
	if isBullet(line) {
		item := strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
		if item == "" {
			return details
		}
		return append(details, item)
	}
	if n := len(details); n > 0 && !endsSentence(details[n-1]) && !startsUpper(line) {
		details[n-1] += " " + line
		return details
	}
	return append(details, line)
}

func isBullet(line string) bool {
	return bulletRe.MatchString(strings.TrimSpace(line))
}

func endsSentence(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	switch s[len(s)-1] {
	case '.', '!', '?', ';', ':':
		return true
	}
	return false
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
