package heuristics

import (
	"regexp"
	"strings"
)

const (
	monthPattern = `(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|June?|July?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\.?`
	yearPattern  = `(?:19|20)\d{2}`
	pointPattern = `(?:\b` + monthPattern + `\s+` + yearPattern + `|\d{1,2}/` + yearPattern + `|` + yearPattern + `)`
	endPattern   = `(?:` + pointPattern + `|Present|Current|Now|Date|Today)`
)

var (
	// dateRangeRe matches "2019 – 2021", "Jan 2019 - Present", "03/2018 to 06/2020".
	// It has no leading word boundary so that "portfolios2019 – 2021" still
	// matches; matches glued to a preceding digit are dropped by the finders.
	dateRangeRe = regexp.MustCompile(`(?i)` + pointPattern + `\s*(?:-|–|—|to)\s*` + endPattern + `\b`)

	// singleYearRe matches a standalone four-digit year
	singleYearRe = regexp.MustCompile(`\b` + yearPattern + `\b`)
)

// FindAllDateRanges returns the byte offsets of every date range in text
func FindAllDateRanges(text string) [][]int {
	var out [][]int
	for _, loc := range dateRangeRe.FindAllStringIndex(text, -1) {
		if loc[0] > 0 && isDigitOrSlash(text[loc[0]-1]) {
			continue
		}
		out = append(out, loc)
	}
	return out
}

// FindDateRange returns the first date range in line and its byte offsets
func FindDateRange(line string) (string, int, int, bool) {
	all := FindAllDateRanges(line)
	if len(all) == 0 {
		return "", -1, -1, false
	}
	loc := all[0]
	return line[loc[0]:loc[1]], loc[0], loc[1], true
}

// HasDateRange reports whether line contains a date range
func HasDateRange(line string) bool {
	return len(FindAllDateRanges(line)) > 0
}

func isDigitOrSlash(c byte) bool {
	return c >= '0' && c <= '9' || c == '/'
}

// FindYear returns the first standalone year in line and its byte offsets
func FindYear(line string) (string, int, int, bool) {
	loc := singleYearRe.FindStringIndex(line)
	if loc == nil {
		return "", -1, -1, false
	}
	return line[loc[0]:loc[1]], loc[0], loc[1], true
}

// HasYear reports whether line contains a four-digit year
func HasYear(line string) bool {
	return singleYearRe.MatchString(line)
}

// IsMonthWord reports whether w is a month name or abbreviation
func IsMonthWord(w string) bool {
	return monthWordRe.MatchString(strings.TrimSuffix(w, "."))
}

var monthWordRe = regexp.MustCompile(`(?i)^` + monthPattern + `$`)
