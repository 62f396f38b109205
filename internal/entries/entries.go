package entries

import (
	"github.com/jonathan/cv-formatter/internal/heuristics"
	"github.com/jonathan/cv-formatter/internal/types"
)

// Mode selects which dated lines open a new entry
type Mode int

const (
	// ModeStrict opens an entry on a dated line that also carries a keyword
	// or is short enough to be a heading.
	ModeStrict Mode = iota
	// ModeAnyDate opens an entry on every unbulleted dated line.
	ModeAnyDate
)

// ParseExperience extracts experience entries from the lines of an experience section
func ParseExperience(lines []string, tables *heuristics.Tables, mode Mode) []types.ExperienceEntry {
	s := &scanner{tables: tables, kind: kindExperience, mode: mode}
	return toExperience(s.run(lines))
}

// ParseEducation extracts education entries from the lines of an education section
func ParseEducation(lines []string, tables *heuristics.Tables, mode Mode) []types.EducationEntry {
	s := &scanner{tables: tables, kind: kindEducation, mode: mode}
	return toEducation(s.run(lines))
}

// ScanExperience is the permissive pass used when a formal section yields
// nothing or when entries sit above the first header. Only dated lines that
// also carry a title or organization keyword open entries, and only bullet
// lines are kept as their details.
func ScanExperience(lines []string, tables *heuristics.Tables) []types.ExperienceEntry {
	s := &scanner{tables: tables, kind: kindExperience, relaxed: true}
	return toExperience(s.run(lines))
}

// ScanEducation is the education counterpart of ScanExperience
func ScanEducation(lines []string, tables *heuristics.Tables) []types.EducationEntry {
	s := &scanner{tables: tables, kind: kindEducation, relaxed: true}
	return toEducation(s.run(lines))
}

func toExperience(raw []rawEntry) []types.ExperienceEntry {
	out := make([]types.ExperienceEntry, 0, len(raw))
	for _, r := range raw {
		out = append(out, types.ExperienceEntry{
			Title:        r.Primary,
			Organization: r.Secondary,
			Location:     r.Location,
			DateRange:    r.DateRange,
			Details:      nonNil(r.Details),
		})
	}
	return out
}

func toEducation(raw []rawEntry) []types.EducationEntry {
	out := make([]types.EducationEntry, 0, len(raw))
	for _, r := range raw {
		out = append(out, types.EducationEntry{
			Degree:      r.Primary,
			Institution: r.Secondary,
			Location:    r.Location,
			DateRange:   r.DateRange,
			Details:     nonNil(r.Details),
		})
	}
	return out
}

func nonNil(details []string) []string {
	if details == nil {
		return []string{}
	}
	return details
}
