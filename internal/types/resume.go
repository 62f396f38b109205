package types

// SectionKind is the type of a résumé region
type SectionKind string

const (
	SectionExperience      SectionKind = "experience"
	SectionEducation       SectionKind = "education"
	SectionSkills          SectionKind = "skills"
	SectionLanguages       SectionKind = "languages"
	SectionExtracurricular SectionKind = "extracurricular"
	// SectionSummary and SectionCertifications bound other sections but carry no entities.
	SectionSummary        SectionKind = "summary"
	SectionCertifications SectionKind = "certifications"
)

// EntityKinds lists the section kinds that produce entities, in template order.
var EntityKinds = []SectionKind{
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionLanguages,
	SectionExtracurricular,
}

// Section is a contiguous, non-overlapping region of normalized lines.
// StartLine is the first content line after the header; EndLine is inclusive.
// A header with no content has EndLine == StartLine-1.
type Section struct {
	Kind      SectionKind `json:"kind"`
	StartLine int         `json:"start_line"`
	EndLine   int         `json:"end_line"`
}

// IsEmpty reports whether the section has no content lines
func (s Section) IsEmpty() bool {
	return s.EndLine < s.StartLine
}

// Lines returns the content lines of the section
func (s Section) Lines(all []string) []string {
	if s.IsEmpty() || s.StartLine >= len(all) {
		return nil
	}
	end := min(s.EndLine, len(all)-1)
	return all[s.StartLine : end+1]
}

// ExperienceEntry is one employment record.
type ExperienceEntry struct {
	Title        string   `json:"title"`
	Organization string   `json:"organization"`
	Location     string   `json:"location,omitempty"`
	DateRange    string   `json:"date_range"`
	Details      []string `json:"details"`
}

// Key returns the identity triple used for de-duplication
func (e ExperienceEntry) Key() EntryKey {
	return newEntryKey(e.Title, e.Organization, e.DateRange)
}

// EducationEntry is one education record.
type EducationEntry struct {
	Degree      string   `json:"degree"`
	Institution string   `json:"institution"`
	Location    string   `json:"location,omitempty"`
	DateRange   string   `json:"date_range"`
	Details     []string `json:"details"`
}

// Key returns the identity triple used for de-duplication
func (e EducationEntry) Key() EntryKey {
	return newEntryKey(e.Degree, e.Institution, e.DateRange)
}

// SkillSet holds the token lists for the skills-like sections.
type SkillSet struct {
	Languages       []string `json:"languages"`
	TechnicalSkills []string `json:"technical_skills"`
	Extracurricular []string `json:"extracurricular"`
}

// RecoveredResume is the complete structure recovered from one document.
type RecoveredResume struct {
	Name       *NameCandidate    `json:"name,omitempty"`
	Contact    ContactInfo       `json:"contact"`
	Summary    string            `json:"summary,omitempty"`
	Experience []ExperienceEntry `json:"experience"`
	Education  []EducationEntry  `json:"education"`
	Skills     SkillSet          `json:"skills"`
	Sections   []Section         `json:"sections"`
}

// NameText returns the resolved name, or "" when unresolved
func (r *RecoveredResume) NameText() string {
	if r == nil || r.Name == nil {
		return ""
	}
	return r.Name.Text
}

// SectionsFound returns the kinds of non-empty entity sections, in document order without repeats.
func (r *RecoveredResume) SectionsFound() []SectionKind {
	found := []SectionKind{}
	seen := make(map[SectionKind]bool)
	for _, s := range r.Sections {
		if s.IsEmpty() || seen[s.Kind] || !isEntityKind(s.Kind) {
			continue
		}
		seen[s.Kind] = true
		found = append(found, s.Kind)
	}
	return found
}

func isEntityKind(kind SectionKind) bool {
	for _, k := range EntityKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// FormattedResume is the final output of one formatting request.
type FormattedResume struct {
	Markup        string        `json:"markup"`
	PlainText     string        `json:"plain_text"`
	SectionsFound []SectionKind `json:"sections_found"`
	Strategy      string        `json:"strategy"`
}
