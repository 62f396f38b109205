// Package heuristics provides the immutable keyword tables and scoring weights
// shared by every structure-recovery stage.
package heuristics

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/cv-formatter/internal/types"
)

// NameWeights controls name candidate scoring
type NameWeights struct {
	Reconstructed       float64 `yaml:"reconstructed"`
	LargeFont           float64 `yaml:"large_font"`
	Standard            float64 `yaml:"standard"`
	PositionDecay       float64 `yaml:"position_decay"`
	WordCountBonus      float64 `yaml:"word_count_bonus"`
	LengthBonus         float64 `yaml:"length_bonus"`
	StrayInitialPenalty float64 `yaml:"stray_initial_penalty"`
	ScanLines           int     `yaml:"scan_lines"`
}

// Limits holds the numeric thresholds used by the line classifiers
type Limits struct {
	HeaderMaxChars    int `yaml:"header_max_chars"`
	EntryMaxWords     int `yaml:"entry_max_words"`
	SegmentMinLength  int `yaml:"segment_min_length"`
	PhoneScanLines    int `yaml:"phone_scan_lines"`
	LocationScanLines int `yaml:"location_scan_lines"`
	MaxFragmentLines  int `yaml:"max_fragment_lines"`
}

// Tables is the full set of heuristic tables. A Tables value is built once
// and never mutated afterwards, so it is safe to share between goroutines.
type Tables struct {
	SectionHeaders        map[types.SectionKind][]string `yaml:"section_headers"`
	Substitutions         map[string]string              `yaml:"substitutions"`
	FragmentRepairs       map[string]string              `yaml:"fragment_repairs"`
	Concatenations        map[string]string              `yaml:"concatenations"`
	Vocabulary            []string                       `yaml:"vocabulary"`
	TitleKeywords         []string                       `yaml:"title_keywords"`
	OrganizationSuffixes  []string                       `yaml:"organization_suffixes"`
	OrganizationRepairs   map[string]string              `yaml:"organization_repairs"`
	DegreeKeywords        []string                       `yaml:"degree_keywords"`
	InstitutionKeywords   []string                       `yaml:"institution_keywords"`
	Cities                []string                       `yaml:"cities"`
	Countries             []string                       `yaml:"countries"`
	LanguageWords         []string                       `yaml:"language_words"`
	Conjunctions          []string                       `yaml:"conjunctions"`
	ProtectedTokens       []string                       `yaml:"protected_tokens"`
	SkillCanonical        map[string]string              `yaml:"skill_canonical"`
	NameWeights           NameWeights                    `yaml:"name_weights"`
	Limits                Limits                         `yaml:"limits"`

	headers      []headerKeyword
	vocabulary   map[string]bool
	titles       []string
	orgSuffixes  map[string]bool
	degrees      map[string]bool
	institutions []string
	languages    map[string]bool
	conjunctions map[string]bool
	places       []place
}

// headerKeyword pairs an upper-cased header phrase with its section kind
type headerKeyword struct {
	Phrase string
	Kind   types.SectionKind
}

// place is a gazetteer entry
type place struct {
	Name    string
	Country bool
}

// index builds the lookup structures. It must be called exactly once, before
// the Tables value is shared.
func (t *Tables) index() {
	t.headers = t.headers[:0]
	for kind, phrases := range t.SectionHeaders {
		for _, p := range phrases {
			t.headers = append(t.headers, headerKeyword{Phrase: strings.ToUpper(strings.TrimSpace(p)), Kind: kind})
		}
	}
	// Longest phrase first so "TECHNICAL SKILLS" wins over "SKILLS".
	sort.SliceStable(t.headers, func(i, j int) bool {
		if len(t.headers[i].Phrase) != len(t.headers[j].Phrase) {
			return len(t.headers[i].Phrase) > len(t.headers[j].Phrase)
		}
		return t.headers[i].Phrase < t.headers[j].Phrase
	})

	t.vocabulary = toSet(t.Vocabulary, strings.ToLower)
	t.orgSuffixes = toSet(t.OrganizationSuffixes, strings.ToUpper)
	t.degrees = toSet(t.DegreeKeywords, strings.ToUpper)
	t.languages = toSet(t.LanguageWords, strings.ToLower)
	t.conjunctions = toSet(t.Conjunctions, strings.ToLower)

	t.titles = upperAll(t.TitleKeywords)
	t.institutions = upperAll(t.InstitutionKeywords)

	t.places = t.places[:0]
	for _, c := range t.Cities {
		t.places = append(t.places, place{Name: c})
	}
	for _, c := range t.Countries {
		t.places = append(t.places, place{Name: c, Country: true})
	}
	sort.SliceStable(t.places, func(i, j int) bool {
		return len(t.places[i].Name) > len(t.places[j].Name)
	})
}

func toSet(words []string, fold func(string) string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[fold(strings.TrimSpace(w))] = true
	}
	return set
}

func upperAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, strings.ToUpper(strings.TrimSpace(w)))
	}
	return out
}

// HeaderMatch is a header phrase found in a line
type HeaderMatch struct {
	Kind  types.SectionKind
	Start int // byte offset in the line
	End   int
}

// FindHeader returns the longest header phrase contained in line as a whole
// word sequence, matched case-insensitively.
func (t *Tables) FindHeader(line string) (HeaderMatch, bool) {
	upper := strings.ToUpper(line)
	for _, h := range t.headers {
		if start := indexWord(upper, h.Phrase); start >= 0 {
			return HeaderMatch{Kind: h.Kind, Start: start, End: start + len(h.Phrase)}, true
		}
	}
	return HeaderMatch{}, false
}

// HeaderPrefix returns the longest header phrase that opens line. Offsets are
// valid for line itself; lines whose case folding changes their length never match.
func (t *Tables) HeaderPrefix(line string) (HeaderMatch, bool) {
	upper := strings.ToUpper(line)
	if len(upper) != len(line) {
		return HeaderMatch{}, false
	}
	for _, h := range t.headers {
		if strings.HasPrefix(upper, h.Phrase) && isBoundaryAt(upper, len(h.Phrase)) {
			return HeaderMatch{Kind: h.Kind, Start: 0, End: len(h.Phrase)}, true
		}
	}
	return HeaderMatch{}, false
}

// HeaderPhrases returns all header phrases, longest first
func (t *Tables) HeaderPhrases() []string {
	out := make([]string, 0, len(t.headers))
	for _, h := range t.headers {
		out = append(out, h.Phrase)
	}
	return out
}

// IsHeaderPhrase reports whether s, upper-cased, is exactly one header phrase
func (t *Tables) IsHeaderPhrase(s string) bool {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for _, h := range t.headers {
		if h.Phrase == upper {
			return true
		}
	}
	return false
}

// IsVocabularyWord reports whether w is a known segmentation word
func (t *Tables) IsVocabularyWord(w string) bool {
	return t.vocabulary[strings.ToLower(w)]
}

// HasTitleKeyword reports whether line mentions a job title keyword
func (t *Tables) HasTitleKeyword(line string) bool {
	return containsAnyWord(strings.ToUpper(line), t.titles)
}

// HasOrganizationSuffix reports whether any word of line is an organization suffix
func (t *Tables) HasOrganizationSuffix(line string) bool {
	for _, w := range Words(line) {
		if t.orgSuffixes[strings.ToUpper(w)] {
			return true
		}
	}
	return false
}

// HasDegreeKeyword reports whether any word of line is a degree or qualification keyword
func (t *Tables) HasDegreeKeyword(line string) bool {
	upper := strings.ToUpper(line)
	for deg := range t.degrees {
		if strings.Contains(deg, " ") || strings.Contains(deg, "-") {
			if indexWord(upper, deg) >= 0 {
				return true
			}
		}
	}
	for _, w := range Words(line) {
		if t.degrees[strings.ToUpper(strings.TrimSuffix(w, "."))] {
			return true
		}
	}
	return false
}

// HasInstitutionKeyword reports whether line names a school-like institution
func (t *Tables) HasInstitutionKeyword(line string) bool {
	return containsAnyWord(strings.ToUpper(line), t.institutions)
}

// IsLanguageWord reports whether w is a language or proficiency word
func (t *Tables) IsLanguageWord(w string) bool {
	return t.languages[strings.ToLower(w)]
}

// MentionsLanguage reports whether any word of line is a language or proficiency word
func (t *Tables) MentionsLanguage(line string) bool {
	for _, w := range Words(line) {
		if t.IsLanguageWord(w) {
			return true
		}
	}
	return false
}

// IsConjunction reports whether w joins a broken phrase
func (t *Tables) IsConjunction(w string) bool {
	return t.conjunctions[strings.ToLower(w)]
}

// IsProtected reports whether token contains a word whose inner capitals must be kept
func (t *Tables) IsProtected(token string) bool {
	for _, p := range t.ProtectedTokens {
		if strings.Contains(token, p) {
			return true
		}
	}
	return false
}

// CanonicalSkill returns the canonical spelling for a skill, if one is known
func (t *Tables) CanonicalSkill(skill string) (string, bool) {
	c, ok := t.SkillCanonical[strings.ToLower(strings.TrimSpace(skill))]
	return c, ok
}

// FindPlace returns the first gazetteer entry named in line. When a city is
// followed by a country the result is "City, Country".
func (t *Tables) FindPlace(line string) (string, bool) {
	upper := strings.ToUpper(line)
	for _, p := range t.places {
		if p.Country {
			continue
		}
		start := indexWord(upper, strings.ToUpper(p.Name))
		if start < 0 {
			continue
		}
		rest := strings.TrimLeft(upper[start+len(p.Name):], " ,")
		for _, c := range t.places {
			if !c.Country {
				continue
			}
			if indexWord(rest, strings.ToUpper(c.Name)) == 0 {
				return p.Name + ", " + c.Name, true
			}
		}
		return p.Name, true
	}
	return "", false
}

// IsPlace reports whether s is entirely a gazetteer place ("London", "London, UK")
func (t *Tables) IsPlace(s string) bool {
	s = strings.Trim(strings.TrimSpace(s), ".,")
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		found := false
		for _, p := range t.places {
			if strings.EqualFold(part, p.Name) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// EndsWithCity splits s into the text before a trailing city and the city
func (t *Tables) EndsWithCity(s string) (string, string, bool) {
	trimmed := strings.TrimSpace(s)
	for _, p := range t.places {
		if p.Country || len(trimmed) <= len(p.Name) {
			continue
		}
		cut := len(trimmed) - len(p.Name)
		if !strings.EqualFold(trimmed[cut:], p.Name) || !isBoundary(trimmed, cut-1) {
			continue
		}
		return strings.TrimRight(trimmed[:cut], " ,-"), trimmed[cut:], true
	}
	return "", "", false
}

// RepairOrganization reverses known fragmentation of organization names, such
// as "Example P artners" or "Example artners".
func (t *Tables) RepairOrganization(org string) string {
	words := strings.Fields(org)
	out := make([]string, 0, len(words))
	for i := 0; i < len(words); i++ {
		w := words[i]
		if len([]rune(w)) == 1 && unicode.IsUpper([]rune(w)[0]) && i+1 < len(words) {
			next := words[i+1]
			if len(next) >= 3 && unicode.IsLower([]rune(next)[0]) {
				out = append(out, w+next)
				i++
				continue
			}
		}
		if fixed, ok := t.OrganizationRepairs[strings.ToLower(w)]; ok {
			out = append(out, fixed)
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

// Words splits s into words, trimming surrounding punctuation
func Words(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ';' || r == '|' || r == '/' || r == '(' || r == ')'
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".:;!?\"'")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// containsAnyWord reports whether any phrase occurs in upper on word boundaries
func containsAnyWord(upper string, phrases []string) bool {
	for _, p := range phrases {
		if indexWord(upper, p) >= 0 {
			return true
		}
	}
	return false
}

// indexWord finds phrase in s where both ends fall on a non-letter, non-digit boundary
func indexWord(s, phrase string) int {
	if phrase == "" {
		return -1
	}
	offset := 0
	for {
		i := strings.Index(s[offset:], phrase)
		if i < 0 {
			return -1
		}
		start := offset + i
		end := start + len(phrase)
		if isBoundary(s, start-1) && isBoundaryAt(s, end) {
			return start
		}
		offset = start + 1
		if offset >= len(s) {
			return -1
		}
	}
}

// isBoundary reports whether the rune ending at byte i is not a letter or digit
func isBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i+1])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// isBoundaryAt reports whether the rune starting at byte i is not a letter or digit
func isBoundaryAt(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
