// Package identity recovers the candidate's name and contact details from the
// top of a normalized résumé.
package identity

import (
	"sort"
	"strings"
	"unicode"

	"github.com/jonathan/cv-formatter/internal/heuristics"
	"github.com/jonathan/cv-formatter/internal/types"
)

// contactWords mark lines that cannot hold a name
var contactWords = []string{
	"curriculum", "vitae", "resume", "résumé", "cv", "phone", "tel", "mobile",
	"email", "e-mail", "address", "linkedin", "nationality", "date of birth",
}

// NameResolver picks the most plausible name among several candidate sources
type NameResolver struct {
	tables *heuristics.Tables
}

// NewNameResolver creates a NameResolver over the given tables
func NewNameResolver(tables *heuristics.Tables) *NameResolver {
	return &NameResolver{tables: tables}
}

// Resolve returns the best scoring name candidate. It reports false when no
// candidate qualifies; an unresolved name is a gap, not an error.
func (r *NameResolver) Resolve(lines []string, hints []string) (*types.NameCandidate, bool) {
	candidates := r.Candidates(lines, hints)
	if len(candidates) == 0 {
		return nil, false
	}
	best := candidates[0]
	return &best, true
}

// Candidates returns every qualifying candidate ordered from best to worst.
// Ties go to the earlier line, then to the stronger source.
func (r *NameResolver) Candidates(lines []string, hints []string) []types.NameCandidate {
	limit := min(len(lines), r.tables.NameWeights.ScanLines)
	window := lines[:limit]

	var candidates []types.NameCandidate
	candidates = append(candidates, r.reconstructed(window)...)
	candidates = append(candidates, r.largeFont(window, hints)...)
	candidates = append(candidates, r.standard(window)...)

	for i := range candidates {
		candidates[i].Score = r.score(candidates[i])
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.OriginLine != b.OriginLine {
			return a.OriginLine < b.OriginLine
		}
		return sourceRank(a.Source) > sourceRank(b.Source)
	})
	return candidates
}

// standard yields lines that look like a name on their own
func (r *NameResolver) standard(lines []string) []types.NameCandidate {
	var out []types.NameCandidate
	for i, line := range lines {
		if r.looksLikeName(line) {
			out = append(out, types.NameCandidate{Text: line, OriginLine: i, Source: types.NameSourceStandard})
		}
	}
	return out
}

// reconstructed yields names rebuilt from runs of short fragments, either on
// consecutive lines (["H", "O", "PE GILBERT"]) or at the start of one line ("H O PE GILBERT").
func (r *NameResolver) reconstructed(lines []string) []types.NameCandidate {
	var out []types.NameCandidate
	maxLines := r.tables.Limits.MaxFragmentLines
	if maxLines <= 0 {
		maxLines = 4
	}

	for i := 0; i < len(lines); i++ {
		if !isFragment(lines[i]) || r.tables.IsPlace(lines[i]) {
			continue
		}
		fragments := []string{lines[i]}
		j := i + 1
		for j < len(lines) && len(fragments) < maxLines-1 && isFragment(lines[j]) {
			fragments = append(fragments, lines[j])
			j++
		}
		if j >= len(lines) {
			continue
		}
		if name, ok := r.joinFragments(fragments, lines[j]); ok {
			out = append(out, types.NameCandidate{Text: name, OriginLine: i, Source: types.NameSourceReconstructed})
		}
		i = j - 1
	}

	for i, line := range lines {
		words := strings.Fields(line)
		k := 0
		for k < len(words) && isFragment(words[k]) && len([]rune(words[k])) <= 2 {
			k++
		}
		if k < 2 || k == len(words) || strings.ToUpper(line) != line {
			continue
		}
		if name, ok := r.joinFragments(words[:k], strings.Join(words[k:], " ")); ok {
			out = append(out, types.NameCandidate{Text: name, OriginLine: i, Source: types.NameSourceReconstructed})
		}
	}
	return out
}

// joinFragments glues fragments onto the first word of remainder. A single
// long remainder word is kept apart as the surname.
func (r *NameResolver) joinFragments(fragments []string, remainder string) (string, bool) {
	if !r.isNameText(remainder) {
		return "", false
	}
	prefix := strings.Join(fragments, "")
	words := strings.Fields(remainder)

	var name string
	if len(words) == 1 {
		name = prefix + " " + words[0]
	} else {
		name = prefix + words[0] + " " + strings.Join(words[1:], " ")
	}
	if n := len(strings.Fields(name)); n < 2 || n > 5 {
		return "", false
	}
	return name, true
}

// largeFont yields extractor-supplied large text runs that look like names
func (r *NameResolver) largeFont(lines []string, hints []string) []types.NameCandidate {
	var out []types.NameCandidate
	for _, hint := range hints {
		hint = strings.Join(strings.Fields(hint), " ")
		if !r.isNameText(hint) {
			continue
		}
		wc := len(strings.Fields(hint))
		if wc < 2 || wc > 5 {
			continue
		}
		origin := 0
		for i, line := range lines {
			if strings.Contains(strings.ToLower(line), strings.ToLower(hint)) {
				origin = i
				break
			}
		}
		out = append(out, types.NameCandidate{Text: hint, OriginLine: origin, Source: types.NameSourceLargeFont})
	}
	return out
}

func (r *NameResolver) score(c types.NameCandidate) float64 {
	w := r.tables.NameWeights
	var score float64
	switch c.Source {
	case types.NameSourceReconstructed:
		score = w.Reconstructed
	case types.NameSourceLargeFont:
		score = w.LargeFont
	default:
		score = w.Standard
	}
	score -= w.PositionDecay * float64(c.OriginLine)

	words := strings.Fields(c.Text)
	if len(words) == 2 || len(words) == 3 {
		score += w.WordCountBonus
	}
	if n := len([]rune(c.Text)); n >= 8 && n <= 40 {
		score += w.LengthBonus
	}
	if c.Source != types.NameSourceReconstructed {
		for _, word := range words {
			if len([]rune(strings.Trim(word, "."))) == 1 {
				score -= w.StrayInitialPenalty
			}
		}
	}
	return score
}

// looksLikeName reports whether line is a 2–5 word title-case or all-caps
// line free of digits, headers, contact words and places.
func (r *NameResolver) looksLikeName(line string) bool {
	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 5 {
		return false
	}
	if !r.isNameText(line) {
		return false
	}
	allCaps := strings.ToUpper(line) == line
	for _, w := range words {
		first := []rune(w)[0]
		if !allCaps && !unicode.IsUpper(first) {
			return false
		}
	}
	return true
}

// isNameText rejects text that carries digits, symbols, headers, contact
// words, organization suffixes or places.
func (r *NameResolver) isNameText(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || len([]rune(text)) > 40 {
		return false
	}
	for _, c := range text {
		if unicode.IsLetter(c) || c == ' ' || c == '-' || c == '\'' || c == '.' {
			continue
		}
		return false
	}
	if !unicode.IsLetter([]rune(text)[0]) {
		return false
	}
	lower := strings.ToLower(text)
	for _, w := range contactWords {
		if containsWord(lower, w) {
			return false
		}
	}
	if _, ok := r.tables.FindHeader(text); ok {
		return false
	}
	if r.tables.HasOrganizationSuffix(text) || r.tables.IsPlace(text) {
		return false
	}
	return true
}

// isFragment reports whether s is a 1–3 capital letter piece with no spaces
func isFragment(s string) bool {
	s = strings.TrimSpace(s)
	n := len([]rune(s))
	if n == 0 || n > 3 {
		return false
	}
	for _, c := range s {
		if !unicode.IsUpper(c) {
			return false
		}
	}
	return true
}

func sourceRank(s types.NameSource) int {
	switch s {
	case types.NameSourceReconstructed:
		return 3
	case types.NameSourceLargeFont:
		return 2
	default:
		return 1
	}
}

func containsWord(lower, word string) bool {
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	}) {
		if w == word {
			return true
		}
	}
	return strings.Contains(word, " ") && strings.Contains(lower, word)
}
