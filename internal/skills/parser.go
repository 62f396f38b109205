// Package skills turns the lines of skills-like sections into short token lists.
package skills

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/jonathan/cv-formatter/internal/heuristics"
	"github.com/jonathan/cv-formatter/internal/types"
)

const (
	// DefaultMaxTokens caps each token list
	DefaultMaxTokens = 15

	maxListItemWords  = 4
	maxShortWords     = 3
	maxProseChars     = 120
	maxCategoryLength = 30
)

var bulletRe = regexp.MustCompile(`^(?:[•*·]|[-–—](?:\s|$))\s*`)

// Parser classifies skill lines and collects their tokens
type Parser struct {
	tables    *heuristics.Tables
	maxTokens int
}

// NewParser creates a Parser. A non-positive maxTokens selects DefaultMaxTokens.
func NewParser(tables *heuristics.Tables, maxTokens int) *Parser {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Parser{tables: tables, maxTokens: maxTokens}
}

// Build parses each skills-like region into the matching list. Lines such as
// "Languages: English, French" inside the skills region are routed to the
// region their category names.
func (p *Parser) Build(regions map[types.SectionKind][]string) types.SkillSet {
	routed := map[types.SectionKind][]string{
		types.SectionSkills:          nil,
		types.SectionLanguages:       nil,
		types.SectionExtracurricular: nil,
	}
	for _, kind := range []types.SectionKind{types.SectionSkills, types.SectionLanguages, types.SectionExtracurricular} {
		for _, line := range regions[kind] {
			target, rest := p.route(kind, line)
			routed[target] = append(routed[target], rest)
		}
	}

	return types.SkillSet{
		TechnicalSkills: p.Parse(routed[types.SectionSkills], types.SectionSkills),
		Languages:       p.Parse(routed[types.SectionLanguages], types.SectionLanguages),
		Extracurricular: p.Parse(routed[types.SectionExtracurricular], types.SectionExtracurricular),
	}
}

// route moves a skills line whose category is another skills-like kind
func (p *Parser) route(kind types.SectionKind, line string) (types.SectionKind, string) {
	if kind != types.SectionSkills {
		return kind, line
	}
	item := stripBullet(line)
	match, ok := p.tables.HeaderPrefix(item)
	if !ok || (match.Kind != types.SectionLanguages && match.Kind != types.SectionExtracurricular) {
		return kind, line
	}
	rest := strings.TrimSpace(item[match.End:])
	if !strings.HasPrefix(rest, ":") {
		return kind, line
	}
	return match.Kind, strings.TrimSpace(strings.TrimPrefix(rest, ":"))
}

// Parse returns the de-duplicated tokens of lines, in first-seen order and
// capped at the parser's limit.
func (p *Parser) Parse(lines []string, kind types.SectionKind) []string {
	var tokens []string
	prevLine := ""
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		bullet := bulletRe.MatchString(line)
		line = stripBullet(line)
		if line == "" {
			continue
		}

		if !bullet && len(tokens) > 0 && p.continuesPrevious(tokens[len(tokens)-1], prevLine, line) {
			tokens[len(tokens)-1] = cleanToken(tokens[len(tokens)-1] + " " + line)
			prevLine = line
			continue
		}

		tokens = append(tokens, p.lineTokens(line, kind)...)
		prevLine = line
	}
	return p.finish(tokens, kind)
}

// lineTokens classifies one line. "English: Native" stays whole in the
// languages list.
func (p *Parser) lineTokens(line string, kind types.SectionKind) []string {
	var out []string

	// "Category: a, b" or a bare "Category:" header
	if category, members, ok := splitCategory(line); ok && !(kind == types.SectionLanguages && p.tables.IsLanguageWord(category)) {
		out = append(out, category)
		if members == "" {
			return out
		}
		line = members
	}

	if items, ok := splitList(line); ok {
		return append(out, items...)
	}
	if len(line) > maxProseChars {
		return out
	}
	if token := cleanToken(line); token != "" {
		out = append(out, token)
	}
	return out
}

// continuesPrevious reports whether line is the tail of a phrase that the
// extractor broke across lines.
func (p *Parser) continuesPrevious(prev, prevLine, line string) bool {
	first := strings.Fields(line)[0]
	if p.tables.IsConjunction(first) {
		return true
	}
	if len(strings.Fields(prev)) > maxShortWords || endsWithPunctuation(prevLine) || strings.ContainsAny(prevLine, ",;") {
		return false
	}
	r := []rune(line)[0]
	return unicode.IsLower(r)
}

func (p *Parser) finish(tokens []string, kind types.SectionKind) []string {
	out := make([]string, 0, min(len(tokens), p.maxTokens))
	seen := make(map[string]bool)
	for _, t := range tokens {
		if kind == types.SectionSkills {
			t = NormalizeSkillName(p.tables, t)
		}
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
		if len(out) == p.maxTokens {
			break
		}
	}
	return out
}

// splitCategory splits "Software: Excel, VBA" into "Software" and its members
func splitCategory(line string) (string, string, bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 || idx > maxCategoryLength {
		return "", "", false
	}
	category := cleanToken(line[:idx])
	if category == "" || len(strings.Fields(category)) > maxShortWords {
		return "", "", false
	}
	return category, strings.TrimSpace(line[idx+1:]), true
}

// splitList splits a comma or semicolon separated list outside brackets. It
// only succeeds when there is more than one item and every item is short.
func splitList(line string) ([]string, bool) {
	var items []string
	depth, start := 0, 0
	for i, r := range line {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case ',', ';':
			if depth == 0 {
				items = append(items, line[start:i])
				start = i + 1
			}
		}
	}
	items = append(items, line[start:])
	if len(items) < 2 {
		return nil, false
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		token := cleanToken(item)
		if token == "" {
			continue
		}
		if len(strings.Fields(token)) > maxListItemWords {
			return nil, false
		}
		out = append(out, token)
	}
	return out, true
}

func stripBullet(line string) string {
	return strings.TrimSpace(bulletRe.ReplaceAllString(strings.TrimSpace(line), ""))
}

func cleanToken(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " .,;:")
}

func endsWithPunctuation(s string) bool {
	if s == "" {
		return false
	}
	switch s[len(s)-1] {
	case '.', ',', ';', ':', '!', '?', ')':
		return true
	}
	return false
}
