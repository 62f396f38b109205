// Package normalize repairs text extraction artifacts and reinserts the line
// structure that PDF and OCR extraction destroys.
package normalize

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/jonathan/cv-formatter/internal/heuristics"
	"github.com/jonathan/cv-formatter/internal/types"
)

// Options selects which optional passes run. Whitespace collapsing,
// substitution repair and header breaks always run.
type Options struct {
	BreakPatterns     bool // breaks before all-caps runs, bullets and date ranges
	SplitBoundaries   bool // spaces at case and letter/digit boundaries
	FixConcatenations bool // fixed dictionary of known run-together words
	SegmentWords      bool // vocabulary segmentation of remaining long tokens
}

// DefaultOptions enables every pass
func DefaultOptions() Options {
	return Options{
		BreakPatterns:     true,
		SplitBoundaries:   true,
		FixConcatenations: true,
		SegmentWords:      true,
	}
}

// ConservativeOptions runs only the mandatory passes
func ConservativeOptions() Options {
	return Options{}
}

// Normalizer turns raw extracted text into clean logical lines.
// It holds only read-only state and is safe for concurrent use.
type Normalizer struct {
	tables       *heuristics.Tables
	opts         Options
	substituter  *strings.Replacer
	fragmentRe   *regexp.Regexp
	headerRe     *regexp.Regexp
	capsRunRe    *regexp.Regexp
	segmentation *segmenter
}

// New creates a Normalizer over the given tables
func New(tables *heuristics.Tables, opts Options) *Normalizer {
	n := &Normalizer{
		tables:       tables,
		opts:         opts,
		substituter:  buildReplacer(tables.Substitutions),
		fragmentRe:   buildAlternation(`(?i)\b(`, keys(tables.FragmentRepairs), `)\b`),
		headerRe:     buildAlternation(`(`, tables.HeaderPhrases(), `)(:?)`),
		capsRunRe:    regexp.MustCompile(`([a-z])([A-Z][A-Z&'.-]*[A-Z][ \t]+[A-Z][A-Z&'.-]*[A-Z])`),
		segmentation: newSegmenter(tables),
	}
	return n
}

// Normalize runs the passes in order and splits the result into non-blank,
// trimmed lines. It never fails; empty input gives an empty line sequence.
func (n *Normalizer) Normalize(raw string) types.NormalizedText {
	text := collapseWhitespace(raw)
	text = n.repairSubstitutions(text)
	text = n.breakBeforeHeaders(text)
	if n.opts.BreakPatterns {
		text = n.breakBeforePatterns(text)
	}
	if n.opts.SplitBoundaries {
		text = n.splitBoundaries(text)
	}
	if n.opts.FixConcatenations || n.opts.SegmentWords {
		text = n.fixConcatenations(text)
	}
	return toLines(text)
}

// collapseWhitespace unifies line endings and squeezes every other run of
// whitespace into one space.
func collapseWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var sb strings.Builder
	sb.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		switch {
		case r == '\n':
			pendingSpace = false
			sb.WriteRune('\n')
		case r == '\u200b' || r == '\ufeff' || r == '\u00ad':
			// zero-width and soft hyphen characters carry no text
		case unicode.IsSpace(r):
			pendingSpace = true
		default:
			if pendingSpace {
				sb.WriteRune(' ')
				pendingSpace = false
			}
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// repairSubstitutions applies the ligature and glyph table, compatibility
// folding, and the split-word repair table.
func (n *Normalizer) repairSubstitutions(text string) string {
	if n.substituter != nil {
		text = n.substituter.Replace(text)
	}
	text = norm.NFKC.String(text)
	if n.fragmentRe != nil {
		text = n.fragmentRe.ReplaceAllStringFunc(text, func(m string) string {
			return matchCase(m, n.tables.FragmentRepairs[strings.ToLower(m)])
		})
	}
	return text
}

// breakBeforeHeaders puts every all-caps header phrase on its own line, and
// splits "Languages: English, French" after the colon when the header opens a line.
func (n *Normalizer) breakBeforeHeaders(text string) string {
	if n.headerRe != nil {
		matches := n.headerRe.FindAllStringSubmatchIndex(text, -1)
		if len(matches) > 0 {
			var sb strings.Builder
			last := 0
			for _, m := range matches {
				start, end := m[0], m[1]
				if !isStandaloneCaps(text, start, m[3]) {
					continue
				}
				sb.WriteString(text[last:start])
				if hasTextBefore(text, start) {
					sb.WriteByte('\n')
				}
				sb.WriteString(text[start:end])
				if hasTextAfter(text, end) {
					sb.WriteByte('\n')
				}
				last = end
			}
			sb.WriteString(text[last:])
			text = sb.String()
		}
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = n.splitLeadingHeader(line)
	}
	return strings.Join(lines, "\n")
}

// splitLeadingHeader splits "Skills: Excel, VBA" into a header line and a content line
func (n *Normalizer) splitLeadingHeader(line string) string {
	trimmed := strings.TrimSpace(line)
	m, ok := n.tables.HeaderPrefix(trimmed)
	if !ok || m.End >= len(trimmed) || trimmed[m.End] != ':' {
		return line
	}
	rest := strings.TrimSpace(trimmed[m.End+1:])
	if rest == "" {
		return line
	}
	return trimmed[:m.End+1] + "\n" + rest
}

// isStandaloneCaps reports whether a header match is a real all-caps phrase
// rather than part of a longer capitalized word. A header glued to the next
// word ("SKILLSExcel", "EDUCATIONBSc") counts when the case changes into it.
func isStandaloneCaps(text string, start, end int) bool {
	if start > 0 {
		prev := lastRune(text[:start])
		if unicode.IsUpper(prev) {
			return false
		}
	}
	if end < len(text) {
		next := firstRune(text[end:])
		if unicode.IsLetter(next) && !startsMixedCaseWord(text[end:]) {
			return false
		}
	}
	return true
}

// startsMixedCaseWord reports whether s opens with one to three uppercase
// letters followed by a lowercase one, as in "Analyst" or "BSc".
func startsMixedCaseWord(s string) bool {
	upper := 0
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper++
			if upper > 3 {
				return false
			}
		case unicode.IsLower(r):
			return upper > 0
		default:
			return false
		}
	}
	return false
}

// breakBeforePatterns inserts breaks before all-caps organization runs glued
// to lowercase text, before bullet glyphs, and before date ranges that follow
// the end of a sentence.
func (n *Normalizer) breakBeforePatterns(text string) string {
	text = n.capsRunRe.ReplaceAllString(text, "$1\n$2")
	text = breakBeforeBullets(text)
	return breakBeforeDates(text)
}

func breakBeforeBullets(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for i, r := range text {
		if r == '•' && hasTextBefore(text, i) {
			sb.WriteByte('\n')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func breakBeforeDates(text string) string {
	matches := heuristics.FindAllDateRanges(text)
	if len(matches) == 0 {
		return text
	}
	var sb strings.Builder
	last := 0
	for _, m := range matches {
		if endsSentence(text[:m[0]]) {
			sb.WriteString(strings.TrimRight(text[last:m[0]], " "))
			sb.WriteByte('\n')
			last = m[0]
		}
	}
	sb.WriteString(text[last:])
	return sb.String()
}

// endsSentence reports whether the text before a date range closes a sentence,
// or is a lowercase word glued directly to the date.
func endsSentence(before string) bool {
	if before == "" {
		return false
	}
	r := lastRune(before)
	if unicode.IsLower(r) {
		return true
	}
	trimmed := strings.TrimRight(before, " ")
	if trimmed == "" || strings.HasSuffix(trimmed, "\n") {
		return false
	}
	switch lastRune(trimmed) {
	case '.', '!', '?', ';':
	default:
		return false
	}
	// "Jan. 2019" is part of the date, not a sentence end.
	fields := strings.Fields(trimmed[strings.LastIndexByte(trimmed, '\n')+1:])
	return len(fields) == 0 || !heuristics.IsMonthWord(fields[len(fields)-1])
}

// splitBoundaries inserts spaces at lowercase→uppercase, letter→digit and
// digit→letter transitions inside tokens, leaving emails, URLs, protected
// words, short codes ("EC2") and ordinal or unit suffixes ("4th", "10k") intact.
func (n *Normalizer) splitBoundaries(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		tokens := strings.Split(line, " ")
		for j, tok := range tokens {
			if tok == "" || isAddress(tok) || n.tables.IsProtected(tok) {
				continue
			}
			tokens[j] = splitDigitBoundaries(splitCaseBoundaries(tok))
		}
		lines[i] = strings.Join(tokens, " ")
	}
	return strings.Join(lines, "\n")
}

func isAddress(tok string) bool {
	return strings.Contains(tok, "@") || strings.Contains(tok, "://") || strings.HasPrefix(strings.ToLower(tok), "www.")
}

func splitCaseBoundaries(tok string) string {
	var sb strings.Builder
	var prev rune
	for i, r := range tok {
		if i > 0 && unicode.IsLower(prev) && unicode.IsUpper(r) {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
		prev = r
	}
	return sb.String()
}

func splitDigitBoundaries(tok string) string {
	runes := []rune(tok)
	var sb strings.Builder
	sb.Grow(len(tok) + 4)
	segStart := 0
	for i, r := range runes {
		if i > 0 {
			prev := runes[i-1]
			switch {
			case r == ' ':
				segStart = i + 1
			case unicode.IsLetter(prev) && unicode.IsDigit(r) && !isShortCode(runes[segStart:i], max(letterRunStart(runes, i), segStart)-segStart):
				sb.WriteByte(' ')
				segStart = i
			case unicode.IsDigit(prev) && unicode.IsLetter(r) && !isShortSuffix(runes[i:]):
				sb.WriteByte(' ')
				segStart = i
			}
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// isShortCode reports whether the letters before a digit are a one or two
// letter uppercase code such as "Q" or "EC" standing at the start of a word.
func isShortCode(segment []rune, runStart int) bool {
	letters := segment[runStart:]
	if len(letters) == 0 || len(letters) > 2 {
		return false
	}
	if runStart > 0 {
		if prev := segment[runStart-1]; unicode.IsLetter(prev) || unicode.IsDigit(prev) {
			return false
		}
	}
	for _, r := range letters {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// letterRunStart returns the index where the letter run ending before i begins
func letterRunStart(runes []rune, i int) int {
	j := i
	for j > 0 && unicode.IsLetter(runes[j-1]) {
		j--
	}
	return j
}

// isShortSuffix reports whether the letter run at the start of rest is at most two letters long
func isShortSuffix(rest []rune) bool {
	count := 0
	for _, r := range rest {
		if !unicode.IsLetter(r) {
			break
		}
		count++
	}
	return count <= 2
}

// fixConcatenations applies the fixed dictionary and then word segmentation
// to every token that is still a run of joined words.
func (n *Normalizer) fixConcatenations(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		tokens := strings.Split(line, " ")
		for j, tok := range tokens {
			tokens[j] = n.fixToken(tok)
		}
		lines[i] = strings.Join(tokens, " ")
	}
	return strings.Join(lines, "\n")
}

func (n *Normalizer) fixToken(tok string) string {
	lead, core, trail := splitPunctuation(tok)
	if core == "" {
		return tok
	}
	lower := strings.ToLower(core)
	if n.opts.FixConcatenations {
		if fixed, ok := n.tables.Concatenations[lower]; ok {
			return lead + matchCase(core, fixed) + trail
		}
	}
	if n.opts.SegmentWords {
		if words, ok := n.segmentation.split(core); ok {
			return lead + matchCase(core, strings.Join(words, " ")) + trail
		}
	}
	return tok
}

// splitPunctuation separates leading and trailing non-letters from a token
func splitPunctuation(tok string) (string, string, string) {
	start := strings.IndexFunc(tok, unicode.IsLetter)
	if start < 0 {
		return tok, "", ""
	}
	end := strings.LastIndexFunc(tok, unicode.IsLetter)
	_, size := utf8.DecodeRuneInString(tok[end:])
	end += size
	return tok[:start], tok[start:end], tok[end:]
}

// toLines splits text into trimmed, non-blank lines
func toLines(text string) types.NormalizedText {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return types.NormalizedText{Lines: lines}
}

// matchCase gives replacement the leading capitalization of original
func matchCase(original, replacement string) string {
	if original == "" || replacement == "" {
		return replacement
	}
	first := firstRune(original)
	if !unicode.IsUpper(first) {
		return replacement
	}
	if original == strings.ToUpper(original) && len([]rune(original)) > 1 {
		return strings.ToUpper(replacement)
	}
	r := []rune(replacement)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func hasTextBefore(text string, i int) bool {
	lineStart := strings.LastIndexByte(text[:i], '\n') + 1
	return strings.TrimSpace(text[lineStart:i]) != ""
}

func hasTextAfter(text string, i int) bool {
	lineEnd := strings.IndexByte(text[i:], '\n')
	if lineEnd < 0 {
		lineEnd = len(text) - i
	}
	return strings.TrimSpace(text[i:i+lineEnd]) != ""
}

func lastRune(s string) rune {
	r := []rune(s)
	if len(r) == 0 {
		return 0
	}
	return r[len(r)-1]
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func buildReplacer(table map[string]string) *strings.Replacer {
	if len(table) == 0 {
		return nil
	}
	pairs := make([]string, 0, len(table)*2)
	for _, k := range keys(table) {
		pairs = append(pairs, k, table[k])
	}
	return strings.NewReplacer(pairs...)
}

// buildAlternation compiles prefix(a|b|c)suffix with the longest alternatives first
func buildAlternation(prefix string, words []string, suffix string) *regexp.Regexp {
	if len(words) == 0 {
		return nil
	}
	sorted := append([]string(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, 0, len(sorted))
	for _, w := range sorted {
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	return regexp.MustCompile(prefix + strings.Join(quoted, "|") + suffix)
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
