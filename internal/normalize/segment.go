package normalize

import (
	"strings"
	"unicode"

	"github.com/jonathan/cv-formatter/internal/heuristics"
)

// segmenter splits run-together words using the vocabulary table
type segmenter struct {
	tables    *heuristics.Tables
	minLength int
}

func newSegmenter(tables *heuristics.Tables) *segmenter {
	minLength := tables.Limits.SegmentMinLength
	if minLength <= 0 {
		minLength = 9
	}
	return &segmenter{tables: tables, minLength: minLength}
}

// split returns the fewest vocabulary words that exactly spell word. It only
// considers lowercase words (an initial capital is allowed) that are not
// themselves vocabulary words and returns false when no full split exists.
func (s *segmenter) split(word string) ([]string, bool) {
	if len(word) < s.minLength || !isLowerWord(word) {
		return nil, false
	}
	lower := strings.ToLower(word)
	if s.tables.IsVocabularyWord(lower) {
		return nil, false
	}

	n := len(lower)
	const unreachable = 1 << 30
	best := make([]int, n+1)
	back := make([]int, n+1)
	for i := 1; i <= n; i++ {
		best[i] = unreachable
		for j := 0; j < i; j++ {
			if best[j] == unreachable || best[j]+1 >= best[i] {
				continue
			}
			if s.tables.IsVocabularyWord(lower[j:i]) {
				best[i] = best[j] + 1
				back[i] = j
			}
		}
	}
	if best[n] == unreachable || best[n] < 2 {
		return nil, false
	}

	words := make([]string, best[n])
	for i, k := n, best[n]-1; i > 0; k-- {
		j := back[i]
		words[k] = lower[j:i]
		i = j
	}
	return words, true
}

// isLowerWord reports whether word is ASCII letters, all lowercase after the first
func isLowerWord(word string) bool {
	for i, r := range word {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
