package skills

import (
	"strings"
	"unicode"

	"github.com/jonathan/cv-formatter/internal/heuristics"
)

// maxAcronymLength is the longest all-caps word kept as an acronym
const maxAcronymLength = 5

// NormalizeSkillName returns the canonical spelling of a skill
func NormalizeSkillName(tables *heuristics.Tables, skillName string) string {
	normalized := strings.Join(strings.Fields(skillName), " ")
	if normalized == "" {
		return ""
	}

	if canonical, ok := tables.CanonicalSkill(normalized); ok {
		return canonical
	}
	if tables.IsProtected(normalized) {
		return normalized
	}

	upper := strings.ToUpper(normalized)
	lower := strings.ToLower(normalized)
	single := !strings.Contains(normalized, " ")

	// All-caps single words are acronyms when short, shouting otherwise
	if normalized == upper && normalized != lower && single {
		if len([]rune(normalized)) <= maxAcronymLength {
			return normalized
		}
		return capitalize(lower)
	}

	// Mixed case is already deliberate
	if normalized != upper && normalized != lower {
		return normalized
	}

	if normalized == lower && single {
		return capitalize(normalized)
	}
	return normalized
}

func capitalize(s string) string {
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
