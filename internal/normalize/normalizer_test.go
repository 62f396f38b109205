package normalize

import (
	"strings"
	"testing"

	"github.com/jonathan/cv-formatter/internal/heuristics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNormalizer(opts Options) *Normalizer {
	return New(heuristics.Default(), opts)
}

func TestNormalize_EmptyInput(t *testing.T) {
	n := newTestNormalizer(DefaultOptions())

	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"only whitespace", "   \n\t\n  \r\n"},
		{"only zero width", "\u200b\ufeff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := n.Normalize(tt.input)
			assert.Empty(t, out.Lines)
			assert.True(t, out.IsEmpty())
		})
	}
}

func TestNormalize_Passes(t *testing.T) {
	n := newTestNormalizer(DefaultOptions())

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "collapses whitespace",
			input: "Risk\t\tAnalyst   London\r\nSecond   line",
			want:  []string{"Risk Analyst London", "Second line"},
		},
		{
			name:  "repairs ligatures",
			input: "Proﬁcient in ﬁnancial modelling",
			want:  []string{"Proficient in financial modelling"},
		},
		{
			name:  "repairs split words",
			input: "Business de velopment lead",
			want:  []string{"Business development lead"},
		},
		{
			name:  "breaks around all-caps headers",
			input: "Managed a team of five.WORK EXPERIENCE Analyst, Example Partners",
			want:  []string{"Managed a team of five.", "WORK EXPERIENCE", "Analyst, Example Partners"},
		},
		{
			name:  "breaks header glued to following word",
			input: "WORK EXPERIENCEAnalyst, Example Partners, London, 2019–2021• Built models• Led team",
			want:  []string{"WORK EXPERIENCE", "Analyst, Example Partners, London, 2019–2021", "• Built models", "• Led team"},
		},
		{
			name:  "breaks header glued to degree abbreviation",
			input: "EDUCATIONBSc Economics, University of Leeds",
			want:  []string{"EDUCATION", "BSc Economics, University of Leeds"},
		},
		{
			name:  "breaks header glued on both sides",
			input: "strong analytical skillsSKILLSExcel, VBA, Python",
			want:  []string{"strong analytical skills", "SKILLS", "Excel, VBA, Python"},
		},
		{
			name:  "keeps header phrase inside longer caps word",
			input: "Member of SKILLSET board",
			want:  []string{"Member of SKILLSET board"},
		},
		{
			name:  "splits leading title-case header",
			input: "Languages: English, French",
			want:  []string{"Languages:", "English, French"},
		},
		{
			name:  "breaks before bullets",
			input: "Analyst 2019 – 2021 ▪ Built models • Led team",
			want:  []string{"Analyst 2019 – 2021", "• Built models", "• Led team"},
		},
		{
			name:  "breaks before glued organization run",
			input: "risk analysisEXAMPLE PARTNERS LLP London",
			want:  []string{"risk analysis", "EXAMPLE PARTNERS LLP London"},
		},
		{
			name:  "breaks before date after sentence",
			input: "Built models for clients. 2019 – 2021 Analyst",
			want:  []string{"Built models for clients.", "2019 – 2021 Analyst"},
		},
		{
			name:  "keeps month abbreviation with its date",
			input: "Analyst Jan. 2019 - Present",
			want:  []string{"Analyst Jan. 2019 - Present"},
		},
		{
			name:  "keeps comma separated entry line intact",
			input: "Analyst, Example Partners, London, 2019–2021",
			want:  []string{"Analyst, Example Partners, London, 2019–2021"},
		},
		{
			name:  "splits case and digit boundaries",
			input: "ExamplePartners London2019",
			want:  []string{"Example Partners London 2019"},
		},
		{
			name:  "leaves codes ordinals and addresses alone",
			input: "EC2 and 4th quarter, 10k users john.smith@ExampleBank.com JavaScript",
			want:  []string{"EC2 and 4th quarter, 10k users john.smith@ExampleBank.com JavaScript"},
		},
		{
			name:  "applies concatenation dictionary",
			input: "Lookingfor a role with stronganalytical skills",
			want:  []string{"Looking for a role with strong analytical skills"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := n.Normalize(tt.input)
			assert.Equal(t, tt.want, out.Lines)
		})
	}
}

func TestNormalize_SegmentsUnknownConcatenation(t *testing.T) {
	n := newTestNormalizer(DefaultOptions())

	out := n.Normalize("Experienced in managingfinancialriskanalysis for banks")
	require.Len(t, out.Lines, 1)

	words := strings.Fields(out.Lines[0])
	for _, w := range []string{"managing", "financial", "risk", "analysis"} {
		assert.Contains(t, words, w)
	}
	assert.NotContains(t, out.Lines[0], "managingfinancial")
}

func TestStartsMixedCaseWord(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Analyst, Example", true},
		{"BSc Economics", true},
		{"Excel", true},
		{"SET committee", false},
		{"ABCDe", false},
		{"excel", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, startsMixedCaseWord(tt.in))
		})
	}
}

func TestNormalize_SegmentationLeavesKnownWords(t *testing.T) {
	n := newTestNormalizer(DefaultOptions())

	out := n.Normalize("understanding responsibilities background")
	assert.Equal(t, []string{"understanding responsibilities background"}, out.Lines)
}

func TestNormalize_ConservativeSkipsOptionalPasses(t *testing.T) {
	n := newTestNormalizer(ConservativeOptions())

	out := n.Normalize("ExamplePartners lookingfor • item")
	assert.Equal(t, []string{"ExamplePartners lookingfor • item"}, out.Lines)
}

func TestNormalize_IdempotentStructuralPasses(t *testing.T) {
	opts := Options{BreakPatterns: true, SplitBoundaries: true}
	n := newTestNormalizer(opts)

	inputs := []string{
		"H\nO\nPE GILBERT\nSome Street, London\nhope.gilbert@example.com",
		"PROFILEAnalyst with stronganalytical skills.WORK EXPERIENCEAnalyst, Example Partners, London, 2019–2021 • Built models • Led team",
		"risk analysisEXAMPLE PARTNERS LLP London2019 - Present ▪ Priced derivatives. 2017 – 2019 Junior Analyst",
		"EDUCATION BSc Economics, University of Leeds 2015 - 2018\nLanguages: English (native), French",
		"Built models for clients. 2019 – 2021 Analyst Jan. 2019 - Present EC2 4th 10k",
		"workEXPERIENCE 2021EDUCATION SKILLS2019",
	}

	for _, input := range inputs {
		first := n.Normalize(input)
		second := n.Normalize(strings.Join(first.Lines, "\n"))
		assert.Equal(t, first.Lines, second.Lines, "input: %q", input)
	}
}

func TestNormalize_IdempotentFullPipeline(t *testing.T) {
	n := newTestNormalizer(DefaultOptions())

	inputs := []string{
		"Jane Doe\nLondon, UK\nSUMMARY\nAnalyst lookingfor a role in managingfinancialriskanalysis.",
		"WORK EXPERIENCE\nAnalyst, Example Partners, London, 2019–2021\n• Built valueatrisk models\n• Led team",
	}

	for _, input := range inputs {
		first := n.Normalize(input)
		second := n.Normalize(strings.Join(first.Lines, "\n"))
		assert.Equal(t, first.Lines, second.Lines, "input: %q", input)
	}
}

func TestSegmenter_Split(t *testing.T) {
	s := newSegmenter(heuristics.Default())

	tests := []struct {
		word   string
		want   []string
		wantOK bool
	}{
		{"ananalyst", []string{"an", "analyst"}, true},
		{"valueatrisk", []string{"value", "at", "risk"}, true},
		{"Businessschool", []string{"business", "school"}, true},
		{"analysis", nil, false},
		{"management", nil, false},
		{"zzzzzzzzzzzz", nil, false},
		{"RISKANALYSIS", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			got, ok := s.split(tt.word)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
