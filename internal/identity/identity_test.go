package identity

import (
	"testing"

	"github.com/jonathan/cv-formatter/internal/heuristics"
	"github.com/jonathan/cv-formatter/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameResolver_Resolve(t *testing.T) {
	r := NewNameResolver(heuristics.Default())

	tests := []struct {
		name       string
		lines      []string
		hints      []string
		wantText   string
		wantSource types.NameSource
	}{
		{
			name:       "fragments on consecutive lines",
			lines:      []string{"H", "O", "PE GILBERT", "Some Street, London"},
			wantText:   "HOPE GILBERT",
			wantSource: types.NameSourceReconstructed,
		},
		{
			name:       "fragments on one line",
			lines:      []string{"H O PE GILBERT", "hope@example.com"},
			wantText:   "HOPE GILBERT",
			wantSource: types.NameSourceReconstructed,
		},
		{
			name:       "plain title case name",
			lines:      []string{"Jane Doe", "London, UK", "jane@example.com"},
			wantText:   "Jane Doe",
			wantSource: types.NameSourceStandard,
		},
		{
			name:       "skips curriculum vitae banner",
			lines:      []string{"Curriculum Vitae", "John Smith", "07700 900123"},
			wantText:   "John Smith",
			wantSource: types.NameSourceStandard,
		},
		{
			name:       "large font hint beats later standard line",
			lines:      []string{"PROFILE", "Analyst with five years", "Risk Analyst", "Mary Jones"},
			hints:      []string{"Mary Jones"},
			wantText:   "Mary Jones",
			wantSource: types.NameSourceLargeFont,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.lines, tt.hints)
			require.True(t, ok)
			assert.Equal(t, tt.wantText, got.Text)
			assert.Equal(t, tt.wantSource, got.Source)
		})
	}
}

func TestNameResolver_NoCandidate(t *testing.T) {
	r := NewNameResolver(heuristics.Default())

	tests := []struct {
		name  string
		lines []string
	}{
		{"empty", nil},
		{"only contact details", []string{"jane@example.com", "07700 900123", "London"}},
		{"only headers", []string{"WORK EXPERIENCE", "EDUCATION"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.lines, nil)
			assert.False(t, ok)
			assert.Nil(t, got)
		})
	}
}

func TestNameResolver_ReconstructionOutscoresFragmentRemainder(t *testing.T) {
	r := NewNameResolver(heuristics.Default())

	candidates := r.Candidates([]string{"H", "O", "PE GILBERT"}, nil)
	require.NotEmpty(t, candidates)

	assert.Equal(t, "HOPE GILBERT", candidates[0].Text)
	for _, c := range candidates[1:] {
		assert.Less(t, c.Score, candidates[0].Score)
	}
}

func TestNameResolver_StrayInitialPenalty(t *testing.T) {
	r := NewNameResolver(heuristics.Default())

	candidates := r.Candidates([]string{"Jane Doe", "J Doe Smith"}, nil)
	require.Len(t, candidates, 2)
	assert.Equal(t, "Jane Doe", candidates[0].Text)
}

func TestContactExtractor_Email(t *testing.T) {
	c := NewContactExtractor(heuristics.Default())

	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"plain", []string{"Jane Doe", "jane.doe@example.com"}, "jane.doe@example.com"},
		{"spaced around at", []string{"jane.doe @ example.co.uk | 07700 900123"}, "jane.doe@example.co.uk"},
		{"spaced before dot", []string{"hope@example . com"}, "hope@example.com"},
		{"trailing sentence", []string{"Email: jane@example.com. Phone: 07700 900123"}, "jane@example.com"},
		{"spaced local part", []string{"jane . doe @ example . com"}, "jane.doe@example.com"},
		{"sentence after trailing period", []string{"Email: jane@example.com. available immediately"}, "jane@example.com"},
		{"sentence before address", []string{"Contact me. jane@example.com"}, "jane@example.com"},
		{"missing", []string{"Jane Doe", "London"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Email(tt.lines))
		})
	}
}

func TestContactExtractor_Phone(t *testing.T) {
	c := NewContactExtractor(heuristics.Default())

	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"uk international", []string{"Tel: +44 7700 900123"}, "+44 7700 900123"},
		{"uk national", []string{"Mobile 07700 900123"}, "07700 900123"},
		{"us format", []string{"(555) 123-4567"}, "(555) 123-4567"},
		{"ignores date ranges", []string{"Analyst 2019 - 2021"}, ""},
		{"ignores short numbers", []string{"Room 101, SW1A 1AA"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Phone(tt.lines))
		})
	}
}

func TestContactExtractor_PhoneFallsBackToWholeDocument(t *testing.T) {
	c := NewContactExtractor(heuristics.Default())

	lines := make([]string, 0, 30)
	for i := 0; i < 25; i++ {
		lines = append(lines, "• Built models")
	}
	lines = append(lines, "References: 07700 900123")

	assert.Equal(t, "07700 900123", c.Phone(lines))
}

func TestContactExtractor_Location(t *testing.T) {
	c := NewContactExtractor(heuristics.Default())

	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"address line", []string{"HOPE GILBERT", "Some Street, London"}, "London"},
		{"city and country", []string{"Jane Doe", "Manchester, UK"}, "Manchester, UK"},
		{"skips dated entry lines", []string{"Jane Doe", "Analyst, Leeds 2019 - 2021", "Bristol"}, "Bristol"},
		{"skips organization lines", []string{"Jane Doe", "Example Partners LLP, London"}, ""},
		{"none", []string{"Jane Doe"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Location(tt.lines))
		})
	}
}

func TestContactExtractor_Extract(t *testing.T) {
	c := NewContactExtractor(heuristics.Default())

	got := c.Extract([]string{"H", "O", "PE GILBERT", "Some Street, London", "hope.gilbert@example.com", "+44 7700 900123"})
	assert.Equal(t, types.ContactInfo{
		Email:    "hope.gilbert@example.com",
		Phone:    "+44 7700 900123",
		Location: "London",
	}, got)
}
