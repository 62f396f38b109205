package sections

import (
	"testing"

	"github.com/jonathan/cv-formatter/internal/heuristics"
	"github.com/jonathan/cv-formatter/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmenter_HeaderKind(t *testing.T) {
	s := NewSegmenter(heuristics.Default())

	tests := []struct {
		line     string
		wantKind types.SectionKind
		wantOK   bool
	}{
		{"WORK EXPERIENCE", types.SectionExperience, true},
		{"Professional Experience", types.SectionExperience, true},
		{"Relevant Work Experience", types.SectionExperience, true},
		{"EDUCATION", types.SectionEducation, true},
		{"Education and Qualifications", types.SectionEducation, true},
		{"COMPUTER SKILLS", types.SectionSkills, true},
		{"LANGUAGE SKILLS", types.SectionLanguages, true},
		{"Languages:", types.SectionLanguages, true},
		{"EXTRA-CURRICULAR ACTIVITIES", types.SectionExtracurricular, true},
		{"PROFILE", types.SectionSummary, true},
		{"REFERENCES", types.SectionCertifications, true},
		{"experience in risk", "", false},
		{"Project Management Experience Overview", "", false},
		{"Marketing Manager, Skills Development Scotland", "", false},
		{"• Skills", "", false},
		{"Gained experience across the full trade lifecycle in a busy team", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			kind, ok := s.HeaderKind(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestSegmenter_Segment(t *testing.T) {
	s := NewSegmenter(heuristics.Default())

	lines := []string{
		"Jane Doe",                  // 0
		"London",                    // 1
		"WORK EXPERIENCE",           // 2
		"Analyst, Example Partners", // 3
		"• Built models",            // 4
		"EDUCATION",                 // 5
		"BSc Economics, Leeds",      // 6
		"COMPUTER SKILLS",           // 7
		"LANGUAGES",                 // 8
		"English, French",           // 9
	}

	got := s.Segment(lines)
	require.Len(t, got, 4)

	assert.Equal(t, types.Section{Kind: types.SectionExperience, StartLine: 3, EndLine: 4}, got[0])
	assert.Equal(t, types.Section{Kind: types.SectionEducation, StartLine: 6, EndLine: 6}, got[1])
	assert.Equal(t, types.Section{Kind: types.SectionSkills, StartLine: 8, EndLine: 7}, got[2])
	assert.True(t, got[2].IsEmpty())
	assert.Equal(t, types.Section{Kind: types.SectionLanguages, StartLine: 9, EndLine: 9}, got[3])

	assert.Equal(t, []string{"Analyst, Example Partners", "• Built models"}, got[0].Lines(lines))
}

func TestSegmenter_SectionsDoNotOverlap(t *testing.T) {
	s := NewSegmenter(heuristics.Default())

	lines := []string{
		"PROFILE", "Analyst", "SKILLS", "Excel", "VBA", "EXPERIENCE", "EDUCATION", "HOBBIES", "Chess",
	}

	got := s.Segment(lines)
	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i].StartLine, got[i-1].EndLine)
	}
	assert.Equal(t, len(lines)-1, got[len(got)-1].EndLine)
}

func TestSegmenter_NoHeaders(t *testing.T) {
	s := NewSegmenter(heuristics.Default())

	got := s.Segment([]string{"Jane Doe", "Analyst at Example Partners 2019 - 2021"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
