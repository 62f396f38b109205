package parsing

import (
	"errors"
	"testing"

	"github.com/jonathan/cv-formatter/internal/entries"
	"github.com/jonathan/cv-formatter/internal/heuristics"
	"github.com/jonathan/cv-formatter/internal/normalize"
	"github.com/jonathan/cv-formatter/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLines() []string {
	return []string{
		"H",
		"O",
		"PE GILBERT",
		"12 Some Street, London",
		"hope.gilbert@example.com | +44 7700 900123",
		"PROFILE",
		"Analyst with five years of experience in risk.",
		"WORK EXPERIENCE",
		"Analyst, Example Partners, London, 2019 – 2021",
		"• Built pricing models",
		"• Led a team of three",
		"Junior Analyst | Example Capital LLP | 2017 - 2019",
		"• Supported the desk",
		"EDUCATION",
		"BSc Economics, University of Leeds, 2014 - 2017",
		"SKILLS",
		"Excel, VBA, python",
		"Languages: English, French",
		"INTERESTS",
		"Chess, Running",
	}
}

func TestParser_Parse(t *testing.T) {
	p := New(heuristics.Default(), DefaultOptions())

	got, err := p.Parse(types.NormalizedText{Lines: sampleLines()}, nil)
	require.NoError(t, err)

	assert.Equal(t, "HOPE GILBERT", got.NameText())
	assert.Equal(t, types.ContactInfo{
		Email:    "hope.gilbert@example.com",
		Phone:    "+44 7700 900123",
		Location: "London",
	}, got.Contact)
	assert.Equal(t, "Analyst with five years of experience in risk.", got.Summary)

	require.Len(t, got.Experience, 2)
	assert.Equal(t, types.ExperienceEntry{
		Title:        "Analyst",
		Organization: "Example Partners",
		Location:     "London",
		DateRange:    "2019 – 2021",
		Details:      []string{"Built pricing models", "Led a team of three"},
	}, got.Experience[0])
	assert.Equal(t, "Example Capital LLP", got.Experience[1].Organization)

	require.Len(t, got.Education, 1)
	assert.Equal(t, "BSc Economics", got.Education[0].Degree)
	assert.Equal(t, "University of Leeds", got.Education[0].Institution)

	assert.Equal(t, []string{"Excel", "VBA", "Python"}, got.Skills.TechnicalSkills)
	assert.Equal(t, []string{"English", "French"}, got.Skills.Languages)
	assert.Equal(t, []string{"Chess", "Running"}, got.Skills.Extracurricular)

	assert.Equal(t, []types.SectionKind{
		types.SectionExperience,
		types.SectionEducation,
		types.SectionSkills,
		types.SectionExtracurricular,
	}, got.SectionsFound())
}

func TestParser_ParseGluedHeaders(t *testing.T) {
	raw := "Jane Doe\njane@example.com\n" +
		"WORK EXPERIENCEAnalyst, Example Partners, London, 2019–2021• Built models• Led team\n" +
		"EDUCATIONBSc Economics, University of Leeds, 2014–2017\n" +
		"SKILLSExcel, VBA, Python"
	tables := heuristics.Default()
	text := normalize.New(tables, normalize.DefaultOptions()).Normalize(raw)

	got, err := New(tables, DefaultOptions()).Parse(text, nil)
	require.NoError(t, err)

	require.Len(t, got.Experience, 1)
	assert.Equal(t, "Analyst", got.Experience[0].Title)
	assert.Equal(t, "Example Partners", got.Experience[0].Organization)
	assert.Equal(t, []string{"Built models", "Led team"}, got.Experience[0].Details)

	require.Len(t, got.Education, 1)
	assert.Equal(t, "BSc Economics", got.Education[0].Degree)
	assert.Equal(t, "University of Leeds", got.Education[0].Institution)

	assert.Equal(t, []string{"Excel", "VBA", "Python"}, got.Skills.TechnicalSkills)
	assert.Equal(t, []types.SectionKind{
		types.SectionExperience,
		types.SectionEducation,
		types.SectionSkills,
	}, got.SectionsFound())
}

func TestParser_ParseRecoversEntriesWithoutHeaders(t *testing.T) {
	lines := []string{
		"Jane Doe",
		"London",
		"Analyst at Example Partners 2019 - 2021",
		"• Built models",
		"BSc Economics, University of Leeds 2015 - 2018",
	}

	got, err := New(heuristics.Default(), DefaultOptions()).Parse(types.NormalizedText{Lines: lines}, nil)
	require.NoError(t, err)

	require.Len(t, got.Experience, 1)
	assert.Equal(t, "Analyst", got.Experience[0].Title)
	assert.Equal(t, []string{"Built models"}, got.Experience[0].Details)

	require.Len(t, got.Education, 1)
	assert.Equal(t, "BSc Economics", got.Education[0].Degree)

	assert.Empty(t, got.SectionsFound())
}

func TestParser_ParseWithoutFallbackScan(t *testing.T) {
	lines := []string{"Jane Doe", "Analyst at Example Partners 2019 - 2021", "• Built models"}
	opts := Options{EntryMode: entries.ModeStrict}

	got, err := New(heuristics.Default(), opts).Parse(types.NormalizedText{Lines: lines}, nil)
	require.NoError(t, err)
	assert.NotNil(t, got.Experience)
	assert.Empty(t, got.Experience)
}

func TestParser_ParseEntriesAreKeepable(t *testing.T) {
	lines := append(sampleLines(), "Position, Company")

	got, err := New(heuristics.Default(), DefaultOptions()).Parse(types.NormalizedText{Lines: lines}, nil)
	require.NoError(t, err)

	for _, e := range got.Experience {
		assert.True(t, e.Key().Keepable(), "entry %+v", e)
	}
	for _, e := range got.Education {
		assert.True(t, e.Key().Keepable(), "entry %+v", e)
	}
}

func TestParser_ParseEmpty(t *testing.T) {
	_, err := New(heuristics.Default(), DefaultOptions()).Parse(types.NormalizedText{}, nil)
	require.Error(t, err)

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
	assert.Contains(t, err.Error(), "no text")
}

func TestOutsideOtherSections(t *testing.T) {
	lines := []string{"a", "EDUCATION", "b", "WORK EXPERIENCE", "c", "SKILLS", "d"}
	found := []types.Section{
		{Kind: types.SectionEducation, StartLine: 2, EndLine: 2},
		{Kind: types.SectionExperience, StartLine: 4, EndLine: 4},
		{Kind: types.SectionSkills, StartLine: 6, EndLine: 6},
	}

	got := outsideOtherSections(lines, found, types.SectionExperience)
	assert.Equal(t, [][]string{{"a"}, {"c"}}, got)
}
