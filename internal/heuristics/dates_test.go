package heuristics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindDateRange(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"Analyst, Example Partners, London, 2019–2021", "2019–2021"},
		{"Jan 2019 - Present", "Jan 2019 - Present"},
		{"September 2017 – June 2019", "September 2017 – June 2019"},
		{"03/2018 to 06/2020", "03/2018 to 06/2020"},
		{"2015 - current", "2015 - current"},
		{"Marketing 2019 - 2021", "2019 - 2021"},
		{"no dates here", ""},
		{"phone 0207 123 4567", ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, _, _, ok := FindDateRange(tt.line)
			assert.Equal(t, tt.want != "", ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindYear(t *testing.T) {
	year, start, end, ok := FindYear("BSc Economics 2018")
	assert.True(t, ok)
	assert.Equal(t, "2018", year)
	assert.Equal(t, 14, start)
	assert.Equal(t, 18, end)

	assert.False(t, HasYear("Class of 18"))
	assert.False(t, HasYear("ID 120185"))
}

func TestIsMonthWord(t *testing.T) {
	assert.True(t, IsMonthWord("Jan."))
	assert.True(t, IsMonthWord("september"))
	assert.False(t, IsMonthWord("Marketing"))
}
