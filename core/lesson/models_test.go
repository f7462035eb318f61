package lesson

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSectionType(t *testing.T) {
	tests := map[string]SectionType{
		"warmup":      SectionWarmup,
		" Technique ": SectionTechnique,
		"SOCIAL":      SectionSocial,
		"cooldown":    SectionPatterns,
		"":            SectionPatterns,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseSectionType(in), in)
	}
}

func TestTotalEstimatedMinutes(t *testing.T) {
	assert.Equal(t, 0, TotalEstimatedMinutes(nil))
	assert.Equal(t, 25, TotalEstimatedMinutes([]Section{
		{Type: SectionWarmup, Items: []string{"a", "b"}},
		{Type: SectionPatterns, Items: []string{"Sugar Push", "Left Side Pass", "Whip"}},
		{Type: SectionSocial},
	}))
}

func TestNormalizeSections(t *testing.T) {
	got := NormalizeSections([]Section{
		{ID: "keep-me", Type: "warmup", Items: []string{"a"}},
		{Type: "mystery"},
	})
	if assert.Len(t, got, 2) {
		assert.Equal(t, "keep-me", got[0].ID)
		assert.Equal(t, SectionWarmup, got[0].Type)

		assert.NotEmpty(t, got[1].ID)
		assert.Equal(t, SectionPatterns, got[1].Type)
		assert.Equal(t, []string{}, got[1].Items)
	}
	assert.Equal(t, []Section{}, NormalizeSections(nil))
}
