package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeSEO(t *testing.T) {
	t.Run("no profile falls back with all flags", func(t *testing.T) {
		score, details := AnalyzeSEO("loc-1", nil)
		assert.Equal(t, 89.0, score)
		assert.Equal(t, SEODetails{HasDescription: true, HasKeywords: true, HasCategories: true}, details)
	})

	t.Run("long description and categories", func(t *testing.T) {
		score, details := AnalyzeSEO("loc-1", fullProfile())
		assert.Equal(t, 100.0, score)
		assert.Equal(t, SEODetails{HasDescription: true, HasKeywords: true, HasCategories: true}, details)
	})

	t.Run("medium description only", func(t *testing.T) {
		p := &ProfileSnapshot{Title: "Joe's", Profile: &ProfileBlock{Description: strings.Repeat("a", 51)}}
		score, details := AnalyzeSEO("loc-1", p)
		assert.Equal(t, 33.0, score)
		assert.Equal(t, SEODetails{HasDescription: true}, details)
	})

	t.Run("length boundaries are exclusive", func(t *testing.T) {
		p := &ProfileSnapshot{Title: "Joe's", Profile: &ProfileBlock{Description: strings.Repeat("a", 100)}}
		score, details := AnalyzeSEO("loc-1", p)
		assert.Equal(t, 33.0, score)
		assert.False(t, details.HasKeywords)

		p.Profile.Description = strings.Repeat("a", 101)
		score, details = AnalyzeSEO("loc-1", p)
		assert.Equal(t, 66.0, score)
		assert.True(t, details.HasKeywords)
	})

	t.Run("length counts UTF-16 code units", func(t *testing.T) {
		// 26 emoji are 26 runes but 52 code units.
		p := &ProfileSnapshot{Title: "Joe's", Profile: &ProfileBlock{Description: strings.Repeat("\U0001F355", 26)}}
		score, details := AnalyzeSEO("loc-1", p)
		assert.Equal(t, 33.0, score)
		assert.True(t, details.HasDescription)
		assert.False(t, details.HasKeywords)

		p.Profile.Description = strings.Repeat("\U0001F355", 51)
		_, details = AnalyzeSEO("loc-1", p)
		assert.True(t, details.HasKeywords)
	})

	t.Run("additional categories count", func(t *testing.T) {
		p := &ProfileSnapshot{Title: "Joe's", Categories: &Categories{AdditionalCategories: []Category{{DisplayName: "Bar"}}}}
		score, details := AnalyzeSEO("loc-1", p)
		assert.Equal(t, 34.0, score)
		assert.True(t, details.HasCategories)
	})

	t.Run("empty categories object does not count", func(t *testing.T) {
		p := &ProfileSnapshot{Title: "Joe's", Categories: &Categories{}, Profile: &ProfileBlock{Description: "short"}}
		score, details := AnalyzeSEO("loc-1", p)
		assert.Equal(t, 89.0, score, "zero keeps the fallback")
		assert.Equal(t, SEODetails{}, details)
	})
}
