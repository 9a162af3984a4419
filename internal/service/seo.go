package service

import "unicode/utf16"

const (
	seoSeedSuffix  = "seo"
	seoFallbackMin = 55
	seoFallbackMax = 95

	descriptionMinLength = 50
	keywordsMinLength    = 100

	descriptionPoints = 33
	keywordsPoints    = 33
	categoriesPoints  = 34
)

// AnalyzeSEO scores description length and category coverage. Without an
// identifiable profile the fallback generator is used with every flag set.
func AnalyzeSEO(locationID string, profile *ProfileSnapshot) (float64, SEODetails) {
	score := float64(FallbackScore(locationID+seoSeedSuffix, seoFallbackMin, seoFallbackMax))
	details := SEODetails{HasDescription: true, HasKeywords: true, HasCategories: true}

	if !profile.hasIdentity() {
		return score, details
	}

	computed := 0
	details = SEODetails{}

	descLen := utf16Len(profile.description())
	if descLen > descriptionMinLength {
		details.HasDescription = true
		computed += descriptionPoints
	}
	if descLen > keywordsMinLength {
		details.HasKeywords = true
		computed += keywordsPoints
	}
	if c := profile.Categories; c != nil && (len(c.AdditionalCategories) > 0 || c.PrimaryCategory != nil) {
		details.HasCategories = true
		computed += categoriesPoints
	}

	// Same policy as profile completeness: zero keeps the fallback.
	if computed > 0 {
		score = float64(computed)
	}
	return score, details
}

// utf16Len counts UTF-16 code units, so characters outside the BMP count twice.
func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}
