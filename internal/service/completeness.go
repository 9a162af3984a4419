package service

import "reflect"

const (
	profileSeedSuffix  = "profile"
	profileFallbackMin = 65
	profileFallbackMax = 98
)

type profileField struct {
	name   string
	lookup func(p *ProfileSnapshot) any
}

// profileChecklist is evaluated in order; missing field names are reported in
// the same order.
var profileChecklist = []profileField{
	{"Business Name", func(p *ProfileSnapshot) any { return p.Title }},
	{"Phone Number", func(p *ProfileSnapshot) any {
		if p.PhoneNumbers == nil {
			return nil
		}
		return p.PhoneNumbers.PrimaryPhone
	}},
	{"Address", func(p *ProfileSnapshot) any { return p.StorefrontAddress }},
	{"Website", func(p *ProfileSnapshot) any { return p.WebsiteURI }},
	{"Categories", func(p *ProfileSnapshot) any { return p.Categories }},
	{"Description", func(p *ProfileSnapshot) any {
		if p.Profile == nil {
			return nil
		}
		return p.Profile.Description
	}},
	{"Business Hours", func(p *ProfileSnapshot) any { return p.RegularHours }},
	{"Service Area", func(p *ProfileSnapshot) any { return p.ServiceArea }},
	{"Labels", func(p *ProfileSnapshot) any { return p.Labels }},
	{"Ad Extensions", func(p *ProfileSnapshot) any { return p.AdWordsLocationExtensions }},
	{"Language", func(p *ProfileSnapshot) any { return p.LanguageCode }},
	{"Metadata", func(p *ProfileSnapshot) any { return p.Metadata }},
	{"Profile", func(p *ProfileSnapshot) any { return p.Profile }},
	{"Attributes", func(p *ProfileSnapshot) any { return p.Attributes }},
	{"Special Hours", func(p *ProfileSnapshot) any { return p.SpecialHours }},
}

// profileFieldCount is the size of the completeness checklist.
var profileFieldCount = len(profileChecklist)

// AnalyzeProfileCompleteness returns the unrounded completion percentage and
// its details. Without an identifiable profile the fallback generator is used.
func AnalyzeProfileCompleteness(locationID string, profile *ProfileSnapshot) (float64, ProfileCompletionDetails) {
	fallback := FallbackScore(locationID+profileSeedSuffix, profileFallbackMin, profileFallbackMax)
	score := float64(fallback)
	details := ProfileCompletionDetails{
		CompletedFields: roundScore(float64(fallback) / 100 * float64(profileFieldCount)),
		TotalFields:     profileFieldCount,
		MissingFields:   []string{},
	}

	if !profile.hasIdentity() {
		return score, details
	}

	completed := 0
	missing := make([]string, 0, profileFieldCount)
	for _, f := range profileChecklist {
		if isPresent(f.lookup(profile)) {
			completed++
			continue
		}
		missing = append(missing, f.name)
	}

	details.CompletedFields = completed
	details.MissingFields = missing

	// An all-empty profile keeps the fallback score; the details still report
	// what is missing.
	if computed := float64(completed) / float64(profileFieldCount) * 100; computed > 0 {
		score = computed
	}
	return score, details
}

// isPresent holds when v is truthy, not an empty list and not an object
// without keys.
func isPresent(v any) bool {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return false
	}

	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && f == f
	case reflect.Struct:
		return !rv.IsZero()
	}
	return true
}
