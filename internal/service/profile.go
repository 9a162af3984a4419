package service

// ProfileSnapshot is the raw business-profile record as returned by the
// upstream profile source. The engine only reads it.
type ProfileSnapshot struct {
	Name                      string                     `json:"name,omitempty"`
	Title                     string                     `json:"title,omitempty"`
	PhoneNumbers              *PhoneNumbers              `json:"phoneNumbers,omitempty"`
	StorefrontAddress         *PostalAddress             `json:"storefrontAddress,omitempty"`
	WebsiteURI                string                     `json:"websiteUri,omitempty"`
	Categories                *Categories                `json:"categories,omitempty"`
	Profile                   *ProfileBlock              `json:"profile,omitempty"`
	RegularHours              *BusinessHours             `json:"regularHours,omitempty"`
	ServiceArea               *ServiceArea               `json:"serviceArea,omitempty"`
	Labels                    []string                   `json:"labels,omitempty"`
	AdWordsLocationExtensions *AdWordsLocationExtensions `json:"adWordsLocationExtensions,omitempty"`
	LanguageCode              string                     `json:"languageCode,omitempty"`
	Metadata                  *Metadata                  `json:"metadata,omitempty"`
	Attributes                []Attribute                `json:"attributes,omitempty"`
	SpecialHours              *SpecialHours              `json:"specialHours,omitempty"`
	Latlng                    *LatLng                    `json:"latlng,omitempty"`
}

type PhoneNumbers struct {
	PrimaryPhone     string   `json:"primaryPhone,omitempty"`
	AdditionalPhones []string `json:"additionalPhones,omitempty"`
}

type PostalAddress struct {
	RegionCode         string   `json:"regionCode,omitempty"`
	PostalCode         string   `json:"postalCode,omitempty"`
	AdministrativeArea string   `json:"administrativeArea,omitempty"`
	Locality           string   `json:"locality,omitempty"`
	AddressLines       []string `json:"addressLines,omitempty"`
}

type Category struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

type Categories struct {
	PrimaryCategory      *Category  `json:"primaryCategory,omitempty"`
	AdditionalCategories []Category `json:"additionalCategories,omitempty"`
}

type ProfileBlock struct {
	Description string `json:"description,omitempty"`
}

type TimePeriod struct {
	OpenDay   string `json:"openDay,omitempty"`
	OpenTime  string `json:"openTime,omitempty"`
	CloseDay  string `json:"closeDay,omitempty"`
	CloseTime string `json:"closeTime,omitempty"`
}

type BusinessHours struct {
	Periods []TimePeriod `json:"periods,omitempty"`
}

type ServiceArea struct {
	BusinessType string   `json:"businessType,omitempty"`
	RegionCode   string   `json:"regionCode,omitempty"`
	PlaceNames   []string `json:"placeNames,omitempty"`
}

type AdWordsLocationExtensions struct {
	AdPhone string `json:"adPhone,omitempty"`
}

type Metadata struct {
	PlaceID      string `json:"placeId,omitempty"`
	MapsURI      string `json:"mapsUri,omitempty"`
	NewReviewURI string `json:"newReviewUri,omitempty"`
}

type Attribute struct {
	Name   string   `json:"name,omitempty"`
	Values []string `json:"values,omitempty"`
}

type SpecialHourPeriod struct {
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Closed    bool   `json:"closed,omitempty"`
}

type SpecialHours struct {
	SpecialHourPeriods []SpecialHourPeriod `json:"specialHourPeriods,omitempty"`
}

type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// hasIdentity reports whether the snapshot carries enough data to be
// analyzed instead of falling back.
func (p *ProfileSnapshot) hasIdentity() bool {
	return p != nil && (p.Name != "" || p.Title != "")
}

func (p *ProfileSnapshot) description() string {
	if p == nil || p.Profile == nil {
		return ""
	}
	return p.Profile.Description
}
