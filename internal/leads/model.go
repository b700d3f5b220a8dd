package leads

import (
	"strings"
)

// SourceOutscraper tags leads produced by the search backend.
const SourceOutscraper = "outscraper"

// Lead is the canonical record rendered in the pipeline.
type Lead struct {
	ID                       string   `json:"id"`
	Name                     string   `json:"name"`
	Phone                    *string  `json:"phone"`
	Email                    *string  `json:"email"`
	Website                  *string  `json:"website"`
	Rating                   *string  `json:"rating"`
	City                     string   `json:"city"`
	State                    string   `json:"state"`
	Address                  string   `json:"address"`
	Category                 string   `json:"category"`
	Stage                    Stage    `json:"stage"`
	CreatedAt                string   `json:"createdAt"`
	Source                   string   `json:"source"`
	EquipmentRecommendations []string `json:"equipmentRecommendations"`
}

// SearchContext carries the submitted search values used as normalization
// fallbacks.
type SearchContext struct {
	Industry string `json:"industry"`
	City     string `json:"city"`
	State    string `json:"state"`
}

// Location renders the context as "City, ST".
func (c SearchContext) Location() string {
	return FormatLocation(c.City, c.State)
}

// ParseLocation splits a "City, ST" search location on its last comma. A value
// without a comma is treated as a bare city.
func ParseLocation(location string) (city, state string) {
	location = strings.TrimSpace(location)
	idx := strings.LastIndex(location, ",")
	if idx < 0 {
		return location, ""
	}
	return strings.TrimSpace(location[:idx]), strings.TrimSpace(location[idx+1:])
}

// FormatLocation joins city and state the way the search webhook expects.
func FormatLocation(city, state string) string {
	city = strings.TrimSpace(city)
	state = strings.TrimSpace(state)
	switch {
	case city == "":
		return state
	case state == "":
		return city
	default:
		return city + ", " + state
	}
}

// SearchRequest is the wizard submission.
type SearchRequest struct {
	Industry  string   `json:"industry" validate:"required,max=120"`
	City      string   `json:"city" validate:"required,max=120"`
	State     string   `json:"state" validate:"required,usstate"`
	LeadCount int      `json:"leadCount" validate:"omitempty,min=1,max=1000"`
	Radius    int      `json:"radius" validate:"omitempty,min=1,max=500"`
	Keywords  []string `json:"keywords,omitempty" validate:"omitempty,max=10,dive,max=60"`
}

const (
	// DefaultLeadCount is used when the wizard omits a lead count.
	DefaultLeadCount = 50
	// DefaultRadiusMiles is used when the wizard omits a radius.
	DefaultRadiusMiles = 25
)

// WithDefaults returns a copy with defaults applied and text fields trimmed.
func (r SearchRequest) WithDefaults() SearchRequest {
	r.Industry = strings.TrimSpace(r.Industry)
	r.City = strings.TrimSpace(r.City)
	r.State = strings.ToUpper(strings.TrimSpace(r.State))
	if r.LeadCount == 0 {
		r.LeadCount = DefaultLeadCount
	}
	if r.Radius == 0 {
		r.Radius = DefaultRadiusMiles
	}
	keywords := make([]string, 0, len(r.Keywords))
	for _, kw := range r.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	r.Keywords = keywords
	return r
}

// Context returns the normalization fallbacks for this request.
func (r SearchRequest) Context() SearchContext {
	return SearchContext{Industry: r.Industry, City: r.City, State: r.State}
}
