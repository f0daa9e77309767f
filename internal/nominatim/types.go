package nominatim

import (
	"globe_backend/internal/geo"

	"github.com/samber/lo"
)

// Address holds the structured address components Nominatim returns with
// addressdetails=1. Only the fields this service uses are mapped.
type Address struct {
	City         string `json:"city,omitempty"`
	Town         string `json:"town,omitempty"`
	Village      string `json:"village,omitempty"`
	Hamlet       string `json:"hamlet,omitempty"`
	Municipality string `json:"municipality,omitempty"`
	County       string `json:"county,omitempty"`
	State        string `json:"state,omitempty"`
	Province     string `json:"province,omitempty"`
	Region       string `json:"region,omitempty"`
	Country      string `json:"country,omitempty"`
	CountryCode  string `json:"country_code,omitempty"`
	Postcode     string `json:"postcode,omitempty"`
}

// Locality returns the most specific settlement name available.
func (a Address) Locality() string {
	locality, _ := lo.Coalesce(a.City, a.Town, a.Village, a.Hamlet, a.Municipality)
	return locality
}

// StateOrProvince returns the first-level administrative division.
func (a Address) StateOrProvince() string {
	state, _ := lo.Coalesce(a.State, a.Province, a.Region)
	return state
}

// Place is the result of a reverse lookup.
type Place struct {
	DisplayName string         `json:"display_name"`
	Location    geo.Coordinate `json:"location"`
	Address     Address        `json:"address"`
}

// Candidate is one forward-geocoding match.
type Candidate struct {
	Name        string          `json:"name"`
	Lat         float64         `json:"lat"`
	Lon         float64         `json:"lon"`
	BoundingBox geo.BoundingBox `json:"boundingbox"`
}

// reverseResponse mirrors the relevant parts of the /reverse payload.
type reverseResponse struct {
	DisplayName string  `json:"display_name"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Address     Address `json:"address"`
	Error       string  `json:"error"`
}

// searchResult mirrors one element of the /search payload. Nominatim encodes
// numbers as strings and the bounding box as [south, north, west, east].
type searchResult struct {
	DisplayName string   `json:"display_name"`
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	BoundingBox []string `json:"boundingbox"`
}
