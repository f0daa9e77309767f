package geo

// LocationContext is the per-request bundle describing a resolved viewport
// and its reverse-geocoded address. It is never persisted.
type LocationContext struct {
	Center      Coordinate   `json:"center"`
	BoundingBox *BoundingBox `json:"bounding_box"`
	AreaKm2     *float64     `json:"area_km2"`
	DisplayName string       `json:"display_name"`
	Locality    string       `json:"locality,omitempty"`
	State       string       `json:"state,omitempty"`
	Country     string       `json:"country,omitempty"`
	County      string       `json:"county,omitempty"`
}

// NewLocationContext starts a context from a resolved viewport. Address
// fields are filled in by the caller after reverse geocoding.
func NewLocationContext(res Resolution) LocationContext {
	return LocationContext{
		Center:      res.Center,
		BoundingBox: res.Bounds,
		AreaKm2:     res.AreaKm2,
	}
}
