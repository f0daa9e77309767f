// Package geo resolves map viewports into a center point, bounding box and
// approximate area. Everything here is pure and safe for concurrent use.
package geo

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"globe_backend/platform/apperr"

	"github.com/paulmach/orb"
)

// KmPerDegree is the flat-Earth length of one degree of latitude.
const KmPerDegree = 111.0

// Query parameter names accepted by ParseViewport.
const (
	ParamLat = "lat"
	ParamLon = "lon"

	ParamTopLeftLat     = "top_left_lat"
	ParamTopLeftLon     = "top_left_lon"
	ParamTopRightLat    = "top_right_lat"
	ParamTopRightLon    = "top_right_lon"
	ParamBottomLeftLat  = "bottom_left_lat"
	ParamBottomLeftLon  = "bottom_left_lon"
	ParamBottomRightLat = "bottom_right_lat"
	ParamBottomRightLon = "bottom_right_lon"
)

// cornerParams lists the corner fields as (lat, lon) pairs in the order
// top-left, top-right, bottom-left, bottom-right.
var cornerParams = [4][2]string{
	{ParamTopLeftLat, ParamTopLeftLon},
	{ParamTopRightLat, ParamTopRightLon},
	{ParamBottomLeftLat, ParamBottomLeftLon},
	{ParamBottomRightLat, ParamBottomRightLon},
}

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinate) point() orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

// BoundingBox is an axis-aligned box in degrees.
type BoundingBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Viewport is either a single point or four corners of the visible map.
// Corners are treated as independent samples; they need not form a proper
// quadrilateral.
type Viewport struct {
	// Corners holds top-left, top-right, bottom-left, bottom-right. Empty
	// for a single-point viewport.
	Corners []Coordinate
	// Point is set for a single-point viewport.
	Point *Coordinate
}

// IsPoint reports whether the viewport is a degenerate single point.
func (v Viewport) IsPoint() bool {
	return len(v.Corners) == 0
}

// Resolution is the derived geometry of a viewport.
type Resolution struct {
	Center Coordinate   `json:"center"`
	Bounds *BoundingBox `json:"bounding_box"`
	// AreaKm2 is nil for single-point viewports.
	AreaKm2 *float64 `json:"area_km2"`
}

// ParseViewport reads a viewport from query values. All eight corner fields
// take precedence over lat/lon; a value counts as present when non-empty.
func ParseViewport(values url.Values) (Viewport, error) {
	if hasAll(values, cornerFieldNames()...) {
		corners := make([]Coordinate, 0, len(cornerParams))
		for _, pair := range cornerParams {
			c, err := parseCoordinate(values, pair[0], pair[1])
			if err != nil {
				return Viewport{}, err
			}
			corners = append(corners, c)
		}
		return Viewport{Corners: corners}, nil
	}

	if hasAll(values, ParamLat, ParamLon) {
		c, err := parseCoordinate(values, ParamLat, ParamLon)
		if err != nil {
			return Viewport{}, err
		}
		return Viewport{Point: &c}, nil
	}

	return Viewport{}, apperr.MissingParameter("missing coordinates: provide lat and lon, or all eight viewport corner parameters").
		WithDetails(map[string]interface{}{
			"single":  []string{ParamLat, ParamLon},
			"corners": cornerFieldNames(),
		})
}

// Resolve computes the center, bounding box and area of the viewport.
func (v Viewport) Resolve() Resolution {
	if v.IsPoint() {
		var center Coordinate
		if v.Point != nil {
			center = *v.Point
		}
		return Resolution{Center: center}
	}

	center := Mean(v.Corners)
	bounds := Bounds(v.Corners)
	area := AreaKm2(bounds, center.Lat)
	return Resolution{Center: center, Bounds: &bounds, AreaKm2: &area}
}

// Mean returns the arithmetic mean of the latitudes and of the longitudes.
// It is not a geodesic centroid.
func Mean(coords []Coordinate) Coordinate {
	if len(coords) == 0 {
		return Coordinate{}
	}
	var sumLat, sumLon float64
	for _, c := range coords {
		sumLat += c.Lat
		sumLon += c.Lon
	}
	n := float64(len(coords))
	return Coordinate{Lat: sumLat / n, Lon: sumLon / n}
}

// Bounds returns the min/max box over coords.
func Bounds(coords []Coordinate) BoundingBox {
	if len(coords) == 0 {
		return BoundingBox{}
	}
	mp := make(orb.MultiPoint, 0, len(coords))
	for _, c := range coords {
		mp = append(mp, c.point())
	}
	b := mp.Bound()
	return BoundingBox{
		North: b.Top(),
		South: b.Bottom(),
		East:  b.Right(),
		West:  b.Left(),
	}
}

// AreaKm2 estimates the area of b with a planar approximation: one degree is
// KmPerDegree km of latitude, and longitude is scaled by |cos(centerLat)|.
// Only meaningful for small boxes; there is no date-line or pole handling.
func AreaKm2(b BoundingBox, centerLat float64) float64 {
	latKm := (b.North - b.South) * KmPerDegree
	lonKm := (b.East - b.West) * KmPerDegree * math.Abs(math.Cos(centerLat*math.Pi/180))
	return latKm * lonKm
}

func cornerFieldNames() []string {
	names := make([]string, 0, 2*len(cornerParams))
	for _, pair := range cornerParams {
		names = append(names, pair[0], pair[1])
	}
	return names
}

func hasAll(values url.Values, keys ...string) bool {
	for _, key := range keys {
		if strings.TrimSpace(values.Get(key)) == "" {
			return false
		}
	}
	return true
}

func parseCoordinate(values url.Values, latKey, lonKey string) (Coordinate, error) {
	lat, err := parseDegrees(values.Get(latKey), latKey, 90)
	if err != nil {
		return Coordinate{}, err
	}
	lon, err := parseDegrees(values.Get(lonKey), lonKey, 180)
	if err != nil {
		return Coordinate{}, err
	}
	return Coordinate{Lat: lat, Lon: lon}, nil
}

func parseDegrees(raw, field string, limit float64) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, apperr.InvalidCoordinate(fmt.Sprintf("invalid coordinate value for %s: %q", field, raw)).
			WithDetails(map[string]string{"field": field, "value": raw})
	}
	if value < -limit || value > limit {
		return 0, apperr.InvalidCoordinate(fmt.Sprintf("%s out of range [-%g, %g]: %q", field, limit, limit, raw)).
			WithDetails(map[string]string{"field": field, "value": raw})
	}
	return value, nil
}
