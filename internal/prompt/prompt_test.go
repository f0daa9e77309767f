package prompt

import (
	"strings"
	"testing"

	"globe_backend/internal/geo"
)

func TestBuild_SinglePoint(t *testing.T) {
	lc := geo.LocationContext{
		Center:      geo.Coordinate{Lat: 48.8566, Lon: 2.3522},
		DisplayName: "Paris, Ile-de-France, France",
		Locality:    "Paris",
		Country:     "France",
	}

	got := Build(lc)

	for _, want := range []string{
		"Paris, Ile-de-France, France",
		"48.8566° N, 2.3522° E",
		"- City/town: Paris",
		"- Country: France",
		"at most 5 bullet points",
		"no more than 25 words",
		"under 150 words",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected prompt to contain %q, got:\n%s", want, got)
		}
	}

	for _, absent := range []string{"Visible area", "Approximate size", "State/province", "County"} {
		if strings.Contains(got, absent) {
			t.Fatalf("expected prompt to omit %q, got:\n%s", absent, got)
		}
	}
}

func TestBuild_ViewportIncludesBoundsAndArea(t *testing.T) {
	area := 1227411.4
	lc := geo.LocationContext{
		Center:      geo.Coordinate{Lat: 5, Lon: 15},
		BoundingBox: &geo.BoundingBox{North: 10, South: 0, East: 20, West: 10},
		AreaKm2:     &area,
		DisplayName: "Central African Republic",
		State:       "Ouham",
		County:      "Bossangoa",
	}

	got := Build(lc)

	if !strings.Contains(got, "1,227,411 km²") {
		t.Fatalf("expected grouped area, got:\n%s", got)
	}
	if !strings.Contains(got, "from 0.0000° N to 10.0000° N latitude, 10.0000° E to 20.0000° E longitude") {
		t.Fatalf("expected bounding box line, got:\n%s", got)
	}
	if !strings.Contains(got, "- State/province: Ouham") || !strings.Contains(got, "- County: Bossangoa") {
		t.Fatalf("expected address components, got:\n%s", got)
	}
	if strings.Contains(got, "City/town") {
		t.Fatalf("expected empty locality to be omitted, got:\n%s", got)
	}
}

func TestBuild_FallsBackToCoordinatesWithoutName(t *testing.T) {
	got := Build(geo.LocationContext{Center: geo.Coordinate{Lat: -33.8688, Lon: -70.5}})

	if !strings.Contains(got, "history of the area around 33.8688° S, 70.5000° W") {
		t.Fatalf("unexpected prompt:\n%s", got)
	}
}

func TestBuild_IsDeterministic(t *testing.T) {
	lc := geo.LocationContext{Center: geo.Coordinate{Lat: 1, Lon: 2}, DisplayName: "Somewhere"}
	if Build(lc) != Build(lc) {
		t.Fatal("expected identical prompts for identical input")
	}
}

func TestFormatCoordinate(t *testing.T) {
	tests := []struct {
		in   geo.Coordinate
		want string
	}{
		{geo.Coordinate{Lat: 0, Lon: 0}, "0.0000° N, 0.0000° E"},
		{geo.Coordinate{Lat: -90, Lon: 180}, "90.0000° S, 180.0000° E"},
		{geo.Coordinate{Lat: 51.5074, Lon: -0.1278}, "51.5074° N, 0.1278° W"},
	}

	for _, tt := range tests {
		if got := FormatCoordinate(tt.in); got != tt.want {
			t.Fatalf("FormatCoordinate(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
