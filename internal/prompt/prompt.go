// Package prompt turns a LocationContext into the text sent to the
// generation model.
package prompt

import (
	"fmt"
	"math"
	"strings"

	"globe_backend/internal/geo"

	"github.com/samber/lo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Output bounds requested from the model.
const (
	MaxBullets        = 5
	MaxWordsPerBullet = 25
	MaxTotalWords     = 150
)

type line struct {
	label string
	value string
}

// Build renders the concise, bounded-length history prompt for lc. Address
// components are only mentioned when present.
func Build(lc geo.LocationContext) string {
	printer := message.NewPrinter(language.English)

	name := strings.TrimSpace(lc.DisplayName)
	if name == "" {
		name = "the area around " + FormatCoordinate(lc.Center)
	}

	lines := []line{
		{"Coordinates", FormatCoordinate(lc.Center)},
	}
	if lc.BoundingBox != nil {
		b := lc.BoundingBox
		lines = append(lines, line{"Visible area", fmt.Sprintf("from %s to %s latitude, %s to %s longitude",
			formatLat(b.South), formatLat(b.North), formatLon(b.West), formatLon(b.East))})
	}
	if lc.AreaKm2 != nil {
		lines = append(lines, line{"Approximate size", printer.Sprintf("%d km²", int64(math.Round(*lc.AreaKm2)))})
	}
	lines = append(lines,
		line{"City/town", lc.Locality},
		line{"State/province", lc.State},
		line{"County", lc.County},
		line{"Country", lc.Country},
	)

	present := lo.Filter(lines, func(l line, _ int) bool {
		return strings.TrimSpace(l.value) != ""
	})
	details := lo.Map(present, func(l line, _ int) string {
		return fmt.Sprintf("- %s: %s", l.label, strings.TrimSpace(l.value))
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "Summarize the history of %s.\n\n", name)
	sb.WriteString("Location details:\n")
	sb.WriteString(strings.Join(details, "\n"))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Answer with at most %d bullet points of no more than %d words each. ", MaxBullets, MaxWordsPerBullet)
	sb.WriteString("Cover the most significant historical events and figures tied to this place. ")
	fmt.Fprintf(&sb, "Keep the whole answer under %d words with no introduction or conclusion.", MaxTotalWords)
	return sb.String()
}

// FormatCoordinate renders c as "48.8566° N, 2.3522° E".
func FormatCoordinate(c geo.Coordinate) string {
	return formatLat(c.Lat) + ", " + formatLon(c.Lon)
}

func formatLat(v float64) string {
	return formatDegrees(v, "N", "S")
}

func formatLon(v float64) string {
	return formatDegrees(v, "E", "W")
}

func formatDegrees(v float64, positive, negative string) string {
	hemisphere := positive
	if v < 0 {
		hemisphere = negative
	}
	return fmt.Sprintf("%.4f° %s", math.Abs(v), hemisphere)
}
