package query

import (
	"math"
	"strings"

	"github.com/biomcp/biomcp/internal/domain"
)

const earthRadiusMiles = 3958.7613

// HaversineMiles returns the great-circle distance in miles between two
// points given in decimal degrees.
func HaversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Pow(math.Sin(dLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMiles * c
}

// ValidateGeo enforces that lat, lon, and distance are provided as a complete
// triple or not at all.
func ValidateGeo(lat, lon, distance *float64) error {
	hasLat, hasLon, hasDistance := lat != nil, lon != nil, distance != nil

	if hasDistance && (!hasLat || !hasLon) {
		return domain.NewInvalidArgument("--distance requires both --lat and --lon")
	}
	if (hasLat || hasLon) && !hasDistance {
		return domain.NewInvalidArgument("--lat/--lon requires --distance")
	}
	if hasLat != hasLon {
		return domain.NewInvalidArgument("--lat and --lon must be provided together")
	}
	return nil
}

// NormalizeFacilityText lowercases and squashes whitespace for substring
// matching against location facility names. Empty input returns "".
func NormalizeFacilityText(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(value), " "))
}
