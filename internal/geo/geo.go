// Package geo provides the distance geometry used across the detection
// pipeline: haversine distances, coordinate snapping, and centroids.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean Earth radius used for haversine distances.
const EarthRadiusMeters = 6371000.0

// DefaultPrecision is the decimal-degree rounding used for deduplication.
// Three decimals is roughly a 110 m grid at the equator.
const DefaultPrecision = 3

// DistanceMeters returns the great-circle distance between two points in
// meters. NaN inputs propagate as NaN; callers filter invalid coordinates
// before use.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// RoundCoordinate rounds a coordinate to a fixed number of decimal degrees so
// near-identical points collapse onto the same grid cell.
func RoundCoordinate(value float64, precision int) float64 {
	scale := math.Pow(10, float64(precision))
	return math.Round(value*scale) / scale
}

// GridKey builds a dictionary key from rounded coordinates at DefaultPrecision.
func GridKey(lat, lng float64) string {
	return fmt.Sprintf("%.3f,%.3f",
		RoundCoordinate(lat, DefaultPrecision),
		RoundCoordinate(lng, DefaultPrecision),
	)
}

// IsFinite reports whether both coordinate components are usable numbers.
func IsFinite(lat, lng float64) bool {
	return !math.IsNaN(lat) && !math.IsInf(lat, 0) &&
		!math.IsNaN(lng) && !math.IsInf(lng, 0)
}

// Centroid returns the arithmetic mean of a set of lat/lng pairs. The zero
// value is returned for an empty input.
func Centroid(lats, lngs []float64) (lat, lng float64) {
	if len(lats) == 0 || len(lats) != len(lngs) {
		return 0, 0
	}
	for i := range lats {
		lat += lats[i]
		lng += lngs[i]
	}
	n := float64(len(lats))
	return lat / n, lng / n
}
