// README: Pure geographic helpers (great-circle distance, travel estimate).
package zoning

import (
	"math"

	"saguaro/internal/types"
)

const earthRadiusMiles = 3958.7613

// HaversineMiles returns the great-circle distance in miles between two
// points specified in decimal degrees.
func HaversineMiles(a, b types.LatLng) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(h))
}

// TravelMinutes estimates drive time from base at a flat metro average speed.
func TravelMinutes(base, dest types.LatLng, avgMPH float64) int {
	miles := HaversineMiles(base, dest)
	return int(math.Round(miles / avgMPH * 60))
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
