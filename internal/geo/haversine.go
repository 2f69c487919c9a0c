// Package geo provides great-circle distance math shared by every spatial
// filter in the service.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371

// Point is a WGS-84 latitude/longitude pair.
type Point struct {
	Lat float64
	Lng float64
}

// HaversineKm returns the great-circle distance between a and b in kilometers.
func HaversineKm(a, b Point) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Pow(math.Sin(dLng/2), 2)

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}
