// Package geo implements great-circle distance math and nearest-location
// ranking over anything that carries a coordinate.
//
// Distances use the haversine formula:
//
//	a = sin²(Δφ/2) + cos φ1 ⋅ cos φ2 ⋅ sin²(Δλ/2)
//	c = 2 ⋅ atan2(√a, √(1−a))
//	d = R ⋅ c
//
// on a sphere of radius 6371 km, with results rounded to 2 decimal places.
package geo

import (
	"math"

	"github.com/singularity-sky/singularity/internal/domain"
)

// EarthRadiusKm is the mean Earth radius used for haversine distances.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance in kilometers between two
// lat/lon points (degrees), rounded to 2 decimal places. Non-finite inputs
// yield domain.ErrInvalidCoordinate; range validation is the caller's job.
func DistanceKm(lat1, lon1, lat2, lon2 float64) (float64, error) {
	for _, v := range [...]float64{lat1, lon1, lat2, lon2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, domain.ErrInvalidCoordinate
		}
	}

	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	φ1 := toRad(lat1)
	φ2 := toRad(lat2)
	dφ := toRad(lat2 - lat1)
	dλ := toRad(lon2 - lon1)

	sinDφ := math.Sin(dφ / 2)
	sinDλ := math.Sin(dλ / 2)

	a := sinDφ*sinDφ + math.Cos(φ1)*math.Cos(φ2)*sinDλ*sinDλ
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return round2(EarthRadiusKm * c), nil
}

// WithinRadius reports whether two points lie within radiusKm of each other.
func WithinRadius(lat1, lon1, lat2, lon2, radiusKm float64) (bool, error) {
	d, err := DistanceKm(lat1, lon1, lat2, lon2)
	if err != nil {
		return false, err
	}
	return d <= radiusKm, nil
}

// round2 rounds to 2 decimal places, matching the display precision used
// throughout the API surface.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
