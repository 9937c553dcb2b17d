// Package visibility computes the deterministic 0–100 sky-visibility score.
//
// Factors are derived from a trigonometric hash of (lat, lon, hour bucket),
// so a given location produces a stable score for a full hour. Display caches
// depend on that stability; the formula must not change until the factor
// generators are replaced by real data sources.
//
// TODO: Replace factor generators with real APIs:
//   - Weather (cloud cover, humidity)
//   - AQI (Air Quality Index)
//   - Light pollution (satellite data)
//   - Elevation (topographic API)
//   - Moon phase / illumination
package visibility

import (
	"math"
	"time"

	"github.com/singularity-sky/singularity/internal/domain"
)

// Factor weights. Sum to 1.0; the weighted goodness sum scales to 0–100.
const (
	WeightCloudCover       = 0.25
	WeightAQI              = 0.15
	WeightLightPollution   = 0.20
	WeightElevation        = 0.10
	WeightMoonIllumination = 0.15
	WeightHorizon          = 0.15
)

// Estimate returns the visibility score for a location at a point in time.
//
// It never fails: visibility is advisory, so malformed input or any NaN
// propagation degrades to the worst-case score of 0 with least-favorable
// factors instead of blocking the caller.
func Estimate(lat, lon float64, at time.Time) domain.VisibilityScore {
	now := time.Now().UTC()

	if !(domain.Coordinate{Lat: lat, Lon: lon}).Valid() {
		return worstCase(now)
	}

	seed := deriveSeed(lat, lon, at)
	rand := func(n int) float64 {
		x := math.Sin(float64(seed+n)) * 10000
		return x - math.Floor(x)
	}

	factors := domain.VisibilityFactors{
		CloudCover:       rand(1),                         // 0–1
		AQI:              int(math.Floor(rand(2) * 500)),  // 0–500
		LightPollution:   rand(3),                         // 0–1
		Elevation:        int(math.Floor(rand(4) * 3000)), // 0–3000
		MoonIllumination: rand(5),                         // 0–1
		Horizon:          rand(6),                         // 0–1
	}

	// Normalize each factor to a goodness score 0–1 (1 is best).
	score := (WeightCloudCover*(1-factors.CloudCover) + // Less cloud is better
		WeightAQI*(1-float64(factors.AQI)/500) + // Lower AQI is better
		WeightLightPollution*(1-factors.LightPollution) +
		WeightElevation*(float64(factors.Elevation)/3000) + // Higher elevation is better
		WeightMoonIllumination*(1-factors.MoonIllumination) +
		WeightHorizon*factors.Horizon) * 100

	if math.IsNaN(score) || math.IsInf(score, 0) {
		return worstCase(now)
	}

	return domain.VisibilityScore{
		Score:     math.Round(score*100) / 100,
		UpdatedAt: now,
		Factors:   factors,
	}
}

// deriveSeed buckets time to the hour and folds it with the coordinates,
// keeping the score stable within an hour window for a fixed location.
func deriveSeed(lat, lon float64, at time.Time) int {
	hourBucket := at.UnixMilli() / 3600000
	seed := int64(math.Floor(lat*1000)) + int64(math.Floor(lon*1000)) + hourBucket
	if seed < 0 {
		seed = -seed
	}
	return int(seed % 100000)
}

// worstCase is the fail-safe result: score 0 with every factor pinned to its
// least favorable bound.
func worstCase(at time.Time) domain.VisibilityScore {
	return domain.VisibilityScore{
		Score:     0,
		UpdatedAt: at,
		Factors: domain.VisibilityFactors{
			CloudCover:       1,
			AQI:              500,
			LightPollution:   1,
			Elevation:        0,
			MoonIllumination: 1,
			Horizon:          0,
		},
	}
}
