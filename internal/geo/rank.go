package geo

import (
	"sort"

	"github.com/singularity-sky/singularity/internal/domain"
)

// Located is anything that carries a coordinate (dark sites, events).
type Located interface {
	Coordinate() domain.Coordinate
}

// Ranked pairs a record with its computed distance from a query origin.
// The original record is untouched; Ranked is a new value.
type Ranked[T Located] struct {
	Record     T       `json:"record"`
	DistanceKm float64 `json:"distance"`
}

// RankByDistance returns the records ordered by ascending great-circle
// distance from origin. The sort is stable, so records at equal (rounded)
// distance keep their input order. The output is a permutation of the input;
// applying a result limit is the caller's concern.
//
// Sorting uses the same 2-decimal rounded distance that is exposed to
// callers, so display order and rank order can never disagree.
func RankByDistance[T Located](origin domain.Coordinate, records []T) ([]Ranked[T], error) {
	if !origin.Valid() {
		return nil, domain.ErrInvalidCoordinate
	}

	out := make([]Ranked[T], 0, len(records))
	for _, rec := range records {
		loc := rec.Coordinate()
		d, err := DistanceKm(origin.Lat, origin.Lon, loc.Lat, loc.Lon)
		if err != nil {
			return nil, err
		}
		out = append(out, Ranked[T]{Record: rec, DistanceKm: d})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out, nil
}

// NearestN ranks records by distance from origin and truncates to the first
// limit entries. A non-positive limit is an input-validation failure owned by
// the caller; it is treated here as "no results".
func NearestN[T Located](origin domain.Coordinate, records []T, limit int) ([]Ranked[T], error) {
	ranked, err := RankByDistance(origin, records)
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		limit = 0
	}
	if limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
