package services

import (
	"cmp"
	"exsighting-location/internal/domain"
	"fmt"
	"slices"
)

// RankPlacesByDistance annotates places with their distance from origin and
// sorts them nearest first. Places without coordinates are skipped. A positive
// radiusKm drops places farther than the radius; limit > 0 truncates the result.
func RankPlacesByDistance(
	origin domain.Coordinates,
	places []*domain.Place,
	radiusKm float64,
	limit int,
) ([]domain.PlaceDistance, error) {
	if err := origin.Validate(); err != nil {
		return nil, fmt.Errorf("rank places: invalid origin: %w", err)
	}

	out := make([]domain.PlaceDistance, 0, len(places))
	for _, p := range places {
		if p == nil || p.Coords == nil {
			continue
		}

		km := CalculateDistance(origin, *p.Coords)
		if radiusKm > 0 && km > radiusKm {
			continue
		}

		out = append(out, domain.PlaceDistance{
			Place:      p,
			DistanceKm: km,
			Label:      FormatDistance(km),
		})
	}

	// Tie-breaker on id keeps the order deterministic for equal distances.
	slices.SortFunc(out, func(a, b domain.PlaceDistance) int {
		if c := cmp.Compare(a.DistanceKm, b.DistanceKm); c != 0 {
			return c
		}
		return cmp.Compare(a.Place.PlaceID, b.Place.PlaceID)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}
