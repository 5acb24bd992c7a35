package services

import (
	"errors"
	"exsighting-location/internal/domain"
	"fmt"
	"math"
)

// PlanVisitOrder orders places with a greedy nearest-neighbor walk from origin.
//
// Each step moves to the closest unvisited place by great-circle distance.
// The result is not a globally optimal tour.
func PlanVisitOrder(origin domain.Coordinates, places []*domain.Place) ([]domain.VisitStop, error) {
	if err := origin.Validate(); err != nil {
		return nil, fmt.Errorf("plan visit order: invalid origin: %w", err)
	}

	remaining := make(map[int]*domain.Place, len(places))
	for _, p := range places {
		if p == nil {
			continue
		}
		if p.Coords == nil {
			return nil, fmt.Errorf("plan visit order: place_id=%d has no coordinates", p.PlaceID)
		}
		remaining[p.PlaceID] = p
	}

	current := origin
	stops := make([]domain.VisitStop, 0, len(remaining))
	total := 0.0

	for len(remaining) > 0 {
		var best *domain.Place
		bestKm := math.Inf(1)

		for _, p := range remaining {
			km := CalculateDistance(current, *p.Coords)
			// Tie-breaker ensures deterministic ordering when distances are equal.
			if km < bestKm || (km == bestKm && p.PlaceID < best.PlaceID) {
				best = p
				bestKm = km
			}
		}

		if best == nil {
			return nil, errors.New("plan visit order: failed to select next place")
		}

		total = math.Round((total+bestKm)*100) / 100
		stops = append(stops, domain.VisitStop{
			Place:           best,
			LegKm:           bestKm,
			CumulativeKm:    total,
			CumulativeLabel: FormatDistance(total),
		})

		delete(remaining, best.PlaceID)
		current = *best.Coords
	}

	return stops, nil
}
