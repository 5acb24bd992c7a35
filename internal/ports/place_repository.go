package ports

import (
	"context"
	"exsighting-location/internal/domain"
)

// Port: a boundary for retrieving Place entities from a data source.
type PlaceRepository interface {
	// Retrieve all places ordered by id.
	ListPlaces(ctx context.Context) ([]*domain.Place, error)
	// Retrieve one place; ok is false when no place has the id.
	GetPlace(ctx context.Context, id int) (place *domain.Place, ok bool, err error)
}
