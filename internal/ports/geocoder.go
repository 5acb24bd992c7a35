package ports

import (
	"context"
	"exsighting-location/internal/domain"
)

// Contract for resolving free-form place text to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, text string) (domain.Coordinates, error)
}
