package position

import (
	"context"
	"exsighting-location/internal/domain"
	"exsighting-location/internal/ports"
)

// FixedPositionProvider always reports the same coordinate, e.g. a kiosk
// or a development machine with a configured location.
type FixedPositionProvider struct {
	coords domain.Coordinates
}

func NewFixedPositionProvider(c domain.Coordinates) (*FixedPositionProvider, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &FixedPositionProvider{coords: c}, nil
}

func (p *FixedPositionProvider) CurrentPosition(ctx context.Context, _ ports.PositionOptions) (domain.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinates{}, err
	}
	return p.coords, nil
}
