package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"exsighting-location/internal/domain"
	"exsighting-location/internal/ports"
	"fmt"
	"log"
)

const geocodeKeyPrefix = "geocode:"

// CachedGeocoder memoizes successful lookups of a Geocoder in a
// KeyValueStore. Failures are never cached. Store errors are logged and
// fall through to the upstream geocoder.
type CachedGeocoder struct {
	next  ports.Geocoder
	store ports.KeyValueStore
}

type cachedCoordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func NewCachedGeocoder(next ports.Geocoder, store ports.KeyValueStore) (*CachedGeocoder, error) {
	if next == nil {
		return nil, errors.New("cached geocoder: upstream geocoder is nil")
	}
	if store == nil {
		return nil, errors.New("cached geocoder: store is nil")
	}
	return &CachedGeocoder{next: next, store: store}, nil
}

func (g *CachedGeocoder) Geocode(ctx context.Context, text string) (domain.Coordinates, error) {
	norm := normalize(text)
	if norm == "" {
		return domain.Coordinates{}, errors.New("geocode: text must be non-empty")
	}
	key := geocodeKeyPrefix + norm

	if c, ok := g.lookup(ctx, key); ok {
		return c, nil
	}

	c, err := g.next.Geocode(ctx, norm)
	if err != nil {
		return domain.Coordinates{}, err
	}

	b, err := json.Marshal(cachedCoordinates{Latitude: c.Lat, Longitude: c.Lon})
	if err != nil {
		return c, nil
	}
	if err := g.store.Set(ctx, key, string(b)); err != nil {
		log.Printf("geocode cache: write key=%q: %v", key, err)
	}

	return c, nil
}

func (g *CachedGeocoder) lookup(ctx context.Context, key string) (domain.Coordinates, bool) {
	raw, ok, err := g.store.Get(ctx, key)
	if err != nil {
		log.Printf("geocode cache: read key=%q: %v", key, err)
		return domain.Coordinates{}, false
	}
	if !ok {
		return domain.Coordinates{}, false
	}

	c, err := decodeCachedCoordinates(raw)
	if err != nil {
		log.Printf("geocode cache: dropping key=%q: %v", key, err)
		if err := g.store.Remove(ctx, key); err != nil {
			log.Printf("geocode cache: remove key=%q: %v", key, err)
		}
		return domain.Coordinates{}, false
	}

	return c, true
}

func decodeCachedCoordinates(raw string) (domain.Coordinates, error) {
	var v cachedCoordinates
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode cached coordinates: %w", err)
	}

	c := domain.Coordinates{Lat: v.Latitude, Lon: v.Longitude}
	if err := c.Validate(); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode cached coordinates: %w", err)
	}
	return c, nil
}
