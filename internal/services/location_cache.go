package services

import (
	"context"
	"encoding/json"
	"exsighting-location/internal/domain"
	"exsighting-location/internal/ports"
	"fmt"
	"log"
	"time"
)

// UserLocationKey is the single entry the cache owns in the backing store.
const UserLocationKey = "userLocation"

// LocationCache persists the last known user coordinate with its capture
// time and enforces expiry on read. It never returns errors: persistence is
// best-effort and unreadable entries count as misses.
type LocationCache struct {
	store ports.KeyValueStore
	now   func() time.Time
}

func NewLocationCache(store ports.KeyValueStore) *LocationCache {
	return &LocationCache{store: store, now: time.Now}
}

// WithClock replaces the time source; used by tests to simulate expiry.
func (c *LocationCache) WithClock(now func() time.Time) *LocationCache {
	c.now = now
	return c
}

// Save writes coord with the current capture time.
func (c *LocationCache) Save(ctx context.Context, coord domain.Coordinates) {
	if err := coord.Validate(); err != nil {
		log.Printf("location cache: refusing to save: %v", err)
		return
	}

	b, err := json.Marshal(domain.NewCachedLocation(coord, c.now()))
	if err != nil {
		log.Printf("location cache: encode entry: %v", err)
		return
	}

	if err := c.store.Set(ctx, UserLocationKey, string(b)); err != nil {
		log.Printf("location cache: write entry: %v", err)
	}
}

// Load returns the cached coordinate if it is younger than maxAge.
// Expired or malformed entries are removed so later loads also miss.
func (c *LocationCache) Load(ctx context.Context, maxAge time.Duration) (domain.Coordinates, bool) {
	raw, ok, err := c.store.Get(ctx, UserLocationKey)
	if err != nil {
		log.Printf("location cache: read entry: %v", err)
		return domain.Coordinates{}, false
	}
	if !ok {
		return domain.Coordinates{}, false
	}

	entry, err := decodeCachedLocation(raw)
	if err != nil {
		log.Printf("location cache: dropping unreadable entry: %v", err)
		c.remove(ctx)
		return domain.Coordinates{}, false
	}

	// A capture time in the future means the writer's clock disagrees with ours.
	if age := entry.Age(c.now()); age < 0 || age >= maxAge {
		c.remove(ctx)
		return domain.Coordinates{}, false
	}

	return entry.Coordinates(), true
}

// Clear removes the entry regardless of its age.
func (c *LocationCache) Clear(ctx context.Context) {
	c.remove(ctx)
}

func (c *LocationCache) remove(ctx context.Context) {
	if err := c.store.Remove(ctx, UserLocationKey); err != nil {
		log.Printf("location cache: remove entry: %v", err)
	}
}

func decodeCachedLocation(raw string) (domain.CachedLocation, error) {
	// Pointer fields distinguish a missing field from a zero value.
	var wire struct {
		Latitude              *float64 `json:"latitude"`
		Longitude             *float64 `json:"longitude"`
		CapturedAtEpochMillis *int64   `json:"capturedAtEpochMillis"`
	}
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return domain.CachedLocation{}, fmt.Errorf("decode cached location: %w", err)
	}
	if wire.Latitude == nil || wire.Longitude == nil || wire.CapturedAtEpochMillis == nil {
		return domain.CachedLocation{}, fmt.Errorf("decode cached location: missing field in %q", raw)
	}

	entry := domain.CachedLocation{
		Latitude:              *wire.Latitude,
		Longitude:             *wire.Longitude,
		CapturedAtEpochMillis: *wire.CapturedAtEpochMillis,
	}
	if err := entry.Coordinates().Validate(); err != nil {
		return domain.CachedLocation{}, fmt.Errorf("decode cached location: %w", err)
	}

	return entry, nil
}
