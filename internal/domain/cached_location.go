package domain

import "time"

// CachedLocation is the persisted form of the last known user position.
// The JSON field names are shared with the browser front-end's storage entry.
type CachedLocation struct {
	Latitude              float64 `json:"latitude"`
	Longitude             float64 `json:"longitude"`
	CapturedAtEpochMillis int64   `json:"capturedAtEpochMillis"`
}

func NewCachedLocation(c Coordinates, capturedAt time.Time) CachedLocation {
	return CachedLocation{
		Latitude:              c.Lat,
		Longitude:             c.Lon,
		CapturedAtEpochMillis: capturedAt.UnixMilli(),
	}
}

func (l CachedLocation) Coordinates() Coordinates {
	return Coordinates{Lat: l.Latitude, Lon: l.Longitude}
}

// Age returns how long ago the entry was captured relative to now.
func (l CachedLocation) Age(now time.Time) time.Duration {
	return time.Duration(now.UnixMilli()-l.CapturedAtEpochMillis) * time.Millisecond
}
