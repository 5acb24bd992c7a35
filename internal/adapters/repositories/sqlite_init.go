package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"exsighting-location/internal/domain"
	"exsighting-location/internal/ports"
	"fmt"
	"log"
	"os"
	"strings"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createPlacesQuery := `
	CREATE TABLE IF NOT EXISTS places (
		place_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		lat REAL,
		lon REAL
	);
	`

	createKVStoreQuery := `
	CREATE TABLE IF NOT EXISTS kv_store (
        key TEXT PRIMARY KEY,
        value TEXT NOT NULL,
        updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
    );
	`

	statements := []string{
		createPlacesQuery,
		createKVStoreQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type PlaceSeed struct {
	PlaceID   int      `json:"place_id"`
	Name      string   `json:"name"`
	Location  string   `json:"location"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Populate the database with place data from a JSON file.
// Places without coordinates keep the ones already stored, or are resolved
// through geocoder when one is given; a failed lookup leaves them unset.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string, geocoder ports.Geocoder) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed places: read %q: %w", jsonPath, err)
	}

	var data []PlaceSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed places: parse json: %w", err)
	}

	known, err := storedCoordinates(ctx, db)
	if err != nil {
		return err
	}

	rows := make([]domain.Place, 0, len(data))
	for i, item := range data {
		if item.PlaceID <= 0 {
			return fmt.Errorf("seed places: invalid place_id at index %d: %d", i+1, item.PlaceID)
		}

		name := strings.TrimSpace(item.Name)
		if name == "" {
			return fmt.Errorf("seed places: item at index %d: name cannot be empty", i+1)
		}

		p := domain.Place{
			PlaceID:  item.PlaceID,
			Name:     name,
			Location: strings.TrimSpace(item.Location),
		}

		if (item.Latitude == nil) != (item.Longitude == nil) {
			return fmt.Errorf("seed places: place_id=%d: latitude and longitude must be set together", p.PlaceID)
		}

		if item.Latitude != nil {
			c := domain.Coordinates{Lat: *item.Latitude, Lon: *item.Longitude}
			if err := c.Validate(); err != nil {
				return fmt.Errorf("seed places: place_id=%d: %w", p.PlaceID, err)
			}
			p.Coords = &c
		} else if c, ok := known[p.PlaceID]; ok {
			p.Coords = &c
		} else if geocoder != nil {
			c, err := geocoder.Geocode(ctx, geocodeText(p))
			if err != nil {
				log.Printf("seed places: geocode place_id=%d failed: %v", p.PlaceID, err)
			} else {
				p.Coords = &c
			}
		}

		rows = append(rows, p)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed places: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Coordinates already stored survive a re-seed without them.
	query := `
	INSERT INTO places (
		place_id,
		name,
		location,
		lat,
		lon
	)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (place_id) DO UPDATE
	SET name = excluded.name,
		location = excluded.location,
		lat = COALESCE(excluded.lat, places.lat),
		lon = COALESCE(excluded.lon, places.lon);
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("seed places: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range rows {
		var lat, lon sql.NullFloat64
		if p.Coords != nil {
			lat = sql.NullFloat64{Float64: p.Coords.Lat, Valid: true}
			lon = sql.NullFloat64{Float64: p.Coords.Lon, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx, p.PlaceID, p.Name, p.Location, lat, lon); err != nil {
			return fmt.Errorf("seed places: insert place_id=%d: %w", p.PlaceID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed places: commit tx: %w", err)
	}

	return nil
}

// storedCoordinates returns the coordinates already saved per place.
func storedCoordinates(ctx context.Context, db *sql.DB) (map[int]domain.Coordinates, error) {
	if db == nil {
		return nil, errors.New("seed places: DB is nil")
	}

	rows, err := db.QueryContext(ctx, `
	SELECT place_id, lat, lon
	FROM places
	WHERE lat IS NOT NULL AND lon IS NOT NULL;
	`)
	if err != nil {
		return nil, fmt.Errorf("seed places: query stored coordinates: %w", err)
	}
	defer rows.Close()

	out := map[int]domain.Coordinates{}
	for rows.Next() {
		var id int
		var c domain.Coordinates
		if err := rows.Scan(&id, &c.Lat, &c.Lon); err != nil {
			return nil, fmt.Errorf("seed places: scan stored coordinates: %w", err)
		}
		out[id] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("seed places: stored coordinates iteration: %w", err)
	}

	return out, nil
}

func geocodeText(p domain.Place) string {
	if p.Location == "" {
		return p.Name + ", Vietnam"
	}
	return p.Name + ", " + p.Location + ", Vietnam"
}
