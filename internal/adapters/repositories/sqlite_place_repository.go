package repositories

import (
	"context"
	"database/sql"
	"errors"
	"exsighting-location/internal/domain"
	"fmt"
)

// SQLite-backed implementation of the PlaceRepository port.
type SqlitePlaceRepository struct{ DB *sql.DB }

func NewSqlitePlaceRepository(db *sql.DB) *SqlitePlaceRepository {
	return &SqlitePlaceRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlace(row rowScanner) (*domain.Place, error) {
	var p domain.Place
	var lat, lon sql.NullFloat64
	if err := row.Scan(&p.PlaceID, &p.Name, &p.Location, &lat, &lon); err != nil {
		return nil, err
	}
	if lat.Valid && lon.Valid {
		p.Coords = &domain.Coordinates{Lat: lat.Float64, Lon: lon.Float64}
	}
	return &p, nil
}

// Return all places stored in the database.
func (s *SqlitePlaceRepository) ListPlaces(ctx context.Context) ([]*domain.Place, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite place repository: DB is nil")
	}

	query := `
	SELECT
		place_id,
		name,
		location,
		lat,
		lon
	FROM places
	ORDER BY place_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list places: query places table: %w", err)
	}
	defer rows.Close()

	places := make([]*domain.Place, 0, 64)
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("list places: scan row: %w", err)
		}
		places = append(places, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list places: row iteration: %w", err)
	}

	return places, nil
}

func (s *SqlitePlaceRepository) GetPlace(ctx context.Context, id int) (*domain.Place, bool, error) {
	if s.DB == nil {
		return nil, false, errors.New("sqlite place repository: DB is nil")
	}

	row := s.DB.QueryRowContext(ctx, `
	SELECT
		place_id,
		name,
		location,
		lat,
		lon
	FROM places
	WHERE place_id = ?;
	`, id)

	p, err := scanPlace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get place id=%d: %w", id, err)
	}

	return p, true, nil
}
