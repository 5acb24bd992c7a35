package handlers

import (
	"encoding/json"
	"errors"
	"exsighting-location/internal/api/dto"
	"exsighting-location/internal/domain"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, dto.ErrorResponse{Error: msg})
}

// writeLocationError maps a location failure to a status the page can act on.
func writeLocationError(w http.ResponseWriter, r *http.Request, err error) {
	var le *domain.LocationError
	if !errors.As(err, &le) {
		log.Printf("location lookup failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	status := http.StatusInternalServerError
	switch le.Kind {
	case domain.KindUnsupported:
		status = http.StatusNotImplemented
	case domain.KindPermissionDenied:
		status = http.StatusForbidden
	case domain.KindPositionUnavailable:
		status = http.StatusServiceUnavailable
	case domain.KindTimeout:
		status = http.StatusGatewayTimeout
	}

	log.Printf("location lookup failed: kind=%s err=%v", le.Kind, err)
	writeJSON(w, r, status, dto.ErrorResponse{Error: le.Message, Kind: string(le.Kind)})
}

func toLocationResponse(c domain.Coordinates) dto.LocationResponse {
	return dto.LocationResponse{
		Latitude:  c.Lat,
		Longitude: c.Lon,
		Geohash:   c.Geohash(7),
	}
}

// parseCoordinates accepts "lat,lon".
func parseCoordinates(s string) (domain.Coordinates, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return domain.Coordinates{}, fmt.Errorf("expected \"lat,lon\", got %q", s)
	}
	return parseLatLon(parts[0], parts[1])
}

func parseLatLon(latStr, lonStr string) (domain.Coordinates, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("invalid latitude %q", latStr)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("invalid longitude %q", lonStr)
	}

	c := domain.Coordinates{Lat: lat, Lon: lon}
	if err := c.Validate(); err != nil {
		return domain.Coordinates{}, err
	}
	return c, nil
}

// parseMaxAge accepts a Go duration ("90s") or integer milliseconds.
func parseMaxAge(s string, fallback time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms < 0 {
			return 0, errors.New("max_age must not be negative")
		}
		return time.Duration(ms) * time.Millisecond, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid max_age %q", s)
	}
	if d < 0 {
		return 0, errors.New("max_age must not be negative")
	}
	return d, nil
}
