package handlers

import (
	"encoding/json"
	"exsighting-location/internal/api/dto"
	"exsighting-location/internal/domain"
	"exsighting-location/internal/ports"
	"exsighting-location/internal/services"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

const maxVisitPlaces = 50

// PlaceHandler annotates stored places with distances from the user.
type PlaceHandler struct {
	Repo          ports.PlaceRepository
	Location      *services.LocationService
	DefaultMaxAge time.Duration
}

// origin resolves explicit lat/lon query parameters, falling back to the
// user's current coordinate. It writes the error response itself.
func (h *PlaceHandler) origin(w http.ResponseWriter, r *http.Request) (domain.Coordinates, bool) {
	q := r.URL.Query()
	lat, lon := q.Get("lat"), q.Get("lon")

	if lat != "" || lon != "" {
		c, err := parseLatLon(lat, lon)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return domain.Coordinates{}, false
		}
		return c, true
	}

	c, err := h.Location.CurrentCoordinates(r.Context(), h.DefaultMaxAge)
	if err != nil {
		writeLocationError(w, r, err)
		return domain.Coordinates{}, false
	}
	return c, true
}

func toPlaceDistanceResponse(pd domain.PlaceDistance) dto.PlaceDistanceResponse {
	return dto.PlaceDistanceResponse{
		PlaceID:    pd.Place.PlaceID,
		Name:       pd.Place.Name,
		Location:   pd.Place.Location,
		Latitude:   pd.Place.Coords.Lat,
		Longitude:  pd.Place.Coords.Lon,
		DistanceKm: pd.DistanceKm,
		Label:      pd.Label,
	}
}

// Nearby lists places nearest first, optionally bounded by radius_km and limit.
func (h *PlaceHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	radiusKm := 0.0
	if v := q.Get("radius_km"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			writeError(w, r, http.StatusBadRequest, "radius_km must be a non-negative number")
			return
		}
		radiusKm = f
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	origin, ok := h.origin(w, r)
	if !ok {
		return
	}

	places, err := h.Repo.ListPlaces(r.Context())
	if err != nil {
		log.Printf("list places failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	ranked, err := services.RankPlacesByDistance(origin, places, radiusKm, limit)
	if err != nil {
		log.Printf("rank places failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.NearbyPlacesResponse{
		Origin: toLocationResponse(origin),
		Places: make([]dto.PlaceDistanceResponse, 0, len(ranked)),
	}
	for _, pd := range ranked {
		res.Places = append(res.Places, toPlaceDistanceResponse(pd))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Distance reports how far one place is from the origin.
func (h *PlaceHandler) Distance(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "invalid place id")
		return
	}

	place, ok, err := h.Repo.GetPlace(r.Context(), id)
	if err != nil {
		log.Printf("get place failed: id=%d err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if !ok {
		writeError(w, r, http.StatusNotFound, "place not found")
		return
	}
	if place.Coords == nil {
		writeError(w, r, http.StatusUnprocessableEntity, "place has no coordinates")
		return
	}

	origin, ok := h.origin(w, r)
	if !ok {
		return
	}

	km := services.CalculateDistance(origin, *place.Coords)
	writeJSON(w, r, http.StatusOK, toPlaceDistanceResponse(domain.PlaceDistance{
		Place:      place,
		DistanceKm: km,
		Label:      services.FormatDistance(km),
	}))
}

// VisitOrder orders the requested places into a nearest-neighbor walk.
func (h *PlaceHandler) VisitOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.VisitOrderRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if len(req.PlaceIDs) == 0 {
		writeError(w, r, http.StatusBadRequest, "place_ids is required")
		return
	}
	if len(req.PlaceIDs) > maxVisitPlaces {
		writeError(w, r, http.StatusBadRequest, "place_ids must contain at most 50 ids")
		return
	}

	var origin domain.Coordinates
	if req.Origin != nil {
		if req.Origin.Latitude == nil || req.Origin.Longitude == nil {
			writeError(w, r, http.StatusBadRequest, "origin requires latitude and longitude")
			return
		}
		origin = domain.Coordinates{Lat: *req.Origin.Latitude, Lon: *req.Origin.Longitude}
		if err := origin.Validate(); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		c, err := h.Location.CurrentCoordinates(r.Context(), h.DefaultMaxAge)
		if err != nil {
			writeLocationError(w, r, err)
			return
		}
		origin = c
	}

	seen := make(map[int]struct{}, len(req.PlaceIDs))
	places := make([]*domain.Place, 0, len(req.PlaceIDs))
	var missing []string
	for _, id := range req.PlaceIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		p, ok, err := h.Repo.GetPlace(r.Context(), id)
		if err != nil {
			log.Printf("get place failed: id=%d err=%v", id, err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		if !ok || p.Coords == nil {
			missing = append(missing, strconv.Itoa(id))
			continue
		}
		places = append(places, p)
	}

	if len(missing) > 0 {
		writeError(w, r, http.StatusUnprocessableEntity, "unknown or unlocated places: "+strings.Join(missing, ", "))
		return
	}

	stops, err := services.PlanVisitOrder(origin, places)
	if err != nil {
		log.Printf("plan visit order failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.VisitOrderResponse{
		Origin: toLocationResponse(origin),
		Stops:  make([]dto.VisitStopResponse, 0, len(stops)),
	}
	for _, s := range stops {
		res.Stops = append(res.Stops, dto.VisitStopResponse{
			PlaceID:         s.Place.PlaceID,
			Name:            s.Place.Name,
			LegKm:           s.LegKm,
			CumulativeKm:    s.CumulativeKm,
			CumulativeLabel: s.CumulativeLabel,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
