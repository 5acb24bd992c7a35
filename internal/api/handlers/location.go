package handlers

import (
	"exsighting-location/internal/api/dto"
	"exsighting-location/internal/services"
	"net/http"
	"time"
)

// LocationHandler exposes the user's cached position and distance helpers.
type LocationHandler struct {
	Service       *services.LocationService
	DefaultMaxAge time.Duration
}

func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	maxAge, err := parseMaxAge(r.URL.Query().Get("max_age"), h.DefaultMaxAge)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.Service.CurrentCoordinates(r.Context(), maxAge)
	if err != nil {
		writeLocationError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toLocationResponse(c))
}

func (h *LocationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.Service.ClearCache(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Distance computes the great-circle distance between two query points.
func (h *LocationHandler) Distance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, err := parseCoordinates(q.Get("from"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "from: "+err.Error())
		return
	}

	to, err := parseCoordinates(q.Get("to"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "to: "+err.Error())
		return
	}

	km := services.CalculateDistance(from, to)
	writeJSON(w, r, http.StatusOK, dto.DistanceResponse{
		From:       toLocationResponse(from),
		To:         toLocationResponse(to),
		DistanceKm: km,
		Label:      services.FormatDistance(km),
	})
}
