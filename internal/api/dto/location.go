package dto

type CoordinatesRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type LocationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Geohash   string  `json:"geohash"`
}

type DistanceResponse struct {
	From       LocationResponse `json:"from"`
	To         LocationResponse `json:"to"`
	DistanceKm float64          `json:"distance_km"`
	Label      string           `json:"label"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
