package dto

type PlaceDistanceResponse struct {
	PlaceID    int     `json:"place_id"`
	Name       string  `json:"name"`
	Location   string  `json:"location"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DistanceKm float64 `json:"distance_km"`
	Label      string  `json:"label"`
}

type NearbyPlacesResponse struct {
	Origin LocationResponse        `json:"origin"`
	Places []PlaceDistanceResponse `json:"places"`
}

type VisitOrderRequest struct {
	Origin   *CoordinatesRequest `json:"origin"`
	PlaceIDs []int               `json:"place_ids"`
}

type VisitStopResponse struct {
	PlaceID         int     `json:"place_id"`
	Name            string  `json:"name"`
	LegKm           float64 `json:"leg_km"`
	CumulativeKm    float64 `json:"cumulative_km"`
	CumulativeLabel string  `json:"cumulative_label"`
}

type VisitOrderResponse struct {
	Origin LocationResponse    `json:"origin"`
	Stops  []VisitStopResponse `json:"stops"`
}
