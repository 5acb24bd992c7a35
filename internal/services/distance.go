package services

import (
	"exsighting-location/internal/domain"
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// CalculateDistance returns the great-circle distance between a and b in
// kilometers using the Haversine formula, rounded to 2 decimal places.
func CalculateDistance(a, b domain.Coordinates) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push h just outside [0, 1] for near-antipodal points.
	h = math.Min(1, math.Max(0, h))

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return math.Round(earthRadiusKm*c*100) / 100
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// FormatDistance renders km for display: metres below 1 km, one decimal
// below 10 km, whole kilometers beyond. The unit is picked before rounding,
// so 0.9996 renders as "1000 m" and 9.96 as "10.0 km".
func FormatDistance(km float64) string {
	switch {
	case math.IsNaN(km) || km <= 0:
		return "0 m"
	case km < 1:
		return fmt.Sprintf("%d m", int(math.Round(km*1000)))
	case km < 10:
		return fmt.Sprintf("%.1f km", km)
	default:
		return fmt.Sprintf("%d km", int64(math.Round(km)))
	}
}
