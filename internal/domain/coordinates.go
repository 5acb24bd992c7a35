package domain

import (
	"fmt"
	"math"

	"github.com/mmcloughlin/geohash"
)

// Immutable geographic coordinates (latitude, longitude) in degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Validate rejects non-finite values and values outside the WGS84 ranges.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) {
		return fmt.Errorf("coordinates: non-finite value (%v, %v)", c.Lat, c.Lon)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("coordinates: latitude %v out of range [-90, 90]", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("coordinates: longitude %v out of range [-180, 180]", c.Lon)
	}
	return nil
}

// Geohash encodes the coordinates as a geohash cell of the given precision.
func (c Coordinates) Geohash(precision uint) string {
	return geohash.EncodeWithPrecision(c.Lat, c.Lon, precision)
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}
