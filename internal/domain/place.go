package domain

// A sightseeing place. Coords is nil until the place has been geocoded.
type Place struct {
	PlaceID  int
	Name     string
	Location string
	Coords   *Coordinates
}

// PlaceDistance is a place annotated with its distance from an origin.
type PlaceDistance struct {
	Place      *Place
	DistanceKm float64
	Label      string
}

// A single stop in a visit order, with the distance travelled so far.
type VisitStop struct {
	Place           *Place
	LegKm           float64
	CumulativeKm    float64
	CumulativeLabel string
}
