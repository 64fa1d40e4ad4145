package attr

import (
	"math"
)

//*******************************************
// graph attributes
//*******************************************

type EdgeAttribs struct {
	Type RoadType
	// length in meters
	Length float64
	// speed in km/h, zero if not tagged
	Speed float64
	// travel time in seconds
	TravelTime float64
	Oneway     bool
	// true if the speed was taken from a maxspeed tag
	Tagged bool
}

// Travel time in seconds of length meters driven at speed km/h.
func TravelTime(length float64, speed float64) float64 {
	if speed <= 0 {
		return math.Inf(1)
	}
	return length / (speed / 3.6)
}
