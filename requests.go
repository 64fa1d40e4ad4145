package main

import (
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
)

//**********************************************************
// isochrone request
//**********************************************************

type IsochroneRequest struct {
	// [lon, lat]
	Location []float64 `json:"location"`
	// response times in seconds
	Range []int32 `json:"range"`
	// clip to the zone if given
	Zone string `json:"zone"`
}

func (self IsochroneRequest) Point() (orb.Point, error) {
	if len(self.Location) != 2 {
		return orb.Point{}, eris.Errorf("location must be [lon, lat], got %d values", len(self.Location))
	}
	return orb.Point{self.Location[0], self.Location[1]}, nil
}

//**********************************************************
// zone request
//**********************************************************

type ZoneRequest struct {
	// all zones if empty
	ID string `json:"id"`
}
