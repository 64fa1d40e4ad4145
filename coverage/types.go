package coverage

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/ttpr0/go-coverage/hull"
)

//**********************************************************
// station
//**********************************************************

// Fire station with the id of its owning zone, Point is lon/lat.
type Station struct {
	ID     string    `json:"id"`
	Point  orb.Point `json:"point"`
	ZoneID string    `json:"zone_id"`
}

func NewStation(id string, point orb.Point, zone_id string) (Station, error) {
	station := Station{ID: id, Point: point, ZoneID: zone_id}
	if err := station.Validate(); err != nil {
		return Station{}, err
	}
	return station, nil
}

func (self Station) Validate() error {
	if self.ID == "" {
		return eris.New("coverage: station without id")
	}
	lon, lat := self.Point[0], self.Point[1]
	if math.IsNaN(lon) || math.IsNaN(lat) || lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return eris.Errorf("coverage: station %s has invalid location %v", self.ID, self.Point)
	}
	return nil
}

//**********************************************************
// response polygon
//**********************************************************

// Clipped response area of one station at one threshold, Polygon is lon/lat.
type ResponsePolygon struct {
	StationID string           `json:"station_id"`
	ZoneID    string           `json:"zone_id"`
	Threshold int32            `json:"response_time"`
	Polygon   orb.MultiPolygon `json:"-"`
	Strategy  hull.Strategy    `json:"strategy"`
	Fallback  bool             `json:"fallback"`
}

//**********************************************************
// thresholds
//**********************************************************

// Response time budgets in seconds, strictly increasing.
type Thresholds []int32

func DefaultThresholds() Thresholds {
	return Thresholds{120, 300, 600, 1200}
}

// Sorts and de-duplicates the values, all values must be positive.
func NewThresholds(values []int32) (Thresholds, error) {
	if len(values) == 0 {
		return nil, eris.New("coverage: no thresholds given")
	}
	sorted := make([]int32, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})
	thresholds := make(Thresholds, 0, len(sorted))
	for _, t := range sorted {
		if t <= 0 {
			return nil, eris.Errorf("coverage: threshold must be positive, got %d", t)
		}
		if len(thresholds) > 0 && thresholds[len(thresholds)-1] == t {
			continue
		}
		thresholds = append(thresholds, t)
	}
	return thresholds, nil
}

func (self Thresholds) Max() int32 {
	if len(self) == 0 {
		return 0
	}
	return self[len(self)-1]
}

func (self Thresholds) Contains(t int32) bool {
	i := sort.Search(len(self), func(i int) bool {
		return self[i] >= t
	})
	return i < len(self) && self[i] == t
}
