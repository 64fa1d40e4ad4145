package coverage

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/ttpr0/go-coverage/graph"
	"github.com/ttpr0/go-coverage/zone"
)

var (
	ErrInvalidZoneGeometry = zone.ErrInvalidZoneGeometry
	ErrEmptyRegionGraph    = graph.ErrEmptyRegion
	ErrUpstreamDataMissing = eris.New("coverage: upstream data missing")
	ErrStationTimeout      = eris.New("coverage: station timed out")
)

type FailureKind byte

const (
	NO_FAILURE            FailureKind = 0
	INVALID_ZONE_GEOMETRY FailureKind = 1
	EMPTY_REGION_GRAPH    FailureKind = 2
	UPSTREAM_DATA_MISSING FailureKind = 3
	STATION_TIMEOUT       FailureKind = 4
	CANCELLED             FailureKind = 5
	INTERNAL              FailureKind = 6
)

func (self FailureKind) String() string {
	switch self {
	case NO_FAILURE:
		return ""
	case INVALID_ZONE_GEOMETRY:
		return "invalid_zone_geometry"
	case EMPTY_REGION_GRAPH:
		return "empty_region_graph"
	case UPSTREAM_DATA_MISSING:
		return "upstream_data_missing"
	case STATION_TIMEOUT:
		return "station_timeout"
	case CANCELLED:
		return "cancelled"
	default:
		return "internal"
	}
}
func (self FailureKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(self.String())
}

// Classifies a station pipeline error.
func FailureKindOf(err error) FailureKind {
	switch {
	case err == nil:
		return NO_FAILURE
	case eris.Is(err, ErrInvalidZoneGeometry):
		return INVALID_ZONE_GEOMETRY
	case eris.Is(err, ErrEmptyRegionGraph):
		return EMPTY_REGION_GRAPH
	case eris.Is(err, ErrUpstreamDataMissing):
		return UPSTREAM_DATA_MISSING
	case eris.Is(err, ErrStationTimeout), eris.Is(err, context.DeadlineExceeded):
		return STATION_TIMEOUT
	case eris.Is(err, context.Canceled):
		return CANCELLED
	default:
		return INTERNAL
	}
}
