package coverage

import (
	"encoding/json"
	"sort"
	"time"

	. "github.com/ttpr0/go-coverage/util"
)

//**********************************************************
// station state
//**********************************************************

// Pipeline state of a station, the last state reached is reported.
type StationState byte

const (
	PENDING        StationState = 0
	ZONE_RESOLVED  StationState = 1
	GRAPH_READY    StationState = 2
	NODE_RESOLVED  StationState = 3
	REACHABLE      StationState = 4
	HULL_EXTRACTED StationState = 5
	CLIPPED        StationState = 6
	FILED          StationState = 7
	SKIPPED        StationState = 8
	FAILED         StationState = 9
)

func (self StationState) String() string {
	switch self {
	case PENDING:
		return "pending"
	case ZONE_RESOLVED:
		return "zone_resolved"
	case GRAPH_READY:
		return "graph_ready"
	case NODE_RESOLVED:
		return "node_resolved"
	case REACHABLE:
		return "reachable"
	case HULL_EXTRACTED:
		return "hull_extracted"
	case CLIPPED:
		return "clipped"
	case FILED:
		return "filed"
	case SKIPPED:
		return "skipped"
	case FAILED:
		return "failed"
	default:
		return "unknown"
	}
}
func (self StationState) MarshalJSON() ([]byte, error) {
	return json.Marshal(self.String())
}

//**********************************************************
// report
//**********************************************************

type StationOutcome struct {
	StationID string       `json:"station_id"`
	ZoneID    string       `json:"zone_id"`
	State     StationState `json:"state"`
	Polygons  int          `json:"polygons"`
	// thresholds without coverage (degenerate hull or empty clip)
	NoCoverage List[int32]   `json:"no_coverage,omitempty"`
	Failure    FailureKind   `json:"failure,omitempty"`
	Message    string        `json:"message,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
}

type Report struct {
	RunID        string           `json:"run_id"`
	Started      time.Time        `json:"started"`
	Duration     time.Duration    `json:"duration_ns"`
	Thresholds   Thresholds       `json:"thresholds"`
	Stations     []StationOutcome `json:"stations"`
	SkippedZones List[string]     `json:"skipped_zones"`
	// polygons per threshold
	Counts Dict[int32, int] `json:"counts"`
}

// Number of stations per final state.
func (self *Report) StateCounts() Dict[StationState, int] {
	counts := NewDict[StationState, int](4)
	for _, outcome := range self.Stations {
		counts[outcome.State] += 1
	}
	return counts
}

func (self *Report) Outcome(station_id string) (StationOutcome, bool) {
	i := sort.Search(len(self.Stations), func(i int) bool {
		return self.Stations[i].StationID >= station_id
	})
	if i < len(self.Stations) && self.Stations[i].StationID == station_id {
		return self.Stations[i], true
	}
	return StationOutcome{}, false
}

//**********************************************************
// observer
//**********************************************************

// Receives run events, calls may happen concurrently.
type IRunObserver interface {
	GraphBuilt(key string, nodes, edges int, duration time.Duration)
	PolygonFiled(polygon ResponsePolygon)
	StationFinished(outcome StationOutcome)
	RunFinished(report *Report)
}

type _NoopObserver struct{}

func (_NoopObserver) GraphBuilt(string, int, int, time.Duration) {}
func (_NoopObserver) PolygonFiled(ResponsePolygon)               {}
func (_NoopObserver) StationFinished(StationOutcome)             {}
func (_NoopObserver) RunFinished(*Report)                        {}
