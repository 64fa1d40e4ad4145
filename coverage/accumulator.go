package coverage

import (
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	. "github.com/ttpr0/go-coverage/util"
)

// Collects response polygons into one bucket per threshold.
//
// Safe for concurrent use.
type Accumulator struct {
	mu         sync.Mutex
	thresholds Thresholds
	buckets    Dict[int32, List[ResponsePolygon]]
}

func NewAccumulator(thresholds Thresholds) *Accumulator {
	buckets := NewDict[int32, List[ResponsePolygon]](len(thresholds))
	for _, t := range thresholds {
		buckets[t] = NewList[ResponsePolygon](16)
	}
	return &Accumulator{
		thresholds: thresholds,
		buckets:    buckets,
	}
}

// Adds the polygon to the bucket of its threshold, unknown thresholds are rejected.
func (self *Accumulator) File(polygon ResponsePolygon) error {
	if !self.thresholds.Contains(polygon.Threshold) {
		return eris.Errorf("coverage: threshold %d is not configured", polygon.Threshold)
	}
	self.mu.Lock()
	defer self.mu.Unlock()

	bucket := self.buckets[polygon.Threshold]
	bucket.Add(polygon)
	self.buckets[polygon.Threshold] = bucket
	return nil
}

// Returns the buckets with polygons ordered by zone and station id.
func (self *Accumulator) Buckets() Buckets {
	self.mu.Lock()
	defer self.mu.Unlock()

	buckets := make(Buckets, 0, len(self.thresholds))
	for _, t := range self.thresholds {
		polygons := make(List[ResponsePolygon], len(self.buckets[t]))
		copy(polygons, self.buckets[t])
		sort.SliceStable(polygons, func(i, j int) bool {
			if polygons[i].ZoneID != polygons[j].ZoneID {
				return polygons[i].ZoneID < polygons[j].ZoneID
			}
			return polygons[i].StationID < polygons[j].StationID
		})
		buckets = append(buckets, Bucket{Threshold: t, Polygons: polygons})
	}
	return buckets
}

type Bucket struct {
	Threshold int32
	Polygons  List[ResponsePolygon]
}

// Buckets ordered by ascending threshold.
type Buckets []Bucket

func (self Buckets) Get(threshold int32) (List[ResponsePolygon], bool) {
	for _, bucket := range self {
		if bucket.Threshold == threshold {
			return bucket.Polygons, true
		}
	}
	return nil, false
}

func (self Buckets) Count() int {
	count := 0
	for _, bucket := range self {
		count += len(bucket.Polygons)
	}
	return count
}
