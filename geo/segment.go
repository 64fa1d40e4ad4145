package geo

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

//**********************************************************
// segments
//**********************************************************

// Directed line segment.
type Segment struct {
	A orb.Point
	B orb.Point
}

func (self Segment) Length() float64 {
	return _Dist(self.A, self.B)
}

func (self Segment) Reversed() Segment {
	return Segment{self.B, self.A}
}

func (self Segment) Midpoint() orb.Point {
	return orb.Point{(self.A[0] + self.B[0]) / 2, (self.A[1] + self.B[1]) / 2}
}

type IntersectionKind byte

const (
	NO_INTERSECTION IntersectionKind = 0
	CROSSING        IntersectionKind = 1
	TOUCHING        IntersectionKind = 2
	OVERLAPPING     IntersectionKind = 3
)

// distance below which points are considered to lie on a segment
const _ON_SEGMENT_TOLERANCE = 1e-9

func _OnSegment(a, b, p orb.Point, tolerance float64) bool {
	length := _Dist(a, b)
	if length == 0 {
		return _Dist(a, p) <= tolerance
	}
	if math.Abs(_Cross(a, b, p))/length > tolerance {
		return false
	}
	dot := (p[0]-a[0])*(b[0]-a[0]) + (p[1]-a[1])*(b[1]-a[1])
	return dot >= -tolerance*length && dot <= length*length+tolerance*length
}

// Computes the intersection points of two segments.
//
// Endpoints lying on the other segment are returned exactly, crossing points are interpolated.
func IntersectSegments(s, o Segment) ([]orb.Point, IntersectionKind) {
	tol := _ON_SEGMENT_TOLERANCE * _Max4(math.Abs(s.A[0]), math.Abs(s.A[1]), 1, 1)
	points := make([]orb.Point, 0, 4)
	add := func(p orb.Point) {
		for _, q := range points {
			if _Dist(p, q) <= tol {
				return
			}
		}
		points = append(points, p)
	}
	if _OnSegment(o.A, o.B, s.A, tol) {
		add(s.A)
	}
	if _OnSegment(o.A, o.B, s.B, tol) {
		add(s.B)
	}
	if _OnSegment(s.A, s.B, o.A, tol) {
		add(o.A)
	}
	if _OnSegment(s.A, s.B, o.B, tol) {
		add(o.B)
	}
	switch {
	case len(points) > 1:
		return points, OVERLAPPING
	case len(points) == 1:
		return points, TOUCHING
	}

	d1 := _Cross(o.A, o.B, s.A)
	d2 := _Cross(o.A, o.B, s.B)
	d3 := _Cross(s.A, s.B, o.A)
	d4 := _Cross(s.A, s.B, o.B)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		t := d1 / (d1 - d2)
		p := orb.Point{s.A[0] + t*(s.B[0]-s.A[0]), s.A[1] + t*(s.B[1]-s.A[1])}
		return []orb.Point{p}, CROSSING
	}
	return nil, NO_INTERSECTION
}

func _Max4(a, b, c, d float64) float64 {
	return math.Max(math.Max(a, b), math.Max(c, d))
}

// Calls callback for every pair of segments whose bounding boxes overlap.
//
// Pairs are found with a sweep over the x-extent, callback returning false stops the sweep.
func ForCandidatePairs(segments []Segment, callback func(i, j int) bool) {
	order := make([]int, len(segments))
	for i := range order {
		order[i] = i
	}
	minx := func(s Segment) float64 { return math.Min(s.A[0], s.B[0]) }
	maxx := func(s Segment) float64 { return math.Max(s.A[0], s.B[0]) }
	sort.Slice(order, func(a, b int) bool {
		return minx(segments[order[a]]) < minx(segments[order[b]])
	})
	for a := 0; a < len(order); a++ {
		s := segments[order[a]]
		s_maxx := maxx(s)
		s_miny := math.Min(s.A[1], s.B[1])
		s_maxy := math.Max(s.A[1], s.B[1])
		for b := a + 1; b < len(order); b++ {
			o := segments[order[b]]
			if minx(o) > s_maxx {
				break
			}
			if math.Max(o.A[1], o.B[1]) < s_miny || math.Min(o.A[1], o.B[1]) > s_maxy {
				continue
			}
			i, j := order[a], order[b]
			if i > j {
				i, j = j, i
			}
			if !callback(i, j) {
				return
			}
		}
	}
}

func _RingSegments(ring orb.Ring) []Segment {
	segments := make([]Segment, 0, len(ring))
	for i := 0; i+1 < len(ring); i++ {
		if ring[i] == ring[i+1] {
			continue
		}
		segments = append(segments, Segment{ring[i], ring[i+1]})
	}
	return segments
}
