package geo

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

//**********************************************************
// polygon overlay
//**********************************************************

// coordinates of overlay inputs and outputs are rounded to 1/_SNAP_SCALE units
const _SNAP_SCALE = 1e6

type _OverlayOp byte

const (
	_INTERSECTION _OverlayOp = 0
	_UNION        _OverlayOp = 1
)

// Computes the area shared by both multipolygons.
//
// Inputs must be valid and in a planar coordinate system.
func Intersection(a, b orb.MultiPolygon) orb.MultiPolygon {
	return _Overlay(a, b, _INTERSECTION)
}

// Computes the area covered by either multipolygon.
//
// Inputs must be valid and in a planar coordinate system.
func Union(a, b orb.MultiPolygon) orb.MultiPolygon {
	return _Overlay(a, b, _UNION)
}

// Merges all multipolygons into one using pairwise unions.
func UnionAll(polygons []orb.MultiPolygon) orb.MultiPolygon {
	if len(polygons) == 0 {
		return orb.MultiPolygon{}
	}
	layer := polygons
	for len(layer) > 1 {
		next := make([]orb.MultiPolygon, 0, (len(layer)+1)/2)
		for i := 0; i < len(layer); i += 2 {
			if i+1 == len(layer) {
				next = append(next, layer[i])
				continue
			}
			next = append(next, Union(layer[i], layer[i+1]))
		}
		layer = next
	}
	return _Prepare(layer[0])
}

func _Overlay(a, b orb.MultiPolygon, op _OverlayOp) orb.MultiPolygon {
	a = _Prepare(a)
	b = _Prepare(b)
	if IsEmpty(a) || IsEmpty(b) {
		if op == _INTERSECTION {
			return orb.MultiPolygon{}
		}
		if IsEmpty(a) {
			return b
		}
		return a
	}
	if !a.Bound().Intersects(b.Bound()) {
		if op == _INTERSECTION {
			return orb.MultiPolygon{}
		}
		return append(append(orb.MultiPolygon{}, a...), b...)
	}

	segments_a := _MultiPolygonSegments(a)
	segments_b := _MultiPolygonSegments(b)
	count_a := len(segments_a)
	all := make([]Segment, 0, len(segments_a)+len(segments_b))
	all = append(all, segments_a...)
	all = append(all, segments_b...)
	splits := make([][]orb.Point, len(all))
	ForCandidatePairs(all, func(i, j int) bool {
		if (i < count_a) == (j < count_a) {
			return true
		}
		points, _ := IntersectSegments(all[i], all[j])
		for _, p := range points {
			p = _Snap(p)
			splits[i] = append(splits[i], p)
			splits[j] = append(splits[j], p)
		}
		return true
	})
	edges_a := _SplitSegments(segments_a, splits[:count_a])
	edges_b := _SplitSegments(segments_b, splits[count_a:])

	set_a := make(map[Segment]struct{}, len(edges_a))
	for _, e := range edges_a {
		set_a[e] = struct{}{}
	}
	set_b := make(map[Segment]struct{}, len(edges_b))
	for _, e := range edges_b {
		set_b[e] = struct{}{}
	}

	keep := func(inside bool) bool {
		if op == _INTERSECTION {
			return inside
		}
		return !inside
	}
	result := make([]Segment, 0, len(edges_a)+len(edges_b))
	for _, e := range edges_a {
		if _, ok := set_b[e]; ok {
			// shared boundary with the same interior side
			result = append(result, e)
			continue
		}
		if _, ok := set_b[e.Reversed()]; ok {
			continue
		}
		if keep(_MultiPolygonContainsStrict(b, e.Midpoint())) {
			result = append(result, e)
		}
	}
	for _, e := range edges_b {
		if _, ok := set_a[e]; ok {
			continue
		}
		if _, ok := set_a[e.Reversed()]; ok {
			continue
		}
		if keep(_MultiPolygonContainsStrict(a, e.Midpoint())) {
			result = append(result, e)
		}
	}
	return Polygonize(result)
}

func _Snap(p orb.Point) orb.Point {
	return orb.Point{math.Round(p[0]*_SNAP_SCALE) / _SNAP_SCALE, math.Round(p[1]*_SNAP_SCALE) / _SNAP_SCALE}
}

// Snaps, orients and closes all rings, dropping rings without area.
func _Prepare(mp orb.MultiPolygon) orb.MultiPolygon {
	prepared := make(orb.MultiPolygon, 0, len(mp))
	for _, polygon := range mp {
		rings := make(orb.Polygon, 0, len(polygon))
		for i, ring := range polygon {
			snapped := make(orb.Ring, 0, len(ring)+1)
			for _, p := range ring {
				p = _Snap(p)
				if len(snapped) > 0 && snapped[len(snapped)-1] == p {
					continue
				}
				snapped = append(snapped, p)
			}
			snapped = CloseRing(snapped)
			if len(snapped) < 4 || SignedArea(snapped) == 0 {
				if i == 0 {
					break
				}
				continue
			}
			rings = append(rings, snapped)
		}
		if len(rings) == 0 {
			continue
		}
		prepared = append(prepared, NormalizePolygon(rings))
	}
	return prepared
}

func _MultiPolygonSegments(mp orb.MultiPolygon) []Segment {
	segments := make([]Segment, 0)
	for _, polygon := range mp {
		for _, ring := range polygon {
			segments = append(segments, _RingSegments(ring)...)
		}
	}
	return segments
}

// Splits every segment at the given points, ordered along the segment.
func _SplitSegments(segments []Segment, splits [][]orb.Point) []Segment {
	edges := make([]Segment, 0, len(segments))
	for i, s := range segments {
		if len(splits[i]) == 0 {
			edges = append(edges, s)
			continue
		}
		dx := s.B[0] - s.A[0]
		dy := s.B[1] - s.A[1]
		length2 := dx*dx + dy*dy
		param := func(p orb.Point) float64 {
			return ((p[0]-s.A[0])*dx + (p[1]-s.A[1])*dy) / length2
		}
		points := make([]orb.Point, 0, len(splits[i]))
		for _, p := range splits[i] {
			t := param(p)
			if p == s.A || p == s.B || t <= 0 || t >= 1 {
				continue
			}
			points = append(points, p)
		}
		sort.Slice(points, func(a, b int) bool {
			return param(points[a]) < param(points[b])
		})
		prev := s.A
		for _, p := range points {
			if p == prev {
				continue
			}
			edges = append(edges, Segment{prev, p})
			prev = p
		}
		if prev != s.B {
			edges = append(edges, Segment{prev, s.B})
		}
	}
	return edges
}
