package hull

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/ttpr0/go-coverage/geo"
	"golang.org/x/exp/slog"
)

//**********************************************************
// convex hull
//**********************************************************

type ConvexExtractor struct {
	buffer   float64
	segments int
}

func (self *ConvexExtractor) Extract(points []orb.Point) Result {
	points, ok := _PreparePoints(points)
	if !ok {
		return _NoCoverage(CONVEX)
	}
	if geo.AreCollinear(points, _COLLINEAR_TOLERANCE) {
		return self._Collinear(points)
	}

	ring := _MonotoneChain(points)
	if len(ring) < 4 {
		slog.Debug("hull: convex hull is degenerate", "points", len(points))
		return _NoCoverage(CONVEX)
	}
	return Result{
		Polygon:  orb.MultiPolygon{orb.Polygon{ring}},
		Strategy: CONVEX,
	}
}

func (self *ConvexExtractor) _Collinear(points []orb.Point) Result {
	if self.buffer <= 0 {
		return _NoCoverage(CONVEX)
	}
	polygon := geo.BufferLine(points, self.buffer, self.segments)
	return Result{
		Polygon:  orb.MultiPolygon{polygon},
		Strategy: CONVEX,
	}
}

// Andrew's monotone chain, returns the closed counter-clockwise hull ring without collinear vertices.
func _MonotoneChain(points []orb.Point) orb.Ring {
	sorted := make([]orb.Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i][0] != sorted[j][0] {
			return sorted[i][0] < sorted[j][0]
		}
		return sorted[i][1] < sorted[j][1]
	})
	n := len(sorted)
	if n < 3 {
		return nil
	}
	hull := make([]orb.Point, 0, 2*n)
	// lower chain
	for _, p := range sorted {
		for len(hull) >= 2 && _Orientation(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// upper chain
	lower := len(hull) + 1
	for i := n - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && _Orientation(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// last point equals the first one
	return orb.Ring(hull)
}
