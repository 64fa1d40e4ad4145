package hull

import (
	"github.com/paulmach/orb"
	"github.com/ttpr0/go-coverage/geo"
	"golang.org/x/exp/slog"
)

//**********************************************************
// alpha shape
//**********************************************************

// Concave hull from the delaunay triangles with circumradius <= radius.
//
// Points not covered by any kept triangle are not part of the shape.
type AlphaExtractor struct {
	radius   float64
	fallback *ConvexExtractor
}

func (self *AlphaExtractor) Extract(points []orb.Point) Result {
	points, ok := _PreparePoints(points)
	if !ok {
		return _NoCoverage(ALPHA)
	}
	if geo.AreCollinear(points, _COLLINEAR_TOLERANCE) {
		return _WithFallback(self.fallback.Extract(points), ALPHA)
	}

	triangles := _Triangulate(points)
	r2 := self.radius * self.radius
	// boundary edges occur in exactly one kept triangle
	boundary := make(map[_EdgeKey]geo.Segment, len(triangles))
	kept := 0
	for _, t := range triangles {
		if t.r2 > r2 {
			continue
		}
		kept += 1
		ia, ib, ic := t.a, t.b, t.c
		if _Orientation(points[ia], points[ib], points[ic]) < 0 {
			ib, ic = ic, ib
		}
		for _, e := range [][2]int{{ia, ib}, {ib, ic}, {ic, ia}} {
			key := _MakeEdgeKey(e[0], e[1])
			if _, ok := boundary[key]; ok {
				delete(boundary, key)
			} else {
				boundary[key] = geo.Segment{A: points[e[0]], B: points[e[1]]}
			}
		}
	}
	if kept == 0 {
		slog.Debug("hull: alpha shape is empty, using convex hull", "points", len(points), "radius", self.radius)
		return _WithFallback(self.fallback.Extract(points), ALPHA)
	}

	edges := make([]geo.Segment, 0, len(boundary))
	for _, s := range boundary {
		edges = append(edges, s)
	}
	polygon := geo.Polygonize(edges)
	if geo.IsEmpty(polygon) {
		slog.Debug("hull: alpha shape boundary could not be stitched, using convex hull", "points", len(points))
		return _WithFallback(self.fallback.Extract(points), ALPHA)
	}
	return Result{
		Polygon:  polygon,
		Strategy: ALPHA,
	}
}

func _Orientation(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}
