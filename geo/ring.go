package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

//**********************************************************
// ring helpers
//**********************************************************

// Signed shoelace area, positive for counter-clockwise rings.
func SignedArea(ring orb.Ring) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	sum := float64(0)
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		sum += a[0]*b[1] - b[0]*a[1]
	}
	return sum / 2
}

func IsCounterClockwise(ring orb.Ring) bool {
	return SignedArea(ring) > 0
}

// Returns the ring explicitly closed (first point equals last point).
func CloseRing(ring orb.Ring) orb.Ring {
	if len(ring) == 0 {
		return ring
	}
	if ring[0] != ring[len(ring)-1] {
		closed := make(orb.Ring, 0, len(ring)+1)
		closed = append(closed, ring...)
		closed = append(closed, ring[0])
		return closed
	}
	return ring
}

func _Reversed(ring orb.Ring) orb.Ring {
	reversed := make(orb.Ring, len(ring))
	for i, p := range ring {
		reversed[len(ring)-1-i] = p
	}
	return reversed
}

// Orients shells counter-clockwise and holes clockwise.
func NormalizePolygon(polygon orb.Polygon) orb.Polygon {
	normalized := make(orb.Polygon, 0, len(polygon))
	for i, ring := range polygon {
		ring = CloseRing(ring)
		ccw := IsCounterClockwise(ring)
		if (i == 0 && !ccw) || (i > 0 && ccw) {
			ring = _Reversed(ring)
		}
		normalized = append(normalized, ring)
	}
	return normalized
}

func NormalizeMultiPolygon(mp orb.MultiPolygon) orb.MultiPolygon {
	normalized := make(orb.MultiPolygon, 0, len(mp))
	for _, polygon := range mp {
		if len(polygon) == 0 {
			continue
		}
		normalized = append(normalized, NormalizePolygon(polygon))
	}
	return normalized
}

// Absolute area of the multipolygon (holes subtracted).
func Area(mp orb.MultiPolygon) float64 {
	area := float64(0)
	for _, polygon := range mp {
		for i, ring := range polygon {
			if i == 0 {
				area += math.Abs(SignedArea(ring))
			} else {
				area -= math.Abs(SignedArea(ring))
			}
		}
	}
	return area
}

func IsEmpty(mp orb.MultiPolygon) bool {
	for _, polygon := range mp {
		if len(polygon) > 0 && len(polygon[0]) >= 4 {
			return false
		}
	}
	return true
}

// Returns the input points without exact duplicates, keeping first occurence order.
func DistinctPoints(points []orb.Point) []orb.Point {
	seen := make(map[orb.Point]struct{}, len(points))
	distinct := make([]orb.Point, 0, len(points))
	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		distinct = append(distinct, p)
	}
	return distinct
}

// Checks if all points lie on a single line within tolerance.
func AreCollinear(points []orb.Point, tolerance float64) bool {
	if len(points) < 3 {
		return true
	}
	a, b := _FarthestPair(points)
	length := _Dist(a, b)
	if length == 0 {
		return true
	}
	for _, p := range points {
		if math.Abs(_Cross(a, b, p))/length > tolerance {
			return false
		}
	}
	return true
}

// Approximate farthest pair, exact for collinear input.
func _FarthestPair(points []orb.Point) (orb.Point, orb.Point) {
	a := points[0]
	for _, p := range points {
		if _Dist(points[0], p) > _Dist(points[0], a) {
			a = p
		}
	}
	b := a
	for _, p := range points {
		if _Dist(a, p) > _Dist(a, b) {
			b = p
		}
	}
	return a, b
}

func _Dist(a, b orb.Point) float64 {
	return math.Hypot(b[0]-a[0], b[1]-a[1])
}

// Cross product of (b - a) and (c - a).
func _Cross(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// Even-odd point in ring test, points on the boundary may fall either way.
func _RingContainsStrict(ring orb.Ring, point orb.Point) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a := ring[i]
		b := ring[j]
		if (a[1] > point[1]) != (b[1] > point[1]) {
			x := (b[0]-a[0])*(point[1]-a[1])/(b[1]-a[1]) + a[0]
			if point[0] < x {
				inside = !inside
			}
		}
	}
	return inside
}

func _MultiPolygonContainsStrict(mp orb.MultiPolygon, point orb.Point) bool {
	for _, polygon := range mp {
		if len(polygon) == 0 || !_RingContainsStrict(polygon[0], point) {
			continue
		}
		in_hole := false
		for _, hole := range polygon[1:] {
			if _RingContainsStrict(hole, point) {
				in_hole = true
				break
			}
		}
		if !in_hole {
			return true
		}
	}
	return false
}

// Checks if the point is inside or on the boundary of the multipolygon.
func Contains(mp orb.MultiPolygon, point orb.Point) bool {
	return planar.MultiPolygonContains(mp, point)
}
