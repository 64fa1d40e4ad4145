package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// Approximates a circle around center with the given number of segments.
func BufferPoint(center orb.Point, radius float64, segments int) orb.Polygon {
	if segments < 4 {
		segments = 4
	}
	ring := make(orb.Ring, 0, segments+1)
	for i := 0; i < segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		ring = append(ring, orb.Point{center[0] + radius*math.Cos(angle), center[1] + radius*math.Sin(angle)})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// Approximates the area within radius of the segment a-b (rounded caps).
func BufferSegment(a, b orb.Point, radius float64, segments int) orb.Polygon {
	if a == b {
		return BufferPoint(a, radius, segments)
	}
	half := segments / 2
	if half < 2 {
		half = 2
	}
	direction := math.Atan2(b[1]-a[1], b[0]-a[0])
	ring := make(orb.Ring, 0, 2*half+3)
	for i := 0; i <= half; i++ {
		angle := direction - math.Pi/2 + math.Pi*float64(i)/float64(half)
		ring = append(ring, orb.Point{b[0] + radius*math.Cos(angle), b[1] + radius*math.Sin(angle)})
	}
	for i := 0; i <= half; i++ {
		angle := direction + math.Pi/2 + math.Pi*float64(i)/float64(half)
		ring = append(ring, orb.Point{a[0] + radius*math.Cos(angle), a[1] + radius*math.Sin(angle)})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// Buffers the segment spanned by the two most distant points.
func BufferLine(points []orb.Point, radius float64, segments int) orb.Polygon {
	if len(points) == 0 {
		return nil
	}
	a, b := _FarthestPair(points)
	return BufferSegment(a, b, radius, segments)
}
