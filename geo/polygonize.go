package geo

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"golang.org/x/exp/slog"
)

//**********************************************************
// ring stitching
//**********************************************************

// Builds polygons from directed boundary edges with the interior on their left side.
//
// Counter-clockwise rings become shells, clockwise rings become holes of the smallest
// shell containing them.
func Polygonize(edges []Segment) orb.MultiPolygon {
	outgoing := make(map[orb.Point][]int, len(edges))
	for i, e := range edges {
		outgoing[e.A] = append(outgoing[e.A], i)
	}
	used := make([]bool, len(edges))
	rings := make([]orb.Ring, 0)
	dropped := 0
	for first := range edges {
		if used[first] {
			continue
		}
		used[first] = true
		ring := orb.Ring{edges[first].A}
		curr := first
		closed := false
		for steps := 0; steps <= len(edges); steps++ {
			e := edges[curr]
			ring = append(ring, e.B)
			next := _NextEdge(edges, e, outgoing[e.B], func(k int) bool {
				return !used[k] || k == first
			})
			if next == -1 {
				break
			}
			if next == first {
				closed = true
				break
			}
			used[next] = true
			curr = next
		}
		if !closed || len(ring) < 4 {
			dropped += 1
			continue
		}
		rings = append(rings, SplitPinchedRing(ring)...)
	}
	if dropped > 0 {
		slog.Debug("geo: dropped unclosed rings", "count", dropped)
	}
	return _AssembleRings(rings)
}

// Splits a closed ring at every vertex it passes more than once.
//
// Sub rings keep the traversal direction, a pinched shell around a hole yields a shell and a hole.
func SplitPinchedRing(ring orb.Ring) []orb.Ring {
	rings := make([]orb.Ring, 0, 1)
	path := make([]orb.Point, 0, len(ring))
	seen := make(map[orb.Point]int, len(ring))
	for _, p := range ring {
		index, ok := seen[p]
		if !ok {
			seen[p] = len(path)
			path = append(path, p)
			continue
		}
		sub := make(orb.Ring, 0, len(path)-index+1)
		sub = append(sub, path[index:]...)
		sub = append(sub, p)
		if len(sub) >= 4 {
			rings = append(rings, sub)
		}
		for _, q := range path[index+1:] {
			delete(seen, q)
		}
		path = path[:index+1]
	}
	return rings
}

// Selects the outgoing edge with the smallest clockwise turn from the reversed incoming edge.
func _NextEdge(edges []Segment, in Segment, candidates []int, usable func(int) bool) int {
	reverse := math.Atan2(in.A[1]-in.B[1], in.A[0]-in.B[0])
	best := -1
	best_angle := math.Inf(1)
	for _, k := range candidates {
		if !usable(k) {
			continue
		}
		out := edges[k]
		angle := reverse - math.Atan2(out.B[1]-out.A[1], out.B[0]-out.A[0])
		for angle <= 1e-12 {
			angle += 2 * math.Pi
		}
		for angle > 2*math.Pi+1e-12 {
			angle -= 2 * math.Pi
		}
		if angle < best_angle {
			best_angle = angle
			best = k
		}
	}
	return best
}

func _AssembleRings(rings []orb.Ring) orb.MultiPolygon {
	type shell struct {
		ring  orb.Ring
		area  float64
		holes []orb.Ring
	}
	shells := make([]*shell, 0)
	holes := make([]orb.Ring, 0)
	for _, ring := range rings {
		area := SignedArea(ring)
		switch {
		case area > 0:
			shells = append(shells, &shell{ring: ring, area: area})
		case area < 0:
			holes = append(holes, ring)
		}
	}
	sort.SliceStable(shells, func(i, j int) bool {
		return shells[i].area < shells[j].area
	})
	for _, hole := range holes {
		for _, s := range shells {
			if !s.ring.Bound().Contains(hole.Bound().Min) || !s.ring.Bound().Contains(hole.Bound().Max) {
				continue
			}
			p, ok := _InteriorVertex(hole, orb.Polygon{s.ring})
			if !ok {
				p = Segment{hole[0], hole[1]}.Midpoint()
			}
			if _RingContainsStrict(s.ring, p) {
				s.holes = append(s.holes, hole)
				break
			}
		}
	}
	result := make(orb.MultiPolygon, 0, len(shells))
	for _, s := range shells {
		polygon := orb.Polygon{s.ring}
		polygon = append(polygon, s.holes...)
		result = append(result, polygon)
	}
	return result
}
