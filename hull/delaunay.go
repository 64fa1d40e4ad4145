package hull

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

//**********************************************************
// delaunay triangulation
//**********************************************************

type _Triangle struct {
	a, b, c int
	// circumcircle
	cx, cy, r2 float64
}

func _NewTriangle(points []orb.Point, a, b, c int) _Triangle {
	pa, pb, pc := points[a], points[b], points[c]
	d := 2 * (pa[0]*(pb[1]-pc[1]) + pb[0]*(pc[1]-pa[1]) + pc[0]*(pa[1]-pb[1]))
	t := _Triangle{a: a, b: b, c: c}
	if math.Abs(d) < 1e-12 {
		// degenerate, contains everything until replaced
		t.cx = (pa[0] + pb[0] + pc[0]) / 3
		t.cy = (pa[1] + pb[1] + pc[1]) / 3
		t.r2 = math.Inf(1)
		return t
	}
	sa := pa[0]*pa[0] + pa[1]*pa[1]
	sb := pb[0]*pb[0] + pb[1]*pb[1]
	sc := pc[0]*pc[0] + pc[1]*pc[1]
	t.cx = (sa*(pb[1]-pc[1]) + sb*(pc[1]-pa[1]) + sc*(pa[1]-pb[1])) / d
	t.cy = (sa*(pc[0]-pb[0]) + sb*(pa[0]-pc[0]) + sc*(pb[0]-pa[0])) / d
	t.r2 = (pa[0]-t.cx)*(pa[0]-t.cx) + (pa[1]-t.cy)*(pa[1]-t.cy)
	return t
}

type _EdgeKey [2]int

func _MakeEdgeKey(a, b int) _EdgeKey {
	if a < b {
		return _EdgeKey{a, b}
	}
	return _EdgeKey{b, a}
}

// Bowyer-Watson triangulation sweeping points by x.
//
// Triangles whose circumcircle lies left of the sweep are final and no longer tested.
// Returns triangles as indices into points, the input slice is not modified.
func _Triangulate(points []orb.Point) []_Triangle {
	n := len(points)
	if n < 3 {
		return nil
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return points[order[i]][0] < points[order[j]][0]
	})

	bound := orb.MultiPoint(points).Bound()
	dmax := math.Max(bound.Max[0]-bound.Min[0], bound.Max[1]-bound.Min[1])
	if dmax == 0 {
		return nil
	}
	mid := bound.Center()
	// working copy with the super triangle appended
	vertices := make([]orb.Point, n, n+3)
	copy(vertices, points)
	vertices = append(vertices,
		orb.Point{mid[0] - 20*dmax, mid[1] - dmax},
		orb.Point{mid[0], mid[1] + 20*dmax},
		orb.Point{mid[0] + 20*dmax, mid[1] - dmax},
	)

	open := []_Triangle{_NewTriangle(vertices, n, n+1, n+2)}
	completed := make([]_Triangle, 0, 2*n)
	edges := make(map[_EdgeKey]int, 16)
	for _, i := range order {
		p := vertices[i]
		for k := range edges {
			delete(edges, k)
		}
		keep := open[:0]
		for _, t := range open {
			dx := p[0] - t.cx
			if dx > 0 && dx*dx > t.r2 {
				completed = append(completed, t)
				continue
			}
			dy := p[1] - t.cy
			if dx*dx+dy*dy <= t.r2 {
				edges[_MakeEdgeKey(t.a, t.b)] += 1
				edges[_MakeEdgeKey(t.b, t.c)] += 1
				edges[_MakeEdgeKey(t.c, t.a)] += 1
				continue
			}
			keep = append(keep, t)
		}
		open = keep
		for e, count := range edges {
			if count > 1 {
				continue
			}
			open = append(open, _NewTriangle(vertices, e[0], e[1], i))
		}
	}

	result := make([]_Triangle, 0, len(completed)+len(open))
	for _, list := range [][]_Triangle{completed, open} {
		for _, t := range list {
			if t.a >= n || t.b >= n || t.c >= n {
				continue
			}
			if math.IsInf(t.r2, 1) {
				continue
			}
			result = append(result, t)
		}
	}
	return result
}
