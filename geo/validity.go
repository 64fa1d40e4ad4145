package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/rotisserie/eris"
)

var ErrInvalidGeometry = eris.New("geo: invalid geometry")

type _RingSegment struct {
	ring    int
	index   int
	count   int
	polygon int
}

// Checks that every polygon is valid and that polygons do not overlap.
func ValidateMultiPolygon(mp orb.MultiPolygon) error {
	if len(mp) == 0 {
		return eris.Wrap(ErrInvalidGeometry, "empty multipolygon")
	}
	for i, polygon := range mp {
		if err := ValidatePolygon(polygon); err != nil {
			return eris.Wrapf(err, "polygon %d", i)
		}
	}
	if len(mp) == 1 {
		return nil
	}
	segments := make([]Segment, 0)
	infos := make([]_RingSegment, 0)
	for p, polygon := range mp {
		for r, ring := range polygon {
			ring_segments := _RingSegments(ring)
			for i, s := range ring_segments {
				segments = append(segments, s)
				infos = append(infos, _RingSegment{ring: r, index: i, count: len(ring_segments), polygon: p})
			}
		}
	}
	var err error
	ForCandidatePairs(segments, func(i, j int) bool {
		if infos[i].polygon == infos[j].polygon {
			return true
		}
		_, kind := IntersectSegments(segments[i], segments[j])
		switch kind {
		case CROSSING:
			err = eris.Wrapf(ErrInvalidGeometry, "polygons %d and %d cross", infos[i].polygon, infos[j].polygon)
			return false
		case OVERLAPPING:
			err = eris.Wrapf(ErrInvalidGeometry, "polygons %d and %d share an edge", infos[i].polygon, infos[j].polygon)
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	for i, a := range mp {
		for j, b := range mp {
			if i == j || !a.Bound().Intersects(b.Bound()) {
				continue
			}
			if p, ok := _InteriorVertex(a[0], b); ok && _PolygonContainsStrict(b, p) {
				return eris.Wrapf(ErrInvalidGeometry, "polygon %d lies within polygon %d", i, j)
			}
		}
	}
	return nil
}

// Checks ring closure, minimum size, self-intersections, ring crossings and hole containment.
func ValidatePolygon(polygon orb.Polygon) error {
	if len(polygon) == 0 {
		return eris.Wrap(ErrInvalidGeometry, "empty polygon")
	}
	for r, ring := range polygon {
		if err := _ValidateRing(ring); err != nil {
			return eris.Wrapf(err, "ring %d", r)
		}
	}

	segments := make([]Segment, 0)
	infos := make([]_RingSegment, 0)
	for r, ring := range polygon {
		ring_segments := _RingSegments(ring)
		for i, s := range ring_segments {
			segments = append(segments, s)
			infos = append(infos, _RingSegment{ring: r, index: i, count: len(ring_segments)})
		}
	}
	var err error
	ForCandidatePairs(segments, func(i, j int) bool {
		a := infos[i]
		b := infos[j]
		points, kind := IntersectSegments(segments[i], segments[j])
		if kind == NO_INTERSECTION {
			return true
		}
		if a.ring == b.ring {
			adjacent := b.index-a.index == 1 || a.index-b.index == 1 ||
				(a.index == 0 && b.index == a.count-1) || (b.index == 0 && a.index == b.count-1)
			if adjacent && kind == TOUCHING {
				return true
			}
			err = eris.Wrapf(ErrInvalidGeometry, "ring %d self-intersects at %v", a.ring, points[0])
			return false
		}
		if kind != TOUCHING {
			err = eris.Wrapf(ErrInvalidGeometry, "rings %d and %d intersect at %v", a.ring, b.ring, points[0])
			return false
		}
		return true
	})
	if err != nil {
		return err
	}

	shell := polygon[0]
	for h, hole := range polygon[1:] {
		p, ok := _InteriorVertex(hole, orb.Polygon{shell})
		if !ok {
			return eris.Wrapf(ErrInvalidGeometry, "hole %d coincides with shell", h+1)
		}
		if !planar.RingContains(shell, p) {
			return eris.Wrapf(ErrInvalidGeometry, "hole %d outside of shell", h+1)
		}
		for o, other := range polygon[1:] {
			if o == h {
				continue
			}
			if _RingContainsStrict(other, p) && !_OnRingBoundary(other, p) {
				return eris.Wrapf(ErrInvalidGeometry, "hole %d nested in hole %d", h+1, o+1)
			}
		}
	}
	return nil
}

func _ValidateRing(ring orb.Ring) error {
	if len(ring) < 4 {
		return eris.Wrapf(ErrInvalidGeometry, "ring has %d points, needs at least 4", len(ring))
	}
	if ring[0] != ring[len(ring)-1] {
		return eris.Wrap(ErrInvalidGeometry, "ring is not closed")
	}
	for _, p := range ring {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) || math.IsInf(p[0], 0) || math.IsInf(p[1], 0) {
			return eris.Wrap(ErrInvalidGeometry, "ring contains non-finite coordinate")
		}
	}
	if len(_RingSegments(ring)) < 3 || SignedArea(ring) == 0 {
		return eris.Wrap(ErrInvalidGeometry, "ring has zero area")
	}
	return nil
}

// Returns a vertex of ring not lying on the boundary of polygon.
func _InteriorVertex(ring orb.Ring, polygon orb.Polygon) (orb.Point, bool) {
	for _, p := range ring {
		on_boundary := false
		for _, r := range polygon {
			if _OnRingBoundary(r, p) {
				on_boundary = true
				break
			}
		}
		if !on_boundary {
			return p, true
		}
	}
	return orb.Point{}, false
}

func _OnRingBoundary(ring orb.Ring, p orb.Point) bool {
	tol := _ON_SEGMENT_TOLERANCE * _Max4(math.Abs(p[0]), math.Abs(p[1]), 1, 1)
	for i := 0; i+1 < len(ring); i++ {
		if _OnSegment(ring[i], ring[i+1], p, tol) {
			return true
		}
	}
	return false
}

func _PolygonContainsStrict(polygon orb.Polygon, p orb.Point) bool {
	for _, ring := range polygon {
		if _OnRingBoundary(ring, p) {
			return false
		}
	}
	return _MultiPolygonContainsStrict(orb.MultiPolygon{polygon}, p)
}
