package zone

import (
	"sort"
	"sync"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/ttpr0/go-coverage/geo"
	. "github.com/ttpr0/go-coverage/util"
	"golang.org/x/exp/slog"
)

var ErrInvalidZoneGeometry = eris.New("zone: invalid zone geometry")

type ClipResult struct {
	ZoneID    string
	Threshold int32
	Polygon   orb.MultiPolygon
	// polygon and zone do not overlap
	Empty bool
}

// Intersects response polygons with their zone.
//
// Zones are validated once per id, invalid zones are never repaired and their ids are
// collected. Safe for concurrent use.
type Clipper struct {
	mu      sync.Mutex
	checked Dict[string, error]
	invalid List[string]
}

func NewClipper() *Clipper {
	return &Clipper{
		checked: NewDict[string, error](16),
		invalid: NewList[string](4),
	}
}

// Checks the zone geometry, returns ErrInvalidZoneGeometry for invalid zones.
func (self *Clipper) Validate(z *Zone) error {
	self.mu.Lock()
	defer self.mu.Unlock()

	if err, ok := self.checked[z.ID]; ok {
		return err
	}
	var result error
	if err := geo.ValidateMultiPolygon(z.Polygon); err != nil {
		slog.Warn("zone: invalid zone geometry", "zone", z.ID, "reason", err.Error())
		result = eris.Wrapf(ErrInvalidZoneGeometry, "zone %s: %v", z.ID, err)
		self.invalid.Add(z.ID)
	}
	self.checked[z.ID] = result
	return result
}

// Intersects poly with the zone, both must share a planar coordinate system.
func (self *Clipper) Clip(z *Zone, poly orb.MultiPolygon, threshold int32) (ClipResult, error) {
	if err := self.Validate(z); err != nil {
		return ClipResult{}, err
	}
	clipped := geo.Intersection(z.Polygon, poly)
	return ClipResult{
		ZoneID:    z.ID,
		Threshold: threshold,
		Polygon:   clipped,
		Empty:     geo.IsEmpty(clipped),
	}, nil
}

// Ids of all zones found invalid so far, ordered.
func (self *Clipper) InvalidZones() List[string] {
	self.mu.Lock()
	defer self.mu.Unlock()

	ids := make(List[string], self.invalid.Length())
	copy(ids, self.invalid)
	sort.Strings(ids)
	return ids
}
