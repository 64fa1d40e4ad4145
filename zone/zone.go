package zone

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/ttpr0/go-coverage/geo"
	. "github.com/ttpr0/go-coverage/util"
)

//**********************************************************
// zone
//**********************************************************

// Emergency service zone.
//
// Polygon is in lon/lat unless the zone was created by Project.
type Zone struct {
	ID         string
	Polygon    orb.MultiPolygon
	SubZones   List[string]
	Properties Dict[string, string]
}

func (self *Zone) Bound() orb.Bound {
	return self.Polygon.Bound()
}

// Returns a copy of the zone with the polygon projected.
func (self *Zone) Project(proj geo.IProjection) *Zone {
	return &Zone{
		ID:         self.ID,
		Polygon:    geo.ProjectMultiPolygon(self.Polygon, proj),
		SubZones:   self.SubZones,
		Properties: self.Properties,
	}
}

// Zones indexed by id.
type ZoneIndex struct {
	zones Dict[string, *Zone]
	ids   List[string]
}

// Builds the index, later zones with a duplicate id replace earlier ones.
func NewZoneIndex(zones []*Zone) *ZoneIndex {
	index := &ZoneIndex{
		zones: NewDict[string, *Zone](len(zones)),
		ids:   NewList[string](len(zones)),
	}
	for _, z := range zones {
		if !index.zones.ContainsKey(z.ID) {
			index.ids.Add(z.ID)
		}
		index.zones[z.ID] = z
	}
	sort.Strings(index.ids)
	return index
}

func (self *ZoneIndex) Get(id string) (*Zone, bool) {
	z, ok := self.zones[id]
	return z, ok
}

func (self *ZoneIndex) Len() int {
	return len(self.ids)
}

// Iterates zones ordered by id.
func (self *ZoneIndex) All() func(yield func(*Zone) bool) {
	return func(yield func(*Zone) bool) {
		for _, id := range self.ids {
			if !yield(self.zones[id]) {
				return
			}
		}
	}
}
