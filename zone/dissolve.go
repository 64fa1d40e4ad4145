package zone

import (
	"github.com/paulmach/orb"
	"github.com/ttpr0/go-coverage/geo"
	. "github.com/ttpr0/go-coverage/util"
	"golang.org/x/exp/slog"
)

// Merges zones sharing the same key into one zone per key, ordered by key.
//
// key names the property to group by, empty groups by zone id. Groups containing an invalid
// polygon are concatenated instead of merged so the clipper still reports them.
func Dissolve(zones []*Zone, key string) List[*Zone] {
	groups := NewDict[string, List[*Zone]](len(zones))
	for _, z := range zones {
		k := z.ID
		if key != "" {
			k = z.Properties[key]
		}
		group := groups[k]
		group.Add(z)
		groups[k] = group
	}

	dissolved := NewList[*Zone](len(groups))
	for _, k := range SortedKeys(groups) {
		group := groups[k]
		polygons := make([]orb.MultiPolygon, 0, group.Length())
		sub_zones := NewList[string](group.Length())
		valid := true
		for _, z := range group {
			polygons = append(polygons, z.Polygon)
			sub_zones = append(sub_zones, z.SubZones...)
			if geo.ValidateMultiPolygon(z.Polygon) != nil {
				valid = false
			}
		}
		var polygon orb.MultiPolygon
		if valid {
			polygon = geo.UnionAll(polygons)
		} else {
			slog.Warn("zone: group contains invalid polygons, not merged", "key", k)
			for _, p := range polygons {
				polygon = append(polygon, p...)
			}
		}
		properties := NewDict[string, string](len(group[0].Properties))
		for name, value := range group[0].Properties {
			properties[name] = value
		}
		id := k
		if key != "" {
			properties[key] = k
		}
		dissolved.Add(&Zone{
			ID:         id,
			Polygon:    polygon,
			SubZones:   sub_zones,
			Properties: properties,
		})
	}
	return dissolved
}
